package ivd

import "strconv"

// cidPrefixLen is the length of the "CID+" prefix on Adobe-Japan1 sequence
// names. The digit suffix is taken at this fixed offset, matching how the
// IVD publishes the collection.
const cidPrefixLen = 4

// CIDIndex maps an Adobe CID to the rendered sequence (base + selector) that
// first registered it. Later registrations of the same CID are dropped, so
// the index is the authoritative direction for round-tripping.
type CIDIndex map[int]string

// CIDIndex builds the CID index for one collection, scanning sequences in
// registration order so that first-registered-wins is deterministic.
func (r *Registry) CIDIndex(collection string) CIDIndex {
	idx := make(CIDIndex)
	for _, base := range r.bases {
		for _, s := range r.seqs[base] {
			if s.Collection != collection {
				continue
			}
			code, ok := s.CID()
			if !ok {
				continue
			}
			if _, taken := idx[code]; taken {
				continue
			}
			idx[code] = s.Render(base)
		}
	}
	return idx
}

// CID parses the numeric code out of the sequence name. Returns ok=false
// when the suffix at the fixed prefix offset is not an integer.
func (s Sequence) CID() (int, bool) {
	if len(s.Name) <= cidPrefixLen {
		return 0, false
	}
	code, err := strconv.Atoi(s.Name[cidPrefixLen:])
	if err != nil {
		return 0, false
	}
	return code, true
}

// CIDDigits returns the raw digit suffix of the sequence name, leading zeros
// preserved ("CID+01234" -> "01234").
func (s Sequence) CIDDigits() (string, bool) {
	if _, ok := s.CID(); !ok {
		return "", false
	}
	return s.Name[cidPrefixLen:], true
}

// Lookup returns the rendered sequence for a CID.
func (idx CIDIndex) Lookup(code int) (string, bool) {
	seq, ok := idx[code]
	return seq, ok
}
