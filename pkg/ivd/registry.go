// Package ivd loads Ideographic Variation Database tables into read-only
// in-memory registries. Tables are built once at startup and never mutated;
// all lookups are safe for concurrent use.
package ivd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Well-known collection names from the published IVD.
const (
	CollectionAdobeJapan1 = "Adobe-Japan1"
	CollectionHanyoDenshi = "Hanyo-Denshi"
	CollectionMojiJoho    = "Moji_Joho"
)

// DefaultCollections is the default display preference order for collections.
func DefaultCollections() []string {
	return []string{CollectionAdobeJapan1, CollectionHanyoDenshi, CollectionMojiJoho}
}

// Sequence is one registered variation of a base character within a collection.
type Sequence struct {
	Selector   rune   `json:"selector"`
	Collection string `json:"collection"`
	Name       string `json:"name"`
}

// Render returns the full two-codepoint sequence (base + selector).
func (s Sequence) Render(base rune) string {
	return string(base) + string(s.Selector)
}

// Registry maps a base ideograph to its registered variation sequences.
// Sequence order within a base, and base order across the registry, follow
// the source file. A base character with no registered sequence is simply
// absent.
type Registry struct {
	seqs  map[rune][]Sequence
	bases []rune // first-seen order, for deterministic derived indexes
}

// LoadRegistry parses an IVD sequences file. Each meaningful line is
//
//	<base-hex> <selector-hex>; <collection>; <name>
//
// Lines not matching the grammar (comments, headers, blanks) are skipped.
// A missing file is a fatal construction error: no registry, no service.
func LoadRegistry(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sequences file: %w", err)
	}
	defer f.Close()

	r := &Registry{seqs: make(map[rune][]Sequence)}

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		base, seq, ok := parseSequenceLine(sc.Text())
		if !ok {
			continue
		}
		if _, seen := r.seqs[base]; !seen {
			r.bases = append(r.bases, base)
		}
		r.seqs[base] = append(r.seqs[base], seq)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sequences file: %w", err)
	}
	return r, nil
}

// parseSequenceLine extracts one registration. Returns ok=false for any line
// that does not match the grammar.
func parseSequenceLine(line string) (rune, Sequence, bool) {
	codes, rest, ok := strings.Cut(line, "; ")
	if !ok {
		return 0, Sequence{}, false
	}
	collection, name, ok := strings.Cut(rest, "; ")
	if !ok || collection == "" || name == "" {
		return 0, Sequence{}, false
	}

	baseHex, selHex, ok := strings.Cut(codes, " ")
	if !ok {
		return 0, Sequence{}, false
	}
	base, err := strconv.ParseUint(baseHex, 16, 32)
	if err != nil {
		return 0, Sequence{}, false
	}
	sel, err := strconv.ParseUint(selHex, 16, 32)
	if err != nil || !IsVariationSelector(rune(sel)) {
		return 0, Sequence{}, false
	}

	return rune(base), Sequence{
		Selector:   rune(sel),
		Collection: collection,
		Name:       name,
	}, true
}

// Lookup returns the registered sequences for a base character, in file order.
func (r *Registry) Lookup(base rune) ([]Sequence, bool) {
	seqs, ok := r.seqs[base]
	return seqs, ok
}

// HasCollection reports whether base has at least one sequence registered
// under the given collection.
func (r *Registry) HasCollection(base rune, collection string) bool {
	for _, s := range r.seqs[base] {
		if s.Collection == collection {
			return true
		}
	}
	return false
}

// Bases returns the base characters in registration order.
func (r *Registry) Bases() []rune {
	return r.bases
}

// Len returns the number of base characters with at least one sequence.
func (r *Registry) Len() int {
	return len(r.seqs)
}

// TotalSequences returns the number of registered sequences across all bases.
func (r *Registry) TotalSequences() int {
	total := 0
	for _, seqs := range r.seqs {
		total += len(seqs)
	}
	return total
}

// Collections returns every collection name seen in the registry, in first
// appearance order.
func (r *Registry) Collections() []string {
	seen := make(map[string]bool)
	var names []string
	for _, base := range r.bases {
		for _, s := range r.seqs[base] {
			if !seen[s.Collection] {
				seen[s.Collection] = true
				names = append(names, s.Collection)
			}
		}
	}
	return names
}

// IsVariationSelector reports whether r is one of the Unicode variation
// selector code points (Mongolian FVS, VS1-16, or VS17-256).
func IsVariationSelector(r rune) bool {
	switch {
	case r >= 0x180B && r <= 0x180D:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	}
	return false
}
