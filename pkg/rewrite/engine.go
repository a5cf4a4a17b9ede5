// Package rewrite implements the text transforms built on the IVD tables:
// annotate/verify, TeX CID export and import, old-style substitution, and the
// non-member scan used by host-side highlighting.
//
// Every operation is a single pass over its input span. Matches are collected
// as Replacement spans first and applied to a fresh output buffer, so length
// changes from earlier replacements never invalidate later offsets.
package rewrite

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/glyphlab/ivsd/pkg/ivd"
)

// MinIdeograph is the default lower bound for the non-member scan: the start
// of CJK Extension A, excluding kana, punctuation and compatibility ranges.
const MinIdeograph = 0x3400

// Display delimiters for the annotate fallback and ambiguous old-style forms.
const (
	openBracket    = "《"
	closeBracket   = "》"
	groupSeparator = "/"
)

// Engine runs the transforms against a fixed set of tables. The tables are
// never written after construction, so one Engine serves any number of
// concurrent callers.
type Engine struct {
	reg          *ivd.Registry
	oldStyle     ivd.OldStyle
	cids         ivd.CIDIndex
	collections  []string
	interchange  string
	minIdeograph rune
}

// Options tune the engine. Zero values fall back to the IVD defaults:
// Adobe-Japan1/Hanyo-Denshi/Moji_Joho display order, Adobe-Japan1 as the
// interchange collection, and U+3400 as the scan threshold.
type Options struct {
	Collections  []string
	Interchange  string
	MinIdeograph rune
}

// New builds an engine over the given tables. The CID index is derived here,
// once, from the registry's interchange-collection sequences.
func New(reg *ivd.Registry, oldStyle ivd.OldStyle, opts *Options) *Engine {
	e := &Engine{
		reg:          reg,
		oldStyle:     oldStyle,
		collections:  ivd.DefaultCollections(),
		interchange:  ivd.CollectionAdobeJapan1,
		minIdeograph: MinIdeograph,
	}
	if opts != nil {
		if len(opts.Collections) > 0 {
			e.collections = opts.Collections
		}
		if opts.Interchange != "" {
			e.interchange = opts.Interchange
		}
		if opts.MinIdeograph != 0 {
			e.minIdeograph = opts.MinIdeograph
		}
	}
	e.cids = reg.CIDIndex(e.interchange)
	return e
}

// Replacement is one pending span rewrite: text[Start:End) becomes With.
// Offsets are byte offsets into the original text.
type Replacement struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	With  string `json:"with"`
}

// Apply rewrites text with the given replacements. Replacements must be
// non-overlapping and ordered by Start, which is what every Engine operation
// produces.
func Apply(text string, reps []Replacement) string {
	if len(reps) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, rep := range reps {
		b.WriteString(text[last:rep.Start])
		b.WriteString(rep.With)
		last = rep.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// Note reports one registered sequence confirmed during annotation.
type Note struct {
	Collection string `json:"collection"`
	Name       string `json:"name"`
}

// Annotate inspects the character at byte offset pos and the character
// immediately after it.
//
// An unregistered base character is a no-op. A base followed by a selector
// that matches registered sequences is pure verification: the matches come
// back as Notes and the text is untouched. Otherwise the base character alone
// is replaced by a bracketed display of every registered variation, grouped
// by collection in the configured preference order.
func (e *Engine) Annotate(text string, pos int) ([]Replacement, []Note) {
	if pos < 0 || pos >= len(text) {
		return nil, nil
	}
	base, size := utf8.DecodeRuneInString(text[pos:])
	if size == 0 || base == utf8.RuneError {
		return nil, nil
	}
	seqs, ok := e.reg.Lookup(base)
	if !ok {
		return nil, nil
	}

	if next, _ := utf8.DecodeRuneInString(text[pos+size:]); ivd.IsVariationSelector(next) {
		var notes []Note
		for _, s := range seqs {
			if s.Selector == next {
				notes = append(notes, Note{Collection: s.Collection, Name: s.Name})
			}
		}
		if len(notes) > 0 {
			return nil, notes
		}
	}

	return []Replacement{{Start: pos, End: pos + size, With: e.bracketed(base, seqs)}}, nil
}

// bracketed renders every registered variation of base, one group per
// collection in preference order, selectors concatenated within a group.
// Collections with no sequence for base are omitted.
func (e *Engine) bracketed(base rune, seqs []ivd.Sequence) string {
	var groups []string
	for _, collection := range e.collections {
		var g strings.Builder
		for _, s := range seqs {
			if s.Collection == collection {
				g.WriteString(s.Render(base))
			}
		}
		if g.Len() > 0 {
			groups = append(groups, g.String())
		}
	}
	return openBracket + strings.Join(groups, groupSeparator) + closeBracket
}

// ExportTeX finds every (base, selector) pair in text that is registered
// under the interchange collection and rewrites it to the \CID{...} escape.
// Pairs registered only under other collections are left alone.
func (e *Engine) ExportTeX(text string) []Replacement {
	var reps []Replacement
	for i := 0; i < len(text); {
		base, size := utf8.DecodeRuneInString(text[i:])
		sel, selSize := utf8.DecodeRuneInString(text[i+size:])
		if selSize == 0 || !ivd.IsVariationSelector(sel) {
			i += size
			continue
		}
		if seq, ok := e.findInterchange(base, sel); ok {
			if digits, ok := seq.CIDDigits(); ok {
				reps = append(reps, Replacement{
					Start: i,
					End:   i + size + selSize,
					With:  `\CID{` + digits + `}`,
				})
			}
		}
		i += size + selSize
	}
	return reps
}

func (e *Engine) findInterchange(base, sel rune) (ivd.Sequence, bool) {
	seqs, _ := e.reg.Lookup(base)
	for _, s := range seqs {
		if s.Selector == sel && s.Collection == e.interchange {
			return s, true
		}
	}
	return ivd.Sequence{}, false
}

// ImportTeX rewrites every \CID{n} escape whose code is in the index back to
// its registered base+selector sequence. Unknown and malformed escapes stay
// as they are.
func (e *Engine) ImportTeX(text string) []Replacement {
	var reps []Replacement
	for _, m := range findCIDEscapes(text) {
		if seq, ok := e.cids.Lookup(m.code); ok {
			reps = append(reps, Replacement{Start: m.start, End: m.end, With: seq})
		}
	}
	return reps
}

// OldStyle rewrites every character registered in the old-style table. A
// selector following a scanned character is consumed along with it but plays
// no part in matching. A single historical variant substitutes directly;
// multiple variants are joined and bracketed so the ambiguity reaches the
// reader instead of being guessed away.
func (e *Engine) OldStyle(text string) []Replacement {
	var reps []Replacement
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		end := i + size
		if sel, selSize := utf8.DecodeRuneInString(text[end:]); ivd.IsVariationSelector(sel) && selSize > 0 {
			end += selSize
		}
		if variants, ok := e.oldStyle.Lookup(r); ok {
			with := variants[0]
			if len(variants) > 1 {
				with = "[" + strings.Join(variants, "") + "]"
			}
			reps = append(reps, Replacement{Start: i, End: end, With: with})
		}
		i = end
	}
	return reps
}

// NextNonMember scans text from byte offset `from` up to `bound` and returns
// the offset just past the first ideograph at or above the configured
// threshold that either has no registered sequence at all, or none under the
// interchange collection. Returns ok=false when the bound is reached first.
// Hosts drive highlighting by calling this repeatedly with advancing bounds.
func (e *Engine) NextNonMember(text string, from, bound int) (int, bool) {
	if from < 0 {
		from = 0
	}
	if bound > len(text) {
		bound = len(text)
	}
	for i := from; i < bound; {
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		i += size
		if r < e.minIdeograph || !unicode.Is(unicode.Ideographic, r) {
			continue
		}
		if !e.reg.HasCollection(r, e.interchange) {
			return i, true
		}
	}
	return 0, false
}

// Interchange returns the collection eligible for TeX export and the scan.
func (e *Engine) Interchange() string {
	return e.interchange
}
