package ivd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// OldStyle maps a modern character to its registered historical variant
// strings, in file order. Each variant is a single character optionally
// followed by a variation selector. Most characters carry one variant;
// genuinely ambiguous historical forms carry several.
type OldStyle map[rune][]string

// LoadOldStyle parses a tab-separated old-style table. Each meaningful line is
//
//	<modern>[selector] TAB <historical>[selector]
//
// Non-matching lines are skipped. A missing file is fatal, like LoadRegistry.
func LoadOldStyle(path string) (OldStyle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open old-style file: %w", err)
	}
	defer f.Close()

	table := make(OldStyle)

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		modern, variant, ok := parseOldStyleLine(sc.Text())
		if !ok {
			continue
		}
		table[modern] = append(table[modern], variant)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read old-style file: %w", err)
	}
	return table, nil
}

func parseOldStyleLine(line string) (rune, string, bool) {
	left, right, ok := strings.Cut(line, "\t")
	if !ok || !isCharWithOptionalSelector(left) || !isCharWithOptionalSelector(right) {
		return 0, "", false
	}
	modern, _ := utf8.DecodeRuneInString(left)
	return modern, right, true
}

// isCharWithOptionalSelector reports whether s is exactly one character,
// optionally followed by one variation selector.
func isCharWithOptionalSelector(s string) bool {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 || first == utf8.RuneError {
		return false
	}
	rest := s[size:]
	if rest == "" {
		return true
	}
	sel, selSize := utf8.DecodeRuneInString(rest)
	return IsVariationSelector(sel) && rest[selSize:] == ""
}

// Lookup returns the historical variants for a modern character.
func (t OldStyle) Lookup(modern rune) ([]string, bool) {
	variants, ok := t[modern]
	return variants, ok
}
