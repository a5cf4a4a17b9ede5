package rewrite

import (
	"regexp"
	"strconv"
)

// cidEscape is the TeX-side notation for an interchange-collection glyph.
var cidEscape = regexp.MustCompile(`\\CID\{([0-9]+)\}`)

type cidMatch struct {
	start, end int
	code       int
}

func findCIDEscapes(text string) []cidMatch {
	var matches []cidMatch
	for _, loc := range cidEscape.FindAllStringSubmatchIndex(text, -1) {
		code, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		matches = append(matches, cidMatch{start: loc[0], end: loc[1], code: code})
	}
	return matches
}
