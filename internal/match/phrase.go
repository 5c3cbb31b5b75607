package match

import (
	"strings"
	"unicode"
)

// ParsePhrases splits a raw query into phrases. Whitespace separates phrases,
// except inside double quotes where everything up to the closing quote (or
// the end of input) is one phrase. Quotes are dropped, as are empty phrases.
// Order and duplicates are kept.
func ParsePhrases(raw string) []string {
	var (
		phrases []string
		current strings.Builder
		quoted  bool
	)

	flush := func() {
		if current.Len() > 0 {
			phrases = append(phrases, current.String())
			current.Reset()
		}
	}

	for _, r := range raw {
		switch {
		case r == '"':
			flush()
			quoted = !quoted
		case !quoted && unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
		}
	}

	flush()

	return phrases
}
