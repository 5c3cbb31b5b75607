package match

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// latin1Fold maps the accented Latin-1 code points found in catalog text to
// their plain ASCII counterpart. Anything not listed passes through unchanged.
var latin1Fold = map[rune]rune{
	'ä': 'a',
	'à': 'a',
	'á': 'a',
	'À': 'A',
	'é': 'e',
	'ê': 'e',
	'ë': 'e',
	'è': 'e',
	'É': 'E',
	'ï': 'i',
	'ì': 'i',
	'í': 'i',
	'Î': 'I',
	'±': 'n', // mis-encoded ñ in older catalogs
	'ñ': 'n',
	'ö': 'o',
	'ó': 'o',
	'Ö': 'O',
	'ü': 'u',
	'´': '\'',
}

var foldTransformer = runes.Map(func(r rune) rune {
	if folded, ok := latin1Fold[r]; ok {
		return folded
	}

	return r
})

// Normalize folds accented characters to ASCII so that keyword queries typed
// without accents still hit accented quotation text.
//
// Text that is already ASCII is returned as is. Bytes that are not valid
// UTF-8 are read as single-byte Latin-1: listed ones fold like their code
// point, the rest are copied unchanged. Normalize is idempotent.
func Normalize(text string) string {
	if isASCII(text) {
		return text
	}

	if utf8.ValidString(text) {
		return foldRunes(text)
	}

	var b strings.Builder
	b.Grow(len(text))

	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != utf8.RuneError || size != 1 {
			i += size
			continue
		}

		b.WriteString(foldRunes(text[start:i]))

		if folded, ok := latin1Fold[rune(text[i])]; ok {
			b.WriteRune(folded)
		} else {
			b.WriteByte(text[i])
		}

		i++
		start = i
	}

	b.WriteString(foldRunes(text[start:]))

	return b.String()
}

func foldRunes(s string) string {
	if isASCII(s) {
		return s
	}

	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}

	return folded
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}
