package match

import (
	"strings"
	"unicode"
)

const soundexLength = 4

// Soundex returns the four character phonetic code of word: its first
// character followed by three digits, zero padded. An empty word has an
// empty code.
//
// Letters that share a digit with the previous coded letter are collapsed.
// Vowels, y and non-letters separate runs; h and w do not, so "Ashcraft"
// encodes to A261.
func Soundex(word string) string {
	if word == "" {
		return ""
	}

	rs := []rune(word)

	var code strings.Builder
	code.Grow(soundexLength)
	code.WriteRune(rs[0])

	written := 1
	prev := soundexDigit(unicode.ToLower(rs[0]))

	for _, r := range rs[1:] {
		if written == soundexLength {
			break
		}

		r = unicode.ToLower(r)
		if r == 'h' || r == 'w' {
			continue
		}

		digit := soundexDigit(r)
		if digit != '0' && digit != prev {
			code.WriteByte(digit)
			written++
		}

		prev = digit
	}

	for ; written < soundexLength; written++ {
		code.WriteByte('0')
	}

	return code.String()
}

func soundexDigit(r rune) byte {
	switch r {
	case 'b', 'f', 'p', 'v':
		return '1'
	case 'c', 'g', 'j', 'k', 'q', 's', 'x', 'z':
		return '2'
	case 'd', 't':
		return '3'
	case 'l':
		return '4'
	case 'm', 'n':
		return '5'
	case 'r':
		return '6'
	default:
		return '0'
	}
}
