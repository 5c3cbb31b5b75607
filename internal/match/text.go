package match

import (
	"unicode"
	"unicode/utf8"
)

// TitleCase upper-cases the first character of s when it is a lower-case
// letter. Anything else is returned untouched.
func TitleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || !unicode.IsLower(r) {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}
