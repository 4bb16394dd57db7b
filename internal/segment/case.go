package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchCase copies the capitalisation pattern of original onto replacement.
func MatchCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	first, _ := utf8.DecodeRuneInString(original)
	if utf8.RuneCountInString(original) > 1 && strings.ToUpper(original) == original && strings.ToLower(original) != original {
		return strings.ToUpper(replacement)
	}
	if unicode.IsUpper(first) {
		r, size := utf8.DecodeRuneInString(replacement)
		return string(unicode.ToUpper(r)) + replacement[size:]
	}
	return replacement
}
