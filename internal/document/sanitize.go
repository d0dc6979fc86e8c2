package document

import (
	"strings"
	"unicode/utf8"
)

// MinTextLength is the shortest sanitized text worth sending to the oracle
const MinTextLength = 10

// Sanitize replaces non-breaking spaces, collapses whitespace runs to a single
// space and trims the ends. Blank input yields "".
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	// strings.Fields splits on any unicode whitespace run
	return strings.Join(strings.Fields(text), " ")
}

// TooShort reports whether sanitized text is below MinTextLength characters
func TooShort(sanitized string) bool {
	return utf8.RuneCountInString(sanitized) < MinTextLength
}
