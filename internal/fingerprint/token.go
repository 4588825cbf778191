package fingerprint

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tokenize splits text into lower-cased runs of letters and digits, in order of appearance.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}

	// Compose first so a letter followed by a combining mark stays one token
	folded := strings.ToLower(norm.NFC.String(text))

	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
