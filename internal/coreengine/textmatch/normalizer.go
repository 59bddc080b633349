// Package textmatch canonicalizes text and scores how closely a transcript
// matches a reference reading text.
package textmatch

import (
	"strings"
	"unicode"
)

// Normalize lowercases the text, strips every character that is not a letter
// (including accented letters), digit, underscore, or whitespace, collapses
// whitespace runs to single spaces, and trims the result. Normalize is
// idempotent.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
