// Package search implements the search index (component F): NFKD-
// normalized, casefolded, prefix-matched tokens over artists, albums and
// tracks.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCase = cases.Fold()

// Tokenize normalizes s to NFKD, strips combining marks, casefolds, and
// splits on runs of non-alphanumeric characters (§4.6).
func Tokenize(s string) []string {
	decomposed := norm.NFKD.String(s)
	stripped := stripMarks(decomposed)
	folded := foldCase.String(stripped)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func stripMarks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TokenSet returns the distinct token set for s.
func TokenSet(s string) map[string]bool {
	tokens := Tokenize(s)
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
