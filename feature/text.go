package feature

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText collapses whitespace and applies Unicode NFKC so that
// compatibility variants (full-width forms, ligatures) count as the same
// token everywhere.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFKC.String(s)
}

// Tokens splits text into lowercased word tokens. Apostrophes stay inside
// tokens so contractions survive ("don't"), everything else non-alphanumeric
// separates.
func Tokens(text string) []string {
	lowered := strings.ToLower(NormalizeText(text))
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// tokenSet returns the distinct tokens of text.
func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// containsPhrase reports whether the token sequence contains the phrase on
// word boundaries. Tokenizing first strips punctuation, so "however," still
// matches "however".
func containsPhrase(tokens []string, phrase string) bool {
	padded := " " + strings.Join(tokens, " ") + " "
	return strings.Contains(padded, " "+phrase+" ")
}
