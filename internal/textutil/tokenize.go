// Package textutil provides the shared tokenization primitive used by
// every scorer in the assistant. Tokenization is a pure function of the
// input text: lowercase, NFC-normalized runs of letters and digits,
// admitting the Indic script ranges of the supported languages.
package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Set is a token set.
type Set map[string]struct{}

// NewSet builds a Set from a token slice.
func NewSet(tokens []string) Set {
	s := make(Set, len(tokens))
	for _, tok := range tokens {
		s[tok] = struct{}{}
	}
	return s
}

// Has reports whether the token is in the set.
func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Overlap returns the number of tokens shared with other.
func (s Set) Overlap(other Set) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	count := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			count++
		}
	}
	return count
}

// Tokenize splits text into lowercase alphanumeric runs. Runs of
// Devanagari, Bengali, Tamil and Telugu characters are kept intact so
// queries in the supported languages tokenize stably.
func Tokenize(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))

	var tokens []string
	var current strings.Builder
	for _, r := range text {
		if isTokenRune(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r >= 0x0900 && r <= 0x097F: // Devanagari
		return true
	case r >= 0x0980 && r <= 0x09FF: // Bengali
		return true
	case r >= 0x0B80 && r <= 0x0BFF: // Tamil
		return true
	case r >= 0x0C00 && r <= 0x0C7F: // Telugu
		return true
	}
	return false
}

// minTokenLength is the shortest token kept after stopword filtering.
const minTokenLength = 2

// FilterTokens drops stopwords and tokens shorter than two characters.
func FilterTokens(tokens []string, stopwords Set) []string {
	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len([]rune(tok)) < minTokenLength {
			continue
		}
		if stopwords.Has(tok) {
			continue
		}
		filtered = append(filtered, tok)
	}
	return filtered
}
