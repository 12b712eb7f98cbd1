// Package analysis provides tokenization and normalization shared by the
// indexing and query paths. The output depends only on the input text, so
// terms produced at index time always match terms produced at query time.
package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Token is a normalized term together with its ordinal position in the text.
// Positions number tokens, not bytes; consecutive positions are what phrase
// matching checks. Offset is the rune index where the raw token starts,
// used for snippet extraction.
type Token struct {
	Term     string
	Position int
	Offset   int
}

// Tokenize splits text into normalized tokens. Alphanumerics and underscores
// form tokens, hyphens are kept when they join two token characters, and
// everything else separates. Empty and whitespace-only input yields nil.
func Tokenize(text string) []Token {
	if text == "" {
		return nil
	}

	var tokens []Token
	var current strings.Builder
	pos := 0
	start := 0

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case isTokenRune(r):
			if current.Len() == 0 {
				start = i
			}
			current.WriteRune(r)
		case r == '-' && current.Len() > 0 && i+1 < len(runes) && isTokenRune(runes[i+1]):
			// Hyphen inside an identifier joins its halves into one term.
			current.WriteRune(r)
		default:
			if current.Len() > 0 {
				tokens = append(tokens, Token{Term: Fold(current.String()), Position: pos, Offset: start})
				pos++
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, Token{Term: Fold(current.String()), Position: pos, Offset: start})
	}

	return tokens
}

// Terms returns just the normalized terms of text, in order.
func Terms(text string) []string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}

// Fold lowercases a term with Turkish casing rules and collapses the dotless
// ı to i, so that "istanbul", "İstanbul", "ISTANBUL" and "ıstanbul" all fold
// to the same term on both the indexing and the query path.
func Fold(term string) string {
	lower := cases.Lower(language.Turkish).String(term)
	if !strings.ContainsRune(lower, 'ı') {
		return lower
	}
	return strings.Map(func(r rune) rune {
		if r == 'ı' {
			return 'i'
		}
		return r
	}, lower)
}

// isTokenRune reports whether r belongs inside a term.
func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
