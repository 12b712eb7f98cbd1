package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/loadsearch/loadsearch/internal/analysis"
)

// snippetRunes caps snippet length in characters.
const snippetRunes = 200

// snippetLead is how many characters of context precede the first match.
const snippetLead = 60

// snippet builds a short excerpt around the first occurrence of any query
// term in the stored document text.
func (e *Engine) snippet(ctx context.Context, path string, terms []string) (string, error) {
	doc, err := e.store.Record(ctx, path)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", fmt.Errorf("document %s not in catalog", path)
	}
	return buildSnippet(doc.Content, terms), nil
}

func buildSnippet(content string, terms []string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	wanted := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		wanted[t] = struct{}{}
	}

	matchOffset := -1
	for _, tok := range analysis.Tokenize(content) {
		if _, ok := wanted[tok.Term]; ok {
			matchOffset = tok.Offset
			break
		}
	}

	runes := []rune(content)
	start := 0
	if matchOffset > snippetLead {
		start = matchOffset - snippetLead
	}
	end := start + snippetRunes
	if end > len(runes) {
		end = len(runes)
	}

	excerpt := strings.Join(strings.Fields(string(runes[start:end])), " ")
	var b strings.Builder
	if start > 0 {
		b.WriteString("…")
	}
	b.WriteString(excerpt)
	if end < len(runes) {
		b.WriteString("…")
	}
	return b.String()
}
