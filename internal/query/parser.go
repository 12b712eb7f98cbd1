package query

import (
	"strings"

	"github.com/loadsearch/loadsearch/internal/analysis"
	enginerr "github.com/loadsearch/loadsearch/internal/errors"
)

// parsed is a query reduced to its match requirements. Every term must
// occur in a matching document; every phrase must occur as consecutive
// token positions.
type parsed struct {
	terms   []string
	phrases [][]string
}

// empty reports whether the query carries no searchable content.
func (p parsed) empty() bool {
	return len(p.terms) == 0 && len(p.phrases) == 0
}

// allTerms returns the distinct folded terms the evaluator must look up.
func (p parsed) allTerms() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(term string) {
		if _, ok := seen[term]; !ok {
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	for _, t := range p.terms {
		add(t)
	}
	for _, phrase := range p.phrases {
		for _, t := range phrase {
			add(t)
		}
	}
	return out
}

// parse splits a raw query into bare terms and quoted phrases. Terms run
// through the same fold as indexing. An unbalanced quote is rejected; a
// single-word phrase degrades to a bare term.
func parse(raw string) (parsed, error) {
	if strings.Count(raw, `"`)%2 != 0 {
		return parsed{}, enginerr.InvalidQuery("unbalanced quote in query")
	}

	var p parsed
	inQuote := false
	for _, segment := range strings.Split(raw, `"`) {
		terms := analysis.Terms(segment)
		if inQuote {
			switch len(terms) {
			case 0:
			case 1:
				p.terms = append(p.terms, terms[0])
			default:
				p.phrases = append(p.phrases, terms)
			}
		} else {
			p.terms = append(p.terms, terms...)
		}
		inQuote = !inQuote
	}
	return p, nil
}
