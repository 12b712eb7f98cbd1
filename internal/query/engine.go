// Package query evaluates search queries against the index store. Matching
// is implicit AND over all terms; quoted phrases additionally require
// consecutive positions. Results rank by summed term frequency, newest
// file first on ties.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/loadsearch/loadsearch/internal/store"
)

// Result is one ranked hit.
type Result struct {
	Path    string    `json:"path"`
	Score   int       `json:"score"`
	ModTime time.Time `json:"mtime"`
	Snippet string    `json:"snippet"`
}

// Response is the outcome of one search. Diagnostic is set for malformed
// queries, which answer with empty results rather than a failure.
type Response struct {
	Results    []Result      `json:"results"`
	Total      int           `json:"total"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Diagnostic string        `json:"diagnostic,omitempty"`
}

// DefaultCacheSize bounds the response cache.
const DefaultCacheSize = 256

// Engine answers queries from a store, caching responses until the index
// version moves.
type Engine struct {
	store *store.Store
	cache *lru.Cache[string, cachedResponse]
}

type cachedResponse struct {
	version  int64
	response Response
}

// New creates an engine over the given store.
func New(s *store.Store, cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, cachedResponse](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return &Engine{store: s, cache: cache}, nil
}

// Search evaluates raw against the current index snapshot. An empty or
// whitespace-only query returns an empty response with no error. A
// malformed query returns an empty response carrying a diagnostic, also
// without an error: bad syntax is a user answer, not an engine failure.
func (e *Engine) Search(ctx context.Context, raw string, limit int) (Response, error) {
	start := time.Now()

	p, err := parse(raw)
	if err != nil {
		slog.Debug("query rejected", slog.String("query", raw), slog.String("reason", err.Error()))
		return Response{Results: []Result{}, Diagnostic: err.Error()}, nil
	}
	if p.empty() {
		return Response{Results: []Result{}, Elapsed: time.Since(start)}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	version, err := e.store.Version(ctx)
	if err != nil {
		return Response{}, err
	}

	key := fmt.Sprintf("%d|%s", limit, raw)
	if hit, ok := e.cache.Get(key); ok && hit.version == version {
		return hit.response, nil
	}

	response, err := e.evaluate(ctx, p, limit)
	if err != nil {
		return Response{}, err
	}
	response.Elapsed = time.Since(start)
	e.cache.Add(key, cachedResponse{version: version, response: response})

	slog.Debug("query evaluated",
		slog.String("query", raw),
		slog.Int("results", response.Total),
		slog.Duration("elapsed", response.Elapsed))
	return response, nil
}

// candidate accumulates per-document match state during evaluation.
type candidate struct {
	score     int
	modTime   time.Time
	positions map[string]map[int]struct{}
}

func (e *Engine) evaluate(ctx context.Context, p parsed, limit int) (Response, error) {
	terms := p.allTerms()

	// Look up every term; any empty posting list empties the intersection.
	candidates := make(map[string]*candidate)
	for i, term := range terms {
		postings, err := e.store.Lookup(ctx, term)
		if err != nil {
			return Response{}, err
		}
		if len(postings) == 0 {
			return Response{Results: []Result{}}, nil
		}

		matched := make(map[string]struct{}, len(postings))
		for _, posting := range postings {
			matched[posting.Path] = struct{}{}
			if i == 0 {
				candidates[posting.Path] = &candidate{
					modTime:   posting.ModTime,
					positions: make(map[string]map[int]struct{}, len(terms)),
				}
			}
			c, ok := candidates[posting.Path]
			if !ok {
				continue
			}
			c.score += posting.Frequency
			c.positions[term] = positionSet(posting.Positions)
		}
		// Intersect: drop candidates the current term missed.
		for path := range candidates {
			if _, ok := matched[path]; !ok {
				delete(candidates, path)
			}
		}
		if len(candidates) == 0 {
			return Response{Results: []Result{}}, nil
		}
	}

	// Phrase filter: every phrase needs a run of consecutive positions.
	for _, phrase := range p.phrases {
		for path, c := range candidates {
			if !hasPhrase(c.positions, phrase) {
				delete(candidates, path)
			}
		}
	}
	if len(candidates) == 0 {
		return Response{Results: []Result{}}, nil
	}

	ranked := make([]Result, 0, len(candidates))
	for path, c := range candidates {
		ranked = append(ranked, Result{Path: path, Score: c.score, ModTime: c.modTime})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].ModTime.Equal(ranked[j].ModTime) {
			return ranked[i].ModTime.After(ranked[j].ModTime)
		}
		return ranked[i].Path < ranked[j].Path
	})

	total := len(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	for i := range ranked {
		snippet, err := e.snippet(ctx, ranked[i].Path, terms)
		if err != nil {
			// A vanished document still ranks; it just has no snippet.
			slog.Debug("snippet failed",
				slog.String("path", ranked[i].Path),
				slog.String("error", err.Error()))
			continue
		}
		ranked[i].Snippet = snippet
	}

	return Response{Results: ranked, Total: total}, nil
}

func positionSet(positions []int) map[int]struct{} {
	set := make(map[int]struct{}, len(positions))
	for _, p := range positions {
		set[p] = struct{}{}
	}
	return set
}

// hasPhrase checks whether the phrase terms occur at consecutive positions.
func hasPhrase(positions map[string]map[int]struct{}, phrase []string) bool {
	first := positions[phrase[0]]
	for start := range first {
		found := true
		for offset := 1; offset < len(phrase); offset++ {
			if _, ok := positions[phrase[offset]][start+offset]; !ok {
				found = false
				break
			}
		}
		if found {
			return true
		}
	}
	return false
}
