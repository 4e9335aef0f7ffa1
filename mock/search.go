package mock

import (
	"context"

	"github.com/fwojciec/doclens"
)

var _ doclens.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of doclens.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query, domain string, opts doclens.SearchOptions) (*doclens.SearchResponse, error)
}

func (s *Searcher) Search(ctx context.Context, query, domain string, opts doclens.SearchOptions) (*doclens.SearchResponse, error) {
	return s.SearchFn(ctx, query, domain, opts)
}

var _ doclens.Answerer = (*Answerer)(nil)

// Answerer is a mock implementation of doclens.Answerer.
type Answerer struct {
	AnswerFn func(ctx context.Context, query string, results []*doclens.SearchResult) (*doclens.Answer, error)
	StreamFn func(ctx context.Context, query string, results []*doclens.SearchResult, emit func(doclens.Frame) error) error
}

func (a *Answerer) Answer(ctx context.Context, query string, results []*doclens.SearchResult) (*doclens.Answer, error) {
	return a.AnswerFn(ctx, query, results)
}

func (a *Answerer) Stream(ctx context.Context, query string, results []*doclens.SearchResult, emit func(doclens.Frame) error) error {
	return a.StreamFn(ctx, query, results, emit)
}

var _ doclens.AnswerCache = (*AnswerCache)(nil)

// AnswerCache is a mock implementation of doclens.AnswerCache.
type AnswerCache struct {
	GetFn func(ctx context.Context, key string) (*doclens.Answer, bool, error)
	SetFn func(ctx context.Context, key string, answer *doclens.Answer) error
}

func (c *AnswerCache) Get(ctx context.Context, key string) (*doclens.Answer, bool, error) {
	return c.GetFn(ctx, key)
}

func (c *AnswerCache) Set(ctx context.Context, key string, answer *doclens.Answer) error {
	return c.SetFn(ctx, key, answer)
}
