package search

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/fwojciec/doclens"
	"golang.org/x/sync/errgroup"
)

var _ doclens.Searcher = (*Engine)(nil)

// Engine implements doclens.Searcher. It embeds an expanded query for a
// semantic branch and runs a keyword branch alongside it, then fuses and
// re-ranks both candidate sets.
type Engine struct {
	Chunks   doclens.ChunkService
	Embedder doclens.Embedder
	Logger   *slog.Logger
}

// NewEngine returns an Engine over chunks using embedder for query vectors.
func NewEngine(chunks doclens.ChunkService, embedder doclens.Embedder, logger *slog.Logger) *Engine {
	return &Engine{Chunks: chunks, Embedder: embedder, Logger: logger}
}

// Search ranks the domain's chunks against query. A failure of either
// retrieval branch fails the whole search with ERETRIEVAL.
//
// Results are ordered by relevance descending, then similarity descending,
// then chunk ID ascending, so an unchanged domain always yields the same
// order.
func (e *Engine) Search(ctx context.Context, query, domain string, opts doclens.SearchOptions) (*doclens.SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "query required")
	}
	if domain == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "domain required")
	}
	if opts.Limit <= 0 {
		opts.Limit = doclens.DefaultSearchLimit
	}

	analysis := Analyze(query)
	expanded := Expand(query, analysis)
	e.logger().Debug("search", "domain", domain, "query", query, "enhancedQuery", expanded, "queryType", analysis.Type)

	var semantic, lexical []doclens.ScoredChunk
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vector, err := e.Embedder.Embed(gctx, expanded)
		if err != nil {
			return retrievalError("embed query", err)
		}
		semantic, err = e.Chunks.SemanticSearch(gctx, domain, vector, opts.Limit*2)
		if err != nil {
			return retrievalError("semantic search", err)
		}
		return nil
	})
	if opts.IncludeKeywords && len(analysis.Keywords) > 0 {
		g.Go(func() error {
			var err error
			lexical, err = e.Chunks.LexicalSearch(gctx, domain, analysis.Keywords, opts.Limit)
			if err != nil {
				return retrievalError("keyword search", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	fused := fuse(semantic, lexical, analysis)
	rank(fused)

	results := make([]*doclens.SearchResult, 0, min(len(fused), opts.Limit))
	for _, r := range fused {
		if len(results) == opts.Limit {
			break
		}
		if r.RelevanceScore >= opts.Threshold {
			results = append(results, r)
		}
	}

	return &doclens.SearchResponse{
		Results:       results,
		TotalFound:    len(fused),
		QueryType:     analysis.Type,
		EnhancedQuery: expanded,
	}, nil
}

// fuse merges both branches by chunk ID. A chunk found by both keeps its
// semantic similarity and score and gains CorroborationBonus. Every fused
// result then gets the query-type boost.
func fuse(semantic, lexical []doclens.ScoredChunk, analysis doclens.QueryAnalysis) []*doclens.SearchResult {
	byID := make(map[int64]*doclens.SearchResult, len(semantic)+len(lexical))
	var fused []*doclens.SearchResult

	add := func(c *doclens.Chunk, similarity float64) {
		if existing, ok := byID[c.ID]; ok {
			existing.RelevanceScore = clamp(existing.RelevanceScore + CorroborationBonus)
			return
		}
		r := &doclens.SearchResult{
			ID:             c.ID,
			URL:            c.URL,
			Title:          c.Title,
			Content:        c.Content,
			Similarity:     similarity,
			RelevanceScore: Score(c.Content, analysis.Keywords, similarity),
		}
		byID[c.ID] = r
		fused = append(fused, r)
	}
	for _, sc := range semantic {
		add(sc.Chunk, clamp(1-sc.Distance))
	}
	for _, sc := range lexical {
		add(sc.Chunk, LexicalSimilarity)
	}

	for _, r := range fused {
		r.QueryType = analysis.Type
		r.RelevanceScore = clamp(r.RelevanceScore + TypeBoost(r.Content, analysis.Type))
	}
	return fused
}

func rank(results []*doclens.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		return a.ID < b.ID
	})
}

func retrievalError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	var e *doclens.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	return doclens.Errorf(doclens.ERETRIEVAL, "%s: %s", op, msg)
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}
