package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/doclens"
)

// Ensure LoggingSearcher implements doclens.Searcher.
var _ doclens.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with logging.
type LoggingSearcher struct {
	next   doclens.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next doclens.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the operation.
func (s *LoggingSearcher) Search(ctx context.Context, query, domain string, opts doclens.SearchOptions) (resp *doclens.SearchResponse, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"domain", domain,
			"query", query,
			"duration", time.Since(begin),
			"err", err,
		}
		if resp != nil {
			attrs = append(attrs,
				"queryType", resp.QueryType,
				"results", len(resp.Results),
				"totalFound", resp.TotalFound,
			)
		}
		s.logger.Info("search", attrs...)
	}(time.Now())
	return s.next.Search(ctx, query, domain, opts)
}
