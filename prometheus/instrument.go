package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/doclens"
)

var _ doclens.Searcher = (*Searcher)(nil)

// Searcher records metrics for every search of the wrapped Searcher.
type Searcher struct {
	next    doclens.Searcher
	metrics *Metrics
}

// NewSearcher wraps next.
func NewSearcher(next doclens.Searcher, metrics *Metrics) *Searcher {
	return &Searcher{next: next, metrics: metrics}
}

func (s *Searcher) Search(ctx context.Context, query, domain string, opts doclens.SearchOptions) (*doclens.SearchResponse, error) {
	begin := time.Now()
	resp, err := s.next.Search(ctx, query, domain, opts)
	s.metrics.SearchTotal.WithLabelValues(status(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.metrics.SearchDuration.WithLabelValues(string(resp.QueryType)).Observe(time.Since(begin).Seconds())
	s.metrics.SearchResults.Observe(float64(len(resp.Results)))
	return resp, nil
}

var _ doclens.Ingester = (*Ingester)(nil)

// Ingester records metrics for ingestion by the wrapped Ingester. Other
// operations pass through.
type Ingester struct {
	doclens.Ingester
	metrics *Metrics
}

// NewIngester wraps next.
func NewIngester(next doclens.Ingester, metrics *Metrics) *Ingester {
	return &Ingester{Ingester: next, metrics: metrics}
}

func (i *Ingester) Ingest(ctx context.Context, domain string, pages []*doclens.CrawledPage) (*doclens.CrawlSession, error) {
	begin := time.Now()
	session, err := i.Ingester.Ingest(ctx, domain, pages)
	i.metrics.IngestDuration.Observe(time.Since(begin).Seconds())
	i.metrics.IngestTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		i.metrics.PagesIngested.Add(float64(session.ProcessedPages))
	}
	return session, err
}

var _ doclens.Answerer = (*Answerer)(nil)

// Answerer counts answers and streamed frames of the wrapped Answerer.
type Answerer struct {
	next    doclens.Answerer
	metrics *Metrics
}

// NewAnswerer wraps next.
func NewAnswerer(next doclens.Answerer, metrics *Metrics) *Answerer {
	return &Answerer{next: next, metrics: metrics}
}

func (a *Answerer) Answer(ctx context.Context, query string, results []*doclens.SearchResult) (*doclens.Answer, error) {
	answer, err := a.next.Answer(ctx, query, results)
	a.metrics.AnswerTotal.WithLabelValues("batch", status(err)).Inc()
	return answer, err
}

func (a *Answerer) Stream(ctx context.Context, query string, results []*doclens.SearchResult, emit func(doclens.Frame) error) error {
	failed := false
	err := a.next.Stream(ctx, query, results, func(f doclens.Frame) error {
		a.metrics.StreamFrames.WithLabelValues(string(f.Type)).Inc()
		if f.Type == doclens.FrameError {
			failed = true
		}
		return emit(f)
	})
	if failed && err == nil {
		a.metrics.AnswerTotal.WithLabelValues("stream", "error").Inc()
	} else {
		a.metrics.AnswerTotal.WithLabelValues("stream", status(err)).Inc()
	}
	return err
}
