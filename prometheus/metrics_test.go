package prometheus_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/doclens"
	"github.com/fwojciec/doclens/mock"
	"github.com/fwojciec/doclens/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearcher(t *testing.T) {
	t.Parallel()

	m := prometheus.NewMetrics()
	fail := false
	s := prometheus.NewSearcher(&mock.Searcher{
		SearchFn: func(ctx context.Context, query, domain string, opts doclens.SearchOptions) (*doclens.SearchResponse, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return &doclens.SearchResponse{
				Results:   []*doclens.SearchResult{{ID: 1}, {ID: 2}},
				QueryType: doclens.QueryHow,
			}, nil
		},
	}, m)

	_, err := s.Search(t.Context(), "how to", "example.com", doclens.DefaultSearchOptions())
	require.NoError(t, err)
	fail = true
	_, err = s.Search(t.Context(), "how to", "example.com", doclens.DefaultSearchOptions())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchTotal.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SearchDuration))
}

func TestIngester(t *testing.T) {
	t.Parallel()

	m := prometheus.NewMetrics()
	var deleted string
	i := prometheus.NewIngester(&mock.Ingester{
		IngestFn: func(ctx context.Context, domain string, pages []*doclens.CrawledPage) (*doclens.CrawlSession, error) {
			return &doclens.CrawlSession{Domain: domain, ProcessedPages: len(pages)}, nil
		},
		DeleteDomainFn: func(ctx context.Context, domain string) error {
			deleted = domain
			return nil
		},
	}, m)

	_, err := i.Ingest(t.Context(), "example.com", []*doclens.CrawledPage{{}, {}, {}})
	require.NoError(t, err)
	require.NoError(t, i.DeleteDomain(t.Context(), "example.com"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.PagesIngested))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestTotal.WithLabelValues("ok")))
	assert.Equal(t, "example.com", deleted)
}

func TestAnswerer_Stream(t *testing.T) {
	t.Parallel()

	m := prometheus.NewMetrics()
	a := prometheus.NewAnswerer(&mock.Answerer{
		StreamFn: func(ctx context.Context, query string, results []*doclens.SearchResult, emit func(doclens.Frame) error) error {
			for _, f := range []doclens.Frame{
				{Type: doclens.FrameSources},
				{Type: doclens.FrameChunk, Content: "a"},
				{Type: doclens.FrameChunk, Content: "b"},
				{Type: doclens.FrameError, Content: "reset"},
			} {
				if err := emit(f); err != nil {
					return err
				}
			}
			return nil
		},
	}, m)

	var frames int
	err := a.Stream(t.Context(), "q", nil, func(doclens.Frame) error {
		frames++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, frames)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StreamFrames.WithLabelValues("chunk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnswerTotal.WithLabelValues("stream", "error")))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := prometheus.NewMetrics()
	m.PagesIngested.Add(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "doclens_pages_ingested_total 2")
	assert.Contains(t, string(body), "go_goroutines")
}
