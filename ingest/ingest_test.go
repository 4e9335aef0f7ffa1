package ingest_test

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/doclens"
	"github.com/fwojciec/doclens/ingest"
	"github.com/fwojciec/doclens/mock"
	"github.com/fwojciec/doclens/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vectorFor is a deterministic three-dimensional embedding.
func vectorFor(text string) []float32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum32()
	return []float32{float32(sum%97) + 1, float32(sum%89) + 1, float32(len(text)%83) + 1}
}

func hashEmbedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return vectorFor(text), nil
		},
		EmbedBatchFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, t := range texts {
				out[i] = vectorFor(t)
			}
			return out, nil
		},
	}
}

func setup(t *testing.T, embedder doclens.Embedder) (*ingest.Coordinator, *sqlite.ChunkService) {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	chunks := sqlite.NewChunkService(db)
	c := ingest.NewCoordinator(chunks, sqlite.NewSessionService(db), embedder, nil)
	c.RetryDelays = []time.Duration{time.Millisecond, time.Millisecond}
	return c, chunks
}

func page(url, content string) *doclens.CrawledPage {
	return &doclens.CrawledPage{URL: url, Domain: "example.com", Title: "Title", Content: content}
}

func TestCoordinator_Ingest(t *testing.T) {
	t.Parallel()

	t.Run("splits a 2500 character page into three chunks", func(t *testing.T) {
		t.Parallel()

		c, chunks := setup(t, hashEmbedder())
		content := strings.Repeat("abcde fghi", 250)
		require.Len(t, content, 2500)

		session, err := c.Ingest(t.Context(), "example.com", []*doclens.CrawledPage{page("https://example.com/docs/a", content)})
		require.NoError(t, err)

		assert.Equal(t, doclens.SessionCompleted, session.Status)
		assert.Equal(t, 1, session.TotalPages)
		assert.Equal(t, 1, session.ProcessedPages)
		assert.NotNil(t, session.CompletedAt)
		assert.Equal(t, "https://example.com/docs/a", session.BaseURL)

		scored, err := chunks.SemanticSearch(t.Context(), "example.com", vectorFor("x"), 10)
		require.NoError(t, err)
		require.Len(t, scored, 3)

		byIndex := map[int]*doclens.Chunk{}
		for _, sc := range scored {
			byIndex[sc.Chunk.ChunkIndex] = sc.Chunk
			assert.Equal(t, 3, sc.Chunk.Metadata.TotalChunks)
			assert.NotEmpty(t, sc.Chunk.Metadata.ContentHash)
		}
		require.Len(t, byIndex, 3)
		assert.Len(t, byIndex[0].Content, 1000)
		assert.Len(t, byIndex[1].Content, 1000)
		assert.Len(t, byIndex[2].Content, 900)
	})

	t.Run("re-ingest leaves one chunk set and one session", func(t *testing.T) {
		t.Parallel()

		c, chunks := setup(t, hashEmbedder())
		pages := []*doclens.CrawledPage{
			page("https://example.com/docs/a", "First page with enough text."),
			page("https://example.com/docs/b", "Second page with enough text."),
		}

		first, err := c.Ingest(t.Context(), "example.com", pages)
		require.NoError(t, err)
		second, err := c.Ingest(t.Context(), "example.com", pages)
		require.NoError(t, err)

		n, err := chunks.CountChunks(t.Context(), "example.com")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.NotEqual(t, first.ID, second.ID)

		status, err := c.Status(t.Context(), "example.com")
		require.NoError(t, err)
		assert.Equal(t, second.ID, status.ID)
		assert.Equal(t, 2, status.ProcessedPages)
	})

	t.Run("counts pages without content", func(t *testing.T) {
		t.Parallel()

		c, chunks := setup(t, hashEmbedder())

		session, err := c.Ingest(t.Context(), "example.com", []*doclens.CrawledPage{
			page("https://example.com/docs/a", "   "),
			page("https://example.com/docs/b", "Body text."),
		})
		require.NoError(t, err)

		assert.Equal(t, 2, session.ProcessedPages)
		n, err := chunks.CountChunks(t.Context(), "example.com")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		c, _ := setup(t, hashEmbedder())

		_, err := c.Ingest(t.Context(), "example.com", nil)
		assert.Equal(t, doclens.EINVALID, doclens.ErrorCode(err))

		_, err = c.Ingest(t.Context(), "", []*doclens.CrawledPage{page("https://example.com/", "x")})
		assert.Equal(t, doclens.EINVALID, doclens.ErrorCode(err))
	})

	t.Run("retries a failing page", func(t *testing.T) {
		t.Parallel()

		embedder := hashEmbedder()
		var calls atomic.Int32
		batch := embedder.EmbedBatchFn
		embedder.EmbedBatchFn = func(ctx context.Context, texts []string) ([][]float32, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("temporary outage")
			}
			return batch(ctx, texts)
		}
		c, _ := setup(t, embedder)

		session, err := c.Ingest(t.Context(), "example.com", []*doclens.CrawledPage{page("https://example.com/docs/a", "Some text.")})

		require.NoError(t, err)
		assert.Equal(t, doclens.SessionCompleted, session.Status)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("fails session and removes chunks when a page keeps failing", func(t *testing.T) {
		t.Parallel()

		embedder := hashEmbedder()
		var calls atomic.Int32
		batch := embedder.EmbedBatchFn
		embedder.EmbedBatchFn = func(ctx context.Context, texts []string) ([][]float32, error) {
			if strings.HasPrefix(texts[0], "Broken") {
				calls.Add(1)
				return nil, errors.New("quota exceeded")
			}
			return batch(ctx, texts)
		}
		c, chunks := setup(t, embedder)

		_, err := c.Ingest(t.Context(), "example.com", []*doclens.CrawledPage{
			page("https://example.com/docs/a", "Good page."),
			page("https://example.com/docs/b", "Broken page."),
		})

		assert.Equal(t, doclens.EINGEST, doclens.ErrorCode(err))
		assert.Contains(t, doclens.ErrorMessage(err), "quota exceeded")
		assert.Equal(t, int32(3), calls.Load())

		n, err := chunks.CountChunks(t.Context(), "example.com")
		require.NoError(t, err)
		assert.Zero(t, n)

		session, err := c.Status(t.Context(), "example.com")
		require.NoError(t, err)
		assert.Equal(t, doclens.SessionFailed, session.Status)
		assert.Equal(t, 1, session.ProcessedPages)
		assert.Contains(t, session.Error, "quota exceeded")
	})

	t.Run("does not retry validation errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		embedder := &mock.Embedder{
			EmbedBatchFn: func(ctx context.Context, texts []string) ([][]float32, error) {
				calls.Add(1)
				return [][]float32{{}}, nil
			},
		}
		c, _ := setup(t, embedder)

		_, err := c.Ingest(t.Context(), "example.com", []*doclens.CrawledPage{page("https://example.com/docs/a", "Text.")})

		assert.Equal(t, doclens.EINGEST, doclens.ErrorCode(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("rejects misaligned embedding batch", func(t *testing.T) {
		t.Parallel()

		embedder := &mock.Embedder{
			EmbedBatchFn: func(ctx context.Context, texts []string) ([][]float32, error) {
				return [][]float32{}, nil
			},
		}
		c, _ := setup(t, embedder)

		_, err := c.Ingest(t.Context(), "example.com", []*doclens.CrawledPage{page("https://example.com/docs/a", "Text.")})

		assert.Equal(t, doclens.EINGEST, doclens.ErrorCode(err))
		assert.Contains(t, doclens.ErrorMessage(err), "length mismatch")
	})
}

func TestCoordinator_Ingest_serializes_domain_writers(t *testing.T) {
	t.Parallel()

	var active, peak atomic.Int32
	chunks := &mock.ChunkService{
		DeleteChunksByDomainFn: func(ctx context.Context, domain string) error {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			return nil
		},
		CreateChunksFn: func(ctx context.Context, chunks []*doclens.Chunk) error { return nil },
	}
	sessions := &mock.SessionService{
		DeleteSessionByDomainFn: func(ctx context.Context, domain string) error { return nil },
		CreateSessionFn:         func(ctx context.Context, s *doclens.CrawlSession) error { return nil },
		IncrementProcessedFn:    func(ctx context.Context, domain string) error { return nil },
		CompleteSessionFn:       func(ctx context.Context, domain string) error { return nil },
		FindSessionByDomainFn: func(ctx context.Context, domain string) (*doclens.CrawlSession, error) {
			return &doclens.CrawlSession{Domain: domain, Status: doclens.SessionCompleted}, nil
		},
	}
	c := ingest.NewCoordinator(chunks, sessions, hashEmbedder(), nil)

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = c.DeleteDomain(context.Background(), "example.com")
				return
			}
			_, _ = c.Ingest(context.Background(), "example.com", []*doclens.CrawledPage{page("https://example.com/a", "Text.")})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
}

func TestCoordinator_Search(t *testing.T) {
	t.Parallel()

	t.Run("returns semantic hits with relevance equal to similarity", func(t *testing.T) {
		t.Parallel()

		c, _ := setup(t, hashEmbedder())
		_, err := c.Ingest(t.Context(), "example.com", []*doclens.CrawledPage{
			page("https://example.com/docs/a", "Installing the client library."),
			page("https://example.com/docs/b", "Configuring request timeouts."),
		})
		require.NoError(t, err)

		results, err := c.Search(t.Context(), "Installing the client library.", "example.com", 5)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "https://example.com/docs/a", results[0].URL)
		assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
		for _, r := range results {
			assert.Equal(t, r.Similarity, r.RelevanceScore)
			assert.Equal(t, doclens.QueryGeneral, r.QueryType)
		}
	})

	t.Run("is scoped to the domain", func(t *testing.T) {
		t.Parallel()

		c, _ := setup(t, hashEmbedder())
		_, err := c.Ingest(t.Context(), "example.com", []*doclens.CrawledPage{page("https://example.com/docs/a", "Text.")})
		require.NoError(t, err)

		results, err := c.Search(t.Context(), "Text.", "other.com", 5)

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("wraps provider failure", func(t *testing.T) {
		t.Parallel()

		embedder := &mock.Embedder{
			EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
				return nil, errors.New("unavailable")
			},
		}
		c, _ := setup(t, embedder)

		_, err := c.Search(t.Context(), "q", "example.com", 5)

		assert.Equal(t, doclens.ERETRIEVAL, doclens.ErrorCode(err))
	})
}

func TestCoordinator_DeleteDomain(t *testing.T) {
	t.Parallel()

	t.Run("search after delete finds nothing", func(t *testing.T) {
		t.Parallel()

		c, _ := setup(t, hashEmbedder())
		_, err := c.Ingest(t.Context(), "example.com", []*doclens.CrawledPage{page("https://example.com/docs/a", "Text.")})
		require.NoError(t, err)

		require.NoError(t, c.DeleteDomain(t.Context(), "example.com"))

		results, err := c.Search(t.Context(), "Text.", "example.com", 5)
		require.NoError(t, err)
		assert.Empty(t, results)

		_, err = c.Status(t.Context(), "example.com")
		assert.Equal(t, doclens.ENOTFOUND, doclens.ErrorCode(err))
	})

	t.Run("unknown domain is not an error", func(t *testing.T) {
		t.Parallel()

		c, _ := setup(t, hashEmbedder())

		assert.NoError(t, c.DeleteDomain(t.Context(), "never.example.com"))
	})
}
