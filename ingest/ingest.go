// Package ingest turns crawled pages into a searchable per-domain corpus.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/doclens"
)

var _ doclens.Ingester = (*Coordinator)(nil)

// Coordinator implements doclens.Ingester. Writers of a domain (Ingest and
// DeleteDomain) are serialized per domain. Search takes no lock, so a search
// during a re-crawl may see the domain empty or partially ingested.
type Coordinator struct {
	Chunks   doclens.ChunkService
	Sessions doclens.SessionService
	Embedder doclens.Embedder
	Logger   *slog.Logger

	ChunkSize    int
	ChunkOverlap int

	// RetryDelays are the waits between attempts of a failing page.
	RetryDelays []time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator returns a Coordinator with default chunking and retry
// settings.
func NewCoordinator(chunks doclens.ChunkService, sessions doclens.SessionService, embedder doclens.Embedder, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		Chunks:       chunks,
		Sessions:     sessions,
		Embedder:     embedder,
		Logger:       logger,
		ChunkSize:    doclens.DefaultChunkSize,
		ChunkOverlap: doclens.DefaultChunkOverlap,
		RetryDelays:  doclens.DefaultRetryDelays(),
	}
}

// Ingest replaces the domain's chunks and session with the given pages.
// Pages are processed in order. A page that still fails after its retries
// fails the session, removes the chunks stored so far and returns EINGEST.
func (c *Coordinator) Ingest(ctx context.Context, domain string, pages []*doclens.CrawledPage) (*doclens.CrawlSession, error) {
	if domain == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "domain required")
	}
	if len(pages) == 0 {
		return nil, doclens.Errorf(doclens.EINVALID, "no pages to ingest")
	}

	unlock := c.lock(domain)
	defer unlock()

	logger := c.logger().With("domain", domain)

	if err := c.purge(ctx, domain); err != nil {
		return nil, err
	}

	session := &doclens.CrawlSession{
		Domain:     domain,
		BaseURL:    pages[0].URL,
		Status:     doclens.SessionProcessing,
		TotalPages: len(pages),
	}
	if err := c.Sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	logger.Info("ingest start", "pages", len(pages), "session", session.ID)
	begin := time.Now()

	var total int
	for _, page := range pages {
		n, err := c.ingestPage(ctx, domain, page)
		if err != nil {
			logger.Error("ingest failed", "url", page.URL, "error", err)
			return nil, c.fail(ctx, domain, page.URL, err)
		}
		total += n
		logger.Debug("ingest page", "url", page.URL, "chunks", n)
	}

	if err := c.Sessions.CompleteSession(ctx, domain); err != nil {
		return nil, err
	}
	logger.Info("ingest complete", "pages", len(pages), "chunks", total, "duration", time.Since(begin))

	return c.Sessions.FindSessionByDomain(ctx, domain)
}

// ingestPage chunks, embeds and stores one page, then counts it as
// processed. Chunks are stored at most once even when the counter update
// is retried.
func (c *Coordinator) ingestPage(ctx context.Context, domain string, page *doclens.CrawledPage) (int, error) {
	texts := doclens.ChunkText(page.Content, c.ChunkSize, c.ChunkOverlap)

	var stored bool
	err := doclens.Retry(ctx, c.RetryDelays, c.logger().With("url", page.URL), func() error {
		if !stored {
			if err := c.store(ctx, domain, page, texts); err != nil {
				return err
			}
			stored = true
		}
		return c.Sessions.IncrementProcessed(ctx, domain)
	})
	return len(texts), err
}

func (c *Coordinator) store(ctx context.Context, domain string, page *doclens.CrawledPage, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	vectors, err := c.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(texts) {
		return doclens.Errorf(doclens.EPROVIDER, "embedding batch response length mismatch")
	}

	chunks := make([]*doclens.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &doclens.Chunk{
			Domain:     domain,
			URL:        page.URL,
			Title:      page.Title,
			Content:    text,
			ChunkIndex: i,
			Embedding:  vectors[i],
			Metadata:   doclens.ChunkMetadata{TotalChunks: len(texts)},
		}
	}
	return c.Chunks.CreateChunks(ctx, chunks)
}

// fail marks the session failed and removes the domain's partial chunks.
// Cleanup runs even when ctx is already cancelled.
func (c *Coordinator) fail(ctx context.Context, domain, url string, cause error) error {
	cleanup := context.WithoutCancel(ctx)
	msg := errorText(cause)

	if err := c.Chunks.DeleteChunksByDomain(cleanup, domain); err != nil {
		c.logger().Error("failed to remove partial chunks", "domain", domain, "error", err)
	}
	if err := c.Sessions.FailSession(cleanup, domain, msg); err != nil {
		c.logger().Error("failed to mark session failed", "domain", domain, "error", err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return doclens.Errorf(doclens.EINGEST, "ingesting %s: %s", url, msg)
}

// Search returns the limit chunks nearest to query without fusion or
// re-ranking. Relevance equals similarity.
func (c *Coordinator) Search(ctx context.Context, query, domain string, limit int) ([]*doclens.SearchResult, error) {
	if query == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "query required")
	}
	if domain == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "domain required")
	}
	if limit <= 0 {
		limit = doclens.DefaultSearchLimit
	}

	vector, err := c.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, doclens.Errorf(doclens.ERETRIEVAL, "embed query: %s", errorText(err))
	}
	scored, err := c.Chunks.SemanticSearch(ctx, domain, vector, limit)
	if err != nil {
		return nil, doclens.Errorf(doclens.ERETRIEVAL, "semantic search: %s", errorText(err))
	}

	results := make([]*doclens.SearchResult, len(scored))
	for i, sc := range scored {
		similarity := max(0, min(1, 1-sc.Distance))
		results[i] = &doclens.SearchResult{
			ID:             sc.Chunk.ID,
			URL:            sc.Chunk.URL,
			Title:          sc.Chunk.Title,
			Content:        sc.Chunk.Content,
			Similarity:     similarity,
			RelevanceScore: similarity,
			QueryType:      doclens.QueryGeneral,
		}
	}
	return results, nil
}

// DeleteDomain removes the domain's chunks and session.
func (c *Coordinator) DeleteDomain(ctx context.Context, domain string) error {
	if domain == "" {
		return doclens.Errorf(doclens.EINVALID, "domain required")
	}

	unlock := c.lock(domain)
	defer unlock()

	if err := c.purge(ctx, domain); err != nil {
		return err
	}
	c.logger().Info("domain deleted", "domain", domain)
	return nil
}

// Status returns the domain's crawl session.
func (c *Coordinator) Status(ctx context.Context, domain string) (*doclens.CrawlSession, error) {
	if domain == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "domain required")
	}
	return c.Sessions.FindSessionByDomain(ctx, domain)
}

func (c *Coordinator) purge(ctx context.Context, domain string) error {
	if err := c.Chunks.DeleteChunksByDomain(ctx, domain); err != nil {
		return err
	}
	return c.Sessions.DeleteSessionByDomain(ctx, domain)
}

// lock acquires the domain's writer lock and returns its release.
func (c *Coordinator) lock(domain string) func() {
	c.mu.Lock()
	if c.locks == nil {
		c.locks = make(map[string]*sync.Mutex)
	}
	l, ok := c.locks[domain]
	if !ok {
		l = &sync.Mutex{}
		c.locks[domain] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// errorText returns the user-facing message of application errors and the
// raw text of anything else.
func errorText(err error) string {
	var e *doclens.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
