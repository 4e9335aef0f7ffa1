package doclens

import "context"

// Crawler collects the pages of a documentation site.
type Crawler interface {
	// Crawl visits pages breadth-first from seedURL, confined to the seed's
	// hostname and path prefix, and stops after maxPages pages processed.
	Crawl(ctx context.Context, seedURL string, maxPages int) ([]*CrawledPage, error)
}

// Ingester owns the per-domain chunk corpus.
type Ingester interface {
	// Ingest replaces everything stored for the domain with the pages.
	Ingest(ctx context.Context, domain string, pages []*CrawledPage) (*CrawlSession, error)

	// Search is a semantic-only lookup without fusion or re-ranking.
	Search(ctx context.Context, query, domain string, limit int) ([]*SearchResult, error)

	// DeleteDomain removes the domain's chunks and session. Deleting an
	// unknown domain is not an error.
	DeleteDomain(ctx context.Context, domain string) error

	// Status returns the domain's crawl session.
	// Returns ENOTFOUND if the domain was never ingested.
	Status(ctx context.Context, domain string) (*CrawlSession, error)
}
