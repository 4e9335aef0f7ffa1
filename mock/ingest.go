package mock

import (
	"context"

	"github.com/fwojciec/doclens"
)

var _ doclens.Crawler = (*Crawler)(nil)

// Crawler is a mock implementation of doclens.Crawler.
type Crawler struct {
	CrawlFn func(ctx context.Context, seedURL string, maxPages int) ([]*doclens.CrawledPage, error)
}

func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxPages int) ([]*doclens.CrawledPage, error) {
	return c.CrawlFn(ctx, seedURL, maxPages)
}

var _ doclens.Ingester = (*Ingester)(nil)

// Ingester is a mock implementation of doclens.Ingester.
type Ingester struct {
	IngestFn       func(ctx context.Context, domain string, pages []*doclens.CrawledPage) (*doclens.CrawlSession, error)
	SearchFn       func(ctx context.Context, query, domain string, limit int) ([]*doclens.SearchResult, error)
	DeleteDomainFn func(ctx context.Context, domain string) error
	StatusFn       func(ctx context.Context, domain string) (*doclens.CrawlSession, error)
}

func (i *Ingester) Ingest(ctx context.Context, domain string, pages []*doclens.CrawledPage) (*doclens.CrawlSession, error) {
	return i.IngestFn(ctx, domain, pages)
}

func (i *Ingester) Search(ctx context.Context, query, domain string, limit int) ([]*doclens.SearchResult, error) {
	return i.SearchFn(ctx, query, domain, limit)
}

func (i *Ingester) DeleteDomain(ctx context.Context, domain string) error {
	return i.DeleteDomainFn(ctx, domain)
}

func (i *Ingester) Status(ctx context.Context, domain string) (*doclens.CrawlSession, error) {
	return i.StatusFn(ctx, domain)
}
