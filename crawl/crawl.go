// Package crawl provides breadth-first crawling of documentation sites.
// It coordinates rendering, content extraction and link discovery over a
// bounded worker pool confined to one host and path prefix.
package crawl

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/fwojciec/doclens"
)

// Default crawl settings.
const (
	DefaultConcurrency = 4
	DefaultMaxPages    = 50
)

// Frontier sizing for Bloom filter deduplication.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

var _ doclens.Crawler = (*Crawler)(nil)

// Crawler traverses a documentation site breadth-first.
type Crawler struct {
	Driver    doclens.PageDriver
	Extractor doclens.PageExtractor

	// Sitemaps, when set, seeds the frontier with in-scope sitemap URLs
	// after the seed itself.
	Sitemaps doclens.SitemapService

	// RateLimiter, when set, throttles requests per host.
	RateLimiter doclens.DomainLimiter

	Logger      *slog.Logger
	Concurrency int
	RetryDelays []time.Duration
}

// pageResult holds the outcome of processing a single URL.
type pageResult struct {
	link  Link
	seq   int
	page  *doclens.CrawledPage
	links []string
	err   error
}

// Crawl visits pages from seedURL until maxPages pages have been processed
// or the frontier is exhausted. Pages that fail to render are logged and
// skipped; pages with no content are dropped. Returned pages are in
// dispatch order.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxPages int) ([]*doclens.CrawledPage, error) {
	scope, err := doclens.NewScope(seedURL)
	if err != nil {
		return nil, err
	}
	if maxPages <= 0 {
		return nil, doclens.Errorf(doclens.EINVALID, "maxPages must be positive")
	}
	logger := c.logger()

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(Link{URL: seedURL})
	c.seedFromSitemaps(ctx, frontier, seedURL, scope)

	logger.Info("crawl start", "url", seedURL, "maxPages", maxPages)
	begin := time.Now()

	var collected []pageResult
	var failed, empty int
	handle := func(res *pageResult) {
		switch {
		case res.err != nil:
			failed++
			logger.Warn("page failed", "url", res.link.URL, "err", res.err)
		case res.page == nil:
			empty++
			logger.Debug("page has no content", "url", res.link.URL)
		default:
			collected = append(collected, *res)
		}
	}

	err = c.walkFrontier(ctx, frontier, maxPages, func(ctx context.Context, link Link) pageResult {
		return c.processPage(ctx, scope, link)
	}, handle)

	sort.Slice(collected, func(i, j int) bool { return collected[i].seq < collected[j].seq })
	pages := make([]*doclens.CrawledPage, 0, len(collected))
	for _, res := range collected {
		pages = append(pages, res.page)
	}

	logger.Info("crawl finished",
		"url", seedURL,
		"pages", len(pages),
		"failed", failed,
		"empty", empty,
		"duration", time.Since(begin),
		"err", err,
	)
	return pages, err
}

// seedFromSitemaps pushes in-scope sitemap URLs. Discovery failures only
// reduce the seed set.
func (c *Crawler) seedFromSitemaps(ctx context.Context, frontier *Frontier, seedURL string, scope doclens.Scope) {
	if c.Sitemaps == nil {
		return
	}
	urls, err := c.Sitemaps.DiscoverURLs(ctx, seedURL)
	if err != nil {
		c.logger().Warn("sitemap discovery failed", "url", seedURL, "err", err)
		return
	}
	for _, u := range urls {
		if scope.Contains(u) {
			frontier.Push(Link{URL: u, Depth: 1})
		}
	}
}

// processPage renders a page, then extracts its links and content.
func (c *Crawler) processPage(ctx context.Context, scope doclens.Scope, link Link) pageResult {
	result := pageResult{link: link}

	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx, scope.Host); err != nil {
			result.err = err
			return result
		}
	}

	delays := c.RetryDelays
	if delays == nil {
		delays = doclens.DefaultRetryDelays()
	}
	rendered, err := RenderWithRetryDelays(ctx, link.URL, c.Driver.Render, c.logger(), delays)
	if err != nil {
		result.err = err
		return result
	}

	base := rendered.URL
	if base == "" {
		base = link.URL
	}
	result.links = c.Extractor.CollectLinks(rendered.HTML, base, scope)

	content := c.Extractor.ExtractContent(rendered.HTML)
	if content == "" {
		return result
	}

	result.page = &doclens.CrawledPage{
		URL:     link.URL,
		Domain:  scope.Host,
		Title:   c.Extractor.ExtractTitle(rendered.HTML),
		Content: content,
	}
	return result
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
