package doclens

import "context"

// CrawledPage is the readable content of one documentation page.
// Pages are produced by a crawl and consumed once by ingestion.
type CrawledPage struct {
	URL     string `json:"url"`
	Domain  string `json:"domain"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// RenderedPage is the HTML of a page after navigation completed.
type RenderedPage struct {
	// URL is the final URL after redirects.
	URL  string
	HTML string
}

// PageDriver loads pages through a page-automation engine.
type PageDriver interface {
	// Render navigates to the URL and returns the page HTML once it is
	// ready or its readiness budget is spent. The context controls
	// cancellation of the whole navigation.
	Render(ctx context.Context, url string) (*RenderedPage, error)

	// Close releases engine resources.
	Close() error
}

// PageExtractor pulls readable content out of rendered HTML.
type PageExtractor interface {
	// ExtractTitle returns the page title, never empty.
	ExtractTitle(html string) string

	// ExtractContent returns the readable text of the page with navigation
	// and boilerplate removed. Returns an empty string when nothing usable
	// is found.
	ExtractContent(html string) string

	// CollectLinks returns in-scope, normalized, deduplicated links found
	// in the page, in document order.
	CollectLinks(html, pageURL string, scope Scope) []string
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string
}

// Extractor isolates main-content HTML from a page using a readability
// style algorithm.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	Convert(html string) (string, error)
}

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds all URLs from a site's sitemap.
	// It first checks robots.txt for sitemap directives, then falls back
	// to /sitemap.xml. Sitemap indexes are resolved recursively.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
