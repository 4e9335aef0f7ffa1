package mock

import (
	"context"

	"github.com/fwojciec/doclens"
)

var _ doclens.PageDriver = (*PageDriver)(nil)

// PageDriver is a mock implementation of doclens.PageDriver.
type PageDriver struct {
	RenderFn func(ctx context.Context, url string) (*doclens.RenderedPage, error)
	CloseFn  func() error
}

func (d *PageDriver) Render(ctx context.Context, url string) (*doclens.RenderedPage, error) {
	return d.RenderFn(ctx, url)
}

func (d *PageDriver) Close() error {
	return d.CloseFn()
}

var _ doclens.PageExtractor = (*PageExtractor)(nil)

// PageExtractor is a mock implementation of doclens.PageExtractor.
type PageExtractor struct {
	ExtractTitleFn   func(html string) string
	ExtractContentFn func(html string) string
	CollectLinksFn   func(html, pageURL string, scope doclens.Scope) []string
}

func (e *PageExtractor) ExtractTitle(html string) string {
	return e.ExtractTitleFn(html)
}

func (e *PageExtractor) ExtractContent(html string) string {
	return e.ExtractContentFn(html)
}

func (e *PageExtractor) CollectLinks(html, pageURL string, scope doclens.Scope) []string {
	return e.CollectLinksFn(html, pageURL, scope)
}

var _ doclens.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of doclens.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*doclens.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*doclens.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ doclens.Converter = (*Converter)(nil)

// Converter is a mock implementation of doclens.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ doclens.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of doclens.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL)
}

var _ doclens.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of doclens.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

var _ doclens.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of doclens.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
