package http

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/doclens"
)

// DefaultMaxSitemapURLs caps how many page URLs one discovery returns.
const DefaultMaxSitemapURLs = 10000

var _ doclens.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from the sitemaps a site advertises in
// robots.txt, falling back to /sitemap.xml. Sitemap indexes are followed
// and gzip-compressed sitemaps are supported.
type SitemapService struct {
	client  *http.Client
	maxURLs int
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client, maxURLs: DefaultMaxSitemapURLs}
}

// DiscoverURLs returns the distinct sitemap URLs inside the scope of baseURL
// in sitemap order. A site without sitemaps yields an empty slice. Broken
// nested sitemaps are skipped.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scope, err := doclens.NewScope(baseURL)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(baseURL)
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	sitemaps, err := s.findSitemaps(ctx, root)
	if err != nil {
		return nil, err
	}

	w := &sitemapWalk{
		svc:      s,
		scope:    scope,
		sitemaps: make(map[string]bool),
		pages:    make(map[string]bool),
		urls:     []string{},
	}
	for _, sm := range sitemaps {
		if err := w.visit(ctx, sm); err != nil {
			return nil, err
		}
	}
	return w.urls, nil
}

// sitemapWalk accumulates page URLs across a tree of sitemaps.
type sitemapWalk struct {
	svc      *SitemapService
	scope    doclens.Scope
	sitemaps map[string]bool
	pages    map[string]bool
	urls     []string
}

func (w *sitemapWalk) full() bool {
	return w.svc.maxURLs > 0 && len(w.urls) >= w.svc.maxURLs
}

// visit reads one sitemap. Only context errors are returned.
func (w *sitemapWalk) visit(ctx context.Context, sitemapURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.sitemaps[sitemapURL] || w.full() {
		return nil
	}
	w.sitemaps[sitemapURL] = true

	doc, err := w.svc.readSitemap(ctx, sitemapURL)
	if err != nil {
		return ctx.Err()
	}

	root := doc.Root()
	if root == nil {
		return nil
	}
	if root.Tag == "sitemapindex" {
		for _, loc := range locations(root, "sitemap") {
			if err := w.visit(ctx, loc); err != nil {
				return err
			}
		}
		return nil
	}

	for _, loc := range locations(root, "url") {
		if w.full() {
			return nil
		}
		normalized, err := doclens.NormalizeURL(loc)
		if err != nil || w.pages[normalized] || !w.scope.Contains(normalized) {
			continue
		}
		w.pages[normalized] = true
		w.urls = append(w.urls, normalized)
	}
	return nil
}

// locations returns the trimmed <loc> text of each child element named tag.
func locations(root *etree.Element, tag string) []string {
	var locs []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if text := strings.TrimSpace(loc.Text()); text != "" {
			locs = append(locs, text)
		}
	}
	return locs
}

// findSitemaps returns the sitemaps listed in robots.txt, or /sitemap.xml
// when robots.txt lists none.
func (s *SitemapService) findSitemaps(ctx context.Context, root *url.URL) ([]string, error) {
	if sitemaps, err := s.robotsSitemaps(ctx, root.JoinPath("robots.txt").String()); err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []string{root.JoinPath("sitemap.xml").String()}, nil
}

// robotsSitemaps extracts Sitemap: directives from robots.txt.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	const directive = "sitemap:"
	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > len(directive) && strings.EqualFold(line[:len(directive)], directive) {
			if sm := strings.TrimSpace(line[len(directive):]); sm != "" {
				sitemaps = append(sitemaps, sm)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// readSitemap fetches and parses a sitemap, decompressing .gz files.
func (s *SitemapService) readSitemap(ctx context.Context, sitemapURL string) (*etree.Document, error) {
	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var r io.Reader = body
	if strings.HasSuffix(strings.ToLower(sitemapURL), ".gz") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("opening gzip sitemap: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}
	return doc, nil
}

// get fetches a URL and returns the body of a 200 response.
func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}
