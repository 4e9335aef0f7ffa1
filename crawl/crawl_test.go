package crawl_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/doclens"
	"github.com/fwojciec/doclens/crawl"
	"github.com/fwojciec/doclens/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// site maps a URL to its content and outgoing links. The mock extractor
// reads them back from a tiny "html" encoding.
type site map[string]struct {
	content string
	links   []string
}

func (s site) html(url string) string {
	p := s[url]
	return p.content + "|" + strings.Join(p.links, ",")
}

func newTestCrawler(s site) (*crawl.Crawler, *mock.PageDriver) {
	driver := &mock.PageDriver{
		RenderFn: func(_ context.Context, url string) (*doclens.RenderedPage, error) {
			if _, ok := s[url]; !ok {
				return nil, fmt.Errorf("404 for %s", url)
			}
			return &doclens.RenderedPage{URL: url, HTML: s.html(url)}, nil
		},
		CloseFn: func() error { return nil },
	}
	extractor := &mock.PageExtractor{
		ExtractTitleFn: func(html string) string { return "Title" },
		ExtractContentFn: func(html string) string {
			content, _, _ := strings.Cut(html, "|")
			return content
		},
		CollectLinksFn: func(html, _ string, scope doclens.Scope) []string {
			_, links, _ := strings.Cut(html, "|")
			var out []string
			for _, l := range strings.Split(links, ",") {
				if l != "" && scope.Contains(l) {
					out = append(out, l)
				}
			}
			return out
		},
	}
	c := &crawl.Crawler{
		Driver:      driver,
		Extractor:   extractor,
		Concurrency: 3,
		RetryDelays: []time.Duration{},
	}
	return c, driver
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("stops at maxPages even when seed has many links", func(t *testing.T) {
		t.Parallel()

		s := site{}
		var links []string
		for i := range 10 {
			u := fmt.Sprintf("https://example.com/docs/page%d", i)
			links = append(links, u)
			s[u] = struct {
				content string
				links   []string
			}{content: "page content"}
		}
		s["https://example.com/docs/"] = struct {
			content string
			links   []string
		}{content: "seed content", links: links}

		c, driver := newTestCrawler(s)
		var renders atomic.Int32
		render := driver.RenderFn
		driver.RenderFn = func(ctx context.Context, url string) (*doclens.RenderedPage, error) {
			renders.Add(1)
			return render(ctx, url)
		}

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", 1)

		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, "https://example.com/docs/", pages[0].URL)
		assert.Equal(t, "example.com", pages[0].Domain)
		assert.Equal(t, "seed content", pages[0].Content)
		assert.Equal(t, int32(1), renders.Load())
	})

	t.Run("follows in-scope links breadth-first without revisiting", func(t *testing.T) {
		t.Parallel()

		s := site{
			"https://example.com/docs/":  {content: "root", links: []string{"https://example.com/docs/a", "https://example.com/docs/b#top", "https://example.com/blog/x"}},
			"https://example.com/docs/a": {content: "a", links: []string{"https://example.com/docs/", "https://example.com/docs/c?ref=a"}},
			"https://example.com/docs/b": {content: "b", links: []string{"https://example.com/docs/a#section"}},
			"https://example.com/docs/c": {content: "c"},
			"https://example.com/blog/x": {content: "out of scope"},
		}
		c, driver := newTestCrawler(s)
		var mu sync.Mutex
		rendered := map[string]int{}
		render := driver.RenderFn
		driver.RenderFn = func(ctx context.Context, url string) (*doclens.RenderedPage, error) {
			mu.Lock()
			rendered[url]++
			mu.Unlock()
			return render(ctx, url)
		}

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", 50)

		require.NoError(t, err)
		var contents []string
		for _, p := range pages {
			contents = append(contents, p.Content)
		}
		assert.ElementsMatch(t, []string{"root", "a", "b", "c"}, contents)
		assert.Equal(t, "root", pages[0].Content)
		for url, n := range rendered {
			assert.Equal(t, 1, n, url)
		}
		assert.NotContains(t, rendered, "https://example.com/blog/x")
	})

	t.Run("skips failing pages and keeps crawling", func(t *testing.T) {
		t.Parallel()

		s := site{
			"https://example.com/docs/":   {content: "root", links: []string{"https://example.com/docs/missing", "https://example.com/docs/ok"}},
			"https://example.com/docs/ok": {content: "ok"},
		}
		c, _ := newTestCrawler(s)
		var buf bytes.Buffer
		c.Logger = slog.New(slog.NewTextHandler(&buf, nil))

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", 10)

		require.NoError(t, err)
		assert.Len(t, pages, 2)
		assert.Contains(t, buf.String(), "page failed")
		assert.Contains(t, buf.String(), "url=https://example.com/docs/missing")
	})

	t.Run("drops pages without content but follows their links", func(t *testing.T) {
		t.Parallel()

		s := site{
			"https://example.com/docs/":     {content: "", links: []string{"https://example.com/docs/child"}},
			"https://example.com/docs/child": {content: "child"},
		}
		c, _ := newTestCrawler(s)

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", 10)

		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, "child", pages[0].Content)
	})

	t.Run("retries a failed render", func(t *testing.T) {
		t.Parallel()

		s := site{"https://example.com/docs/": {content: "root"}}
		c, driver := newTestCrawler(s)
		c.RetryDelays = []time.Duration{time.Millisecond}
		var calls atomic.Int32
		render := driver.RenderFn
		driver.RenderFn = func(ctx context.Context, url string) (*doclens.RenderedPage, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("navigation timeout")
			}
			return render(ctx, url)
		}

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", 10)

		require.NoError(t, err)
		assert.Len(t, pages, 1)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("processes pages concurrently", func(t *testing.T) {
		t.Parallel()

		s := site{}
		var links []string
		for i := range 6 {
			u := fmt.Sprintf("https://example.com/docs/p%d", i)
			links = append(links, u)
			s[u] = struct {
				content string
				links   []string
			}{content: "p"}
		}
		s["https://example.com/docs/"] = struct {
			content string
			links   []string
		}{content: "root", links: links}

		c, driver := newTestCrawler(s)
		var current, peak atomic.Int32
		render := driver.RenderFn
		driver.RenderFn = func(ctx context.Context, url string) (*doclens.RenderedPage, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			current.Add(-1)
			return render(ctx, url)
		}

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", 50)

		require.NoError(t, err)
		assert.Len(t, pages, 7)
		assert.GreaterOrEqual(t, peak.Load(), int32(2))
		assert.LessOrEqual(t, peak.Load(), int32(3))
	})

	t.Run("seeds frontier from sitemap", func(t *testing.T) {
		t.Parallel()

		s := site{
			"https://example.com/docs/":        {content: "root"},
			"https://example.com/docs/orphan":  {content: "orphan"},
			"https://example.com/other/hidden": {content: "hidden"},
		}
		c, _ := newTestCrawler(s)
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(context.Context, string) ([]string, error) {
				return []string{"https://example.com/docs/orphan", "https://example.com/other/hidden"}, nil
			},
		}

		pages, err := c.Crawl(context.Background(), "https://example.com/docs/", 10)

		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.Equal(t, "https://example.com/docs/orphan", pages[1].URL)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestCrawler(site{})

		_, err := c.Crawl(context.Background(), "not a url", 10)
		assert.Equal(t, doclens.EINVALID, doclens.ErrorCode(err))

		_, err = c.Crawl(context.Background(), "https://example.com/docs/", 0)
		assert.Equal(t, doclens.EINVALID, doclens.ErrorCode(err))
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		c, driver := newTestCrawler(site{})
		driver.RenderFn = func(ctx context.Context, _ string) (*doclens.RenderedPage, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		}

		_, err := c.Crawl(ctx, "https://example.com/docs/", 10)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCrawler_Crawl_seedWithoutPath(t *testing.T) {
	t.Parallel()

	s := site{
		"https://example.com/":      {content: "home", links: []string{"https://example.com/", "https://example.com/guide"}},
		"https://example.com/guide": {content: "guide", links: []string{"https://example.com"}},
	}
	c, driver := newTestCrawler(s)
	var mu sync.Mutex
	var rendered []string
	render := driver.RenderFn
	driver.RenderFn = func(ctx context.Context, url string) (*doclens.RenderedPage, error) {
		mu.Lock()
		rendered = append(rendered, url)
		mu.Unlock()
		return render(ctx, url)
	}

	pages, err := c.Crawl(context.Background(), "https://example.com", 10)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "https://example.com/", pages[0].URL)
	assert.Equal(t, "https://example.com/guide", pages[1].URL)
	assert.ElementsMatch(t, []string{"https://example.com/", "https://example.com/guide"}, rendered)
}
