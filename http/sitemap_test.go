package http_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/doclens"
	doclenshttp "github.com/fwojciec/doclens/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ doclens.SitemapService = (*doclenshttp.SitemapService)(nil)

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, l := range locs {
		b.WriteString("<url><loc>" + l + "</loc></url>")
	}
	b.WriteString("</urlset>")
	return b.String()
}

func TestSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("reads sitemaps listed in robots.txt", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt":   "User-agent: *\nDisallow: /private/\nSITEMAP: {{BASE}}/sitemap1.xml\nSitemap: {{BASE}}/sitemap2.xml\n",
			"/sitemap1.xml": urlset("{{BASE}}/docs/intro", "{{BASE}}/docs/guide"),
			"/sitemap2.xml": urlset("{{BASE}}/docs/api", "{{BASE}}/docs/intro#dup"),
		})

		urls, err := doclenshttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/docs/intro", srv.URL + "/docs/guide", srv.URL + "/docs/api"}, urls)
	})

	t.Run("falls back to sitemap.xml", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset("{{BASE}}/page1"),
		})

		urls, err := doclenshttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/page1"}, urls)
	})

	t.Run("follows sitemap index and skips broken children", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": `<?xml version="1.0"?><sitemapindex>
<sitemap><loc>{{BASE}}/sitemap-docs.xml</loc></sitemap>
<sitemap><loc>{{BASE}}/missing.xml</loc></sitemap>
<sitemap><loc>{{BASE}}/sitemap-api.xml</loc></sitemap>
<sitemap><loc>{{BASE}}/sitemap.xml</loc></sitemap>
</sitemapindex>`,
			"/sitemap-docs.xml": urlset("{{BASE}}/docs/intro"),
			"/sitemap-api.xml":  urlset("{{BASE}}/api/reference"),
		})

		urls, err := doclenshttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/docs/intro", srv.URL + "/api/reference"}, urls)
	})

	t.Run("keeps only URLs inside the base scope", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset(
				"{{BASE}}/docs/intro",
				"{{BASE}}/blog/post",
				"{{BASE}}/docs/diagram.png",
				"https://other.example/docs/x",
				"{{BASE}}/documentation/y",
			),
		})

		urls, err := doclenshttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL+"/docs")

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/docs/intro"}, urls)
	})

	t.Run("reads gzip sitemaps", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt":     "Sitemap: {{BASE}}/sitemap.xml.gz\n",
			"/sitemap.xml.gz": "gzip:" + urlset("{{BASE}}/docs/compressed"),
		})

		urls, err := doclenshttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/docs/compressed"}, urls)
	})

	t.Run("returns empty slice without sitemaps", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{})

		urls, err := doclenshttp.NewSitemapService(srv.Client()).DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.NotNil(t, urls)
		assert.Empty(t, urls)
	})

	t.Run("returns context error", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{"/sitemap.xml": urlset("{{BASE}}/page1")})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := doclenshttp.NewSitemapService(srv.Client()).DiscoverURLs(ctx, srv.URL)

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := doclenshttp.NewSitemapService(nil).DiscoverURLs(context.Background(), "not a url")

		assert.Equal(t, doclens.EINVALID, doclens.ErrorCode(err))
	})
}

// newTestServer serves the given path to content mapping. {{BASE}} in content
// is replaced with the server URL; a "gzip:" prefix serves the rest gzipped.
func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		body = strings.ReplaceAll(body, "{{BASE}}", srv.URL)
		if rest, ok := strings.CutPrefix(body, "gzip:"); ok {
			var buf bytes.Buffer
			gz := gzip.NewWriter(&buf)
			_, _ = gz.Write([]byte(rest))
			_ = gz.Close()
			w.Header().Set("Content-Type", "application/gzip")
			_, _ = w.Write(buf.Bytes())
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}
