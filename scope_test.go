package doclens_test

import (
	"testing"

	"github.com/fwojciec/doclens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScope(t *testing.T) {
	t.Parallel()

	t.Run("appends trailing slash to path prefix", func(t *testing.T) {
		t.Parallel()

		scope, err := doclens.NewScope("https://example.com/docs")

		require.NoError(t, err)
		assert.Equal(t, "example.com", scope.Host)
		assert.Equal(t, "/docs/", scope.PathPrefix)
	})

	t.Run("root seed scopes whole host", func(t *testing.T) {
		t.Parallel()

		scope, err := doclens.NewScope("https://example.com")

		require.NoError(t, err)
		assert.Equal(t, "/", scope.PathPrefix)
	})

	t.Run("rejects invalid seed", func(t *testing.T) {
		t.Parallel()

		for _, seed := range []string{"", "not a url", "ftp://example.com/", "/docs/"} {
			_, err := doclens.NewScope(seed)
			require.Error(t, err, seed)
			assert.Equal(t, doclens.EINVALID, doclens.ErrorCode(err))
		}
	})
}

func TestScope_Contains(t *testing.T) {
	t.Parallel()

	scope := doclens.Scope{Host: "example.com", PathPrefix: "/docs/"}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/docs/intro", true},
		{"https://EXAMPLE.com/docs/guide/setup", true},
		{"https://example.com/docs/", true},
		{"https://example.com/blog/post", false},
		{"https://example.com/documentation", false},
		{"https://other.com/docs/intro", false},
		{"https://example.com/docs/logo.PNG", false},
		{"https://example.com/docs/manual.pdf", false},
		{"mailto:someone@example.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scope.Contains(tt.url), tt.url)
	}
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	got, err := doclens.NormalizeURL("https://example.com/docs/intro?tab=1#install")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/docs/intro", got)

	got, err = doclens.NormalizeURL("https://Example.COM/Docs")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/Docs", got)

	for _, in := range []string{"https://example.com", "https://example.com/", "https://EXAMPLE.com?x=1", "https://example.com#top"} {
		got, err = doclens.NormalizeURL(in)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/", got, in)
	}
}

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"docs.example.com", "docs.example.com"},
		{"https://Docs.Example.com/guide?x=1", "docs.example.com"},
		{"http://localhost:8080/docs", "localhost"},
		{"  example.com  ", "example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, doclens.NormalizeDomain(tt.in), tt.in)
	}
}

func TestCrawlSession_Validate(t *testing.T) {
	t.Parallel()

	s := &doclens.CrawlSession{Domain: "example.com", TotalPages: 2, ProcessedPages: 3}

	err := s.Validate()

	require.Error(t, err)
	assert.Equal(t, doclens.EINVALID, doclens.ErrorCode(err))
}
