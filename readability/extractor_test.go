package readability_test

import (
	"net/url"
	"testing"

	"github.com/fwojciec/doclens"
	"github.com/fwojciec/doclens/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := readability.NewExtractor().Extract("")

	require.Error(t, err)
	assert.Equal(t, doclens.EINVALID, doclens.ErrorCode(err))
}

func TestExtractor_ExtractsTitleAndArticle(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Hybrid Search</title></head>
<body>
<nav><a href="/home">Home Nav Link</a><a href="/about">About Nav Link</a></nav>
<article>
<h1>Hybrid Search</h1>
<p>Hybrid search merges a semantic ranking with a lexical ranking so that exact terms and paraphrases both surface.</p>
<p>Results found by both branches receive a corroboration bonus before the final sort.</p>
</article>
<footer><p>Footer copyright text 2025</p></footer>
</body>
</html>`

	result, err := readability.NewExtractor().Extract(html)

	require.NoError(t, err)
	assert.Equal(t, "Hybrid Search", result.Title)
	assert.Contains(t, result.ContentHTML, "corroboration bonus")
	assert.NotContains(t, result.ContentHTML, "Home Nav Link")
	assert.NotContains(t, result.ContentHTML, "Footer copyright text")
}

func TestExtractor_ResolvesRelativeLinks(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://example.com/docs/guide")
	require.NoError(t, err)

	html := `<!DOCTYPE html>
<html><head><title>Links</title></head>
<body><article>
<p>Read the <a href="setup">setup page</a> before continuing with the rest of this fairly long guide to the product.</p>
<p>The remaining sections describe configuration and deployment in more detail for operators.</p>
</article></body></html>`

	ext := &readability.Extractor{BaseURL: base}
	result, err := ext.Extract(html)

	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "https://example.com/docs/setup")
}
