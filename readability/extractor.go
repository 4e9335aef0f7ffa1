// Package readability isolates the main content of documentation pages
// with go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/doclens"
	"github.com/go-shiori/go-readability"
)

var _ doclens.Extractor = (*Extractor)(nil)

// Extractor implements doclens.Extractor using go-readability.
type Extractor struct {
	// BaseURL, when set, resolves relative links and images in the
	// extracted content.
	BaseURL *url.URL
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article title and content HTML.
func (e *Extractor) Extract(rawHTML string) (*doclens.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.BaseURL)
	if err != nil {
		return nil, doclens.Errorf(doclens.EINVALID, "readability: %v", err)
	}

	return &doclens.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
