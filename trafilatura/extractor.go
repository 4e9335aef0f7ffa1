// Package trafilatura isolates the main content of documentation pages
// with go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/doclens"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ doclens.Extractor = (*Extractor)(nil)

// Extractor implements doclens.Extractor using go-trafilatura with its
// readability fallback enabled. Comment sections are excluded.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
		},
	}
}

// Extract returns the title and main-content HTML of a page.
func (e *Extractor) Extract(rawHTML string) (*doclens.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, err
	}

	var content string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		content = buf.String()
	}

	return &doclens.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: content,
	}, nil
}
