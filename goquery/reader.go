package goquery

import (
	"strings"

	"github.com/fwojciec/doclens"
)

var _ doclens.PageExtractor = (*ReaderExtractor)(nil)

// ReaderExtractor implements doclens.PageExtractor on top of a main-content
// Extractor and a markdown Converter. Content is markdown rather than plain
// text, so headings, lists and fenced code survive into chunks. Links and
// title fallbacks come from the heuristic Extractor.
type ReaderExtractor struct {
	Extractor doclens.Extractor
	Converter doclens.Converter
	Links     *Extractor
}

// NewReaderExtractor returns a ReaderExtractor using ext and conv.
func NewReaderExtractor(ext doclens.Extractor, conv doclens.Converter) *ReaderExtractor {
	return &ReaderExtractor{
		Extractor: ext,
		Converter: conv,
		Links:     NewExtractor(),
	}
}

// ExtractTitle returns the title found by the content extractor, falling
// back to the heuristic title.
func (r *ReaderExtractor) ExtractTitle(html string) string {
	if result, err := r.Extractor.Extract(html); err == nil {
		if title := strings.TrimSpace(result.Title); title != "" {
			return title
		}
	}
	return r.Links.ExtractTitle(html)
}

// ExtractContent returns the main content as markdown. Extraction or
// conversion failure yields an empty string, which drops the page.
func (r *ReaderExtractor) ExtractContent(html string) string {
	result, err := r.Extractor.Extract(html)
	if err != nil || strings.TrimSpace(result.ContentHTML) == "" {
		return ""
	}
	markdown, err := r.Converter.Convert(result.ContentHTML)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(markdown)
}

// CollectLinks delegates to the heuristic Extractor.
func (r *ReaderExtractor) CollectLinks(html, pageURL string, scope doclens.Scope) []string {
	return r.Links.CollectLinks(html, pageURL, scope)
}
