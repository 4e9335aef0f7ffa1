// Package goquery extracts titles, readable text and in-scope links from
// rendered documentation pages using CSS selector tables.
package goquery

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/doclens"
)

var _ doclens.PageExtractor = (*Extractor)(nil)

// UntitledPage is the title of pages without <title> or <h1>.
const UntitledPage = "Untitled"

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\r]+`)
	spaceAroundLine = regexp.MustCompile(` *\n *`)
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
)

// Extractor implements doclens.PageExtractor with heuristics driven by the
// selector tables in this package.
type Extractor struct {
	main       string
	navigation string
	unwanted   string
	blocks     string
	textTags   map[string]bool
}

// NewExtractor returns an Extractor using the package selector tables.
func NewExtractor() *Extractor {
	tags := make(map[string]bool, len(TextTags))
	for _, t := range TextTags {
		tags[t] = true
	}
	return &Extractor{
		main:       strings.Join(MainContentSelectors, ", "),
		navigation: strings.Join(NavigationSelectors, ", "),
		unwanted:   strings.Join(UnwantedSelectors, ", "),
		blocks:     strings.Join(BlockTags, ", "),
		textTags:   tags,
	}
}

// ExtractTitle returns the document <title>, else the first <h1>, else
// UntitledPage.
func (e *Extractor) ExtractTitle(html string) string {
	doc, err := parse(html)
	if err != nil {
		return UntitledPage
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return UntitledPage
}

// ExtractContent returns the readable text of the page. Unwanted subtrees
// are removed first. Text comes from the main content container, or from the
// whole body when the container is missing or yields nothing.
func (e *Extractor) ExtractContent(html string) string {
	doc, err := parse(html)
	if err != nil {
		return ""
	}
	doc.Find(e.unwanted).Remove()

	var b strings.Builder
	if main := doc.Find(e.main).First(); main.Length() > 0 {
		e.collect(main, true, &b)
	}
	if b.Len() == 0 {
		e.collect(doc.Find("body"), false, &b)
	}
	return normalizeText(b.String())
}

// collect walks the element children of sel and writes formatted text for
// each of them.
func (e *Extractor) collect(sel *goquery.Selection, skipNav bool, b *strings.Builder) {
	sel.Children().Each(func(_ int, child *goquery.Selection) {
		e.collectElement(child, skipNav, b)
	})
}

// collectElement writes the text of el. A text tag without block-level
// descendants is written whole; one with block descendants is split so that
// its own text and each nested block are written in document order.
func (e *Extractor) collectElement(el *goquery.Selection, skipNav bool, b *strings.Builder) {
	if skipNav && el.Is(e.navigation) {
		return
	}
	tag := goquery.NodeName(el)
	switch {
	case !e.textTags[tag]:
		e.collect(el, skipNav, b)
	case e.hasBlocks(el, skipNav):
		e.collectMixed(el, tag, skipNav, b)
	default:
		writeText(tag, el.Text(), b)
	}
}

// collectMixed writes the direct text runs of el with el's formatting and
// descends into its block children. List items and quotes keep their prefix
// in front of the combined content.
func (e *Extractor) collectMixed(el *goquery.Selection, tag string, skipNav bool, b *strings.Builder) {
	prefix := ""
	switch tag {
	case "li":
		prefix = "• "
	case "blockquote":
		prefix = "> "
	}
	runTag := tag
	out := b
	var inner strings.Builder
	if prefix != "" {
		runTag = ""
		out = &inner
	}

	var run strings.Builder
	el.Contents().Each(func(_ int, node *goquery.Selection) {
		switch name := goquery.NodeName(node); {
		case name == "#text":
			run.WriteString(node.Text())
		case strings.HasPrefix(name, "#"):
		case skipNav && node.Is(e.navigation):
		case node.Is(e.blocks) || e.hasBlocks(node, skipNav):
			writeText(runTag, run.String(), out)
			run.Reset()
			e.collectElement(node, skipNav, out)
		default:
			run.WriteString(node.Text())
		}
	})
	writeText(runTag, run.String(), out)

	if prefix != "" {
		if content := strings.TrimLeft(inner.String(), " \n"); content != "" {
			b.WriteString(prefix + content)
		}
	}
}

// hasBlocks reports whether sel must be split rather than collected whole.
func (e *Extractor) hasBlocks(sel *goquery.Selection, skipNav bool) bool {
	return sel.Find(e.blocks).Length() > 0 ||
		(skipNav && sel.Find(e.navigation).Length() > 0)
}

// writeText writes raw text formatted for tag unless it is too short.
func writeText(tag, raw string, b *strings.Builder) {
	text := strings.Join(strings.Fields(raw), " ")
	n := utf8.RuneCountInString(text)
	if n < minTextLength || (tag == "pre" && n < minPreLength) {
		return
	}
	b.WriteString(formatText(tag, text))
}

// formatText applies the per-tag prefix and suffix.
func formatText(tag, text string) string {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "\n\n" + text + "\n\n"
	case "p":
		return text + "\n\n"
	case "li":
		return "• " + text + " "
	case "blockquote":
		return "> " + text + " "
	default:
		return text + " "
	}
}

// normalizeText collapses runs of horizontal whitespace, trims spaces around
// line breaks and limits blank lines to one.
func normalizeText(s string) string {
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = spaceAroundLine.ReplaceAllString(s, "\n")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// CollectLinks returns the distinct in-scope links of the page in document
// order. Hrefs resolve against pageURL; fragments and queries are stripped.
func (e *Extractor) CollectLinks(html, pageURL string, scope doclens.Scope) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	doc, err := parse(html)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		normalized, err := doclens.NormalizeURL(base.ResolveReference(ref).String())
		if err != nil || seen[normalized] || !scope.Contains(normalized) {
			return
		}
		seen[normalized] = true
		links = append(links, normalized)
	})
	return links
}

func parse(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// isNonHTTPLink reports whether href uses a scheme that is never crawled.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
