package goquery

// MainContentSelectors locate the dedicated content container of a
// documentation page. The first match in document order wins.
var MainContentSelectors = []string{
	"main",
	"article",
	".content",
	".documentation",
	".docs",
	".main-content",
	`[role="main"]`,
	"[data-docs-root]",
}

// TextTags are the elements whose text is collected.
var TextTags = []string{
	"p", "div", "span",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"li", "td", "th", "dt", "dd",
	"blockquote", "pre", "code",
	"em", "strong", "b", "i", "u", "mark", "small", "big", "sub", "sup",
	"q", "cite", "abbr", "acronym", "dfn", "time", "address",
}

// BlockTags are text tags that hold their own paragraph of content. A text
// tag containing any of them is descended into instead of collected whole.
var BlockTags = []string{
	"p", "div",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"li", "td", "th", "dt", "dd",
	"blockquote", "pre",
}

// NavigationSelectors match navigation landmarks whose text is skipped.
var NavigationSelectors = []string{
	"nav",
	"header",
	"footer",
	"aside",
	".sidebar",
	".navbar",
	".menu",
	".navigation",
	".breadcrumb",
	".toc",
	".sidebar-nav",
	".nav-sidebar",
	"[role=navigation]",
	"[role=banner]",
	"[role=contentinfo]",
	".skip-link",
}

// UnwantedSelectors match subtrees removed before any text is collected.
var UnwantedSelectors = []string{
	"script", "style", "noscript", "iframe", "embed", "object", "param",
	"source", "track", "canvas", "svg", "math",
	"form", "input", "button", "select", "textarea", "option", "optgroup",
	"fieldset", "legend", "label", "meter", "progress", "output",
	".advertisement", ".ads", ".ad", ".banner", ".popup", ".modal",
	".overlay", ".tooltip", ".dropdown", ".social-share", ".comments",
	".comment-form", ".related-posts", ".pagination", ".pager",
}

// Minimum text lengths for collected elements.
const (
	minTextLength = 10
	minPreLength  = 50
)
