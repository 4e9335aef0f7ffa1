// Package htmltomarkdown renders extracted page content as markdown so
// headings, lists and fenced code survive into indexed chunks.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/doclens"
)

var _ doclens.Converter = (*Converter)(nil)

// Converter implements doclens.Converter with CommonMark and table support.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	return &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Convert transforms HTML into markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", doclens.Errorf(doclens.EINVALID, "empty HTML input")
	}
	md, err := c.conv.ConvertString(html)
	if err != nil {
		return "", doclens.Errorf(doclens.EINVALID, "convert HTML: %v", err)
	}
	return strings.TrimSpace(md), nil
}
