package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/doclens"
)

// snippetLength is how much of a chunk is printed per search result.
const snippetLength = 160

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	opts := doclens.SearchOptions{
		Limit:           deps.Config.Search.Limit,
		Threshold:       deps.Config.Search.Threshold,
		IncludeKeywords: deps.Config.Search.Keywords,
	}
	if c.Limit > 0 {
		opts.Limit = c.Limit
	}
	if c.Threshold >= 0 {
		opts.Threshold = c.Threshold
	}

	resp, err := deps.Searcher.Search(deps.Ctx, c.Query, doclens.NormalizeDomain(c.Domain), opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doclens.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Query type: %s (%d of %d candidates)\n\n", resp.QueryType, len(resp.Results), resp.TotalFound)
	for i, r := range resp.Results {
		fmt.Fprintf(deps.Stdout, "%d. %s [%.3f]\n   %s\n   %s\n", i+1, r.Title, r.RelevanceScore, r.URL, snippet(r.Content))
	}
	return nil
}

// snippet returns the start of content on one line.
func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= snippetLength {
		return content
	}
	return string(runes[:snippetLength]) + "..."
}
