package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/doclens"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	domain := doclens.NormalizeDomain(c.URL)
	if domain == "" {
		fmt.Fprintf(deps.Stderr, "error: invalid URL %q\n", c.URL)
		return doclens.Errorf(doclens.EINVALID, "invalid URL %q", c.URL)
	}
	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = deps.Config.Crawl.MaxPages
	}

	begin := time.Now()
	pages, err := deps.Crawler.Crawl(deps.Ctx, c.URL, maxPages)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doclens.ErrorMessage(err))
		return err
	}
	if len(pages) == 0 {
		fmt.Fprintf(deps.Stdout, "No pages with content found at %s\n", c.URL)
		return nil
	}

	session, err := deps.Ingester.Ingest(deps.Ctx, domain, pages)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doclens.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d pages from %s in %s\n",
		session.ProcessedPages, domain, time.Since(begin).Round(time.Millisecond))
	return nil
}
