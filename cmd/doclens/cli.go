package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/fwojciec/doclens"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config *Config
	Logger *slog.Logger

	Crawler  doclens.Crawler
	Ingester doclens.Ingester
	Searcher doclens.Searcher
	Answerer doclens.Answerer

	// Metrics serves the collected metrics for the serve command.
	Metrics http.Handler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `short:"c" type:"path" help:"Path to a config file (default: ./doclens.yaml or ~/.doclens/doclens.yaml)"`

	Serve  ServeCmd  `cmd:"" help:"Serve the HTTP API"`
	Crawl  CrawlCmd  `cmd:"" help:"Crawl a documentation site and index it"`
	Status StatusCmd `cmd:"" help:"Show the crawl status of a domain"`
	Delete DeleteCmd `cmd:"" help:"Delete everything indexed for a domain"`
	Search SearchCmd `cmd:"" help:"Search the indexed documentation of a domain"`
	Ask    AskCmd    `cmd:"" help:"Ask a question about the documentation of a domain"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.host and server.port)"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL      string `arg:"" help:"Documentation URL to start from"`
	MaxPages int    `short:"n" help:"Maximum number of pages to process (default: crawl.maxpages)"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	Domain string `arg:"" help:"Domain or URL"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Domain string `arg:"" help:"Domain or URL"`
	Force  bool   `help:"Confirm deletion"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Domain    string  `arg:"" help:"Domain or URL"`
	Query     string  `arg:"" help:"Search query"`
	Limit     int     `short:"l" help:"Maximum number of results (default: search.limit)"`
	Threshold float64 `short:"t" default:"-1" help:"Minimum relevance score (default: search.threshold)"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Domain   string `arg:"" help:"Domain or URL"`
	Question string `arg:"" help:"Question to ask about the documentation"`
	Stream   bool   `short:"s" help:"Print the answer as it is generated"`
	Strategy string `default:"enhanced" enum:"basic,enhanced" help:"basic lists matching passages, enhanced generates an answer"`
	Limit    int    `short:"l" default:"10" help:"Maximum number of passages to ground the answer in"`
}
