package main

import (
	"fmt"

	"github.com/fwojciec/doclens"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	domain := doclens.NormalizeDomain(c.Domain)
	opts := doclens.SearchOptions{
		Limit:           c.Limit,
		Threshold:       deps.Config.Search.Threshold,
		IncludeKeywords: true,
	}

	resp, err := deps.Searcher.Search(deps.Ctx, c.Question, domain, opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doclens.ErrorMessage(err))
		return err
	}

	if c.Strategy == "basic" {
		for i, r := range resp.Results {
			fmt.Fprintf(deps.Stdout, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, snippet(r.Content))
		}
		return nil
	}

	if !c.Stream {
		answer, err := deps.Answerer.Answer(deps.Ctx, c.Question, resp.Results)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", doclens.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout, answer.Answer)
		printSources(deps, answer.Sources)
		return nil
	}

	var sources []doclens.Source
	var failure error
	err = deps.Answerer.Stream(deps.Ctx, c.Question, resp.Results, func(f doclens.Frame) error {
		switch f.Type {
		case doclens.FrameSources:
			sources, _ = f.Content.([]doclens.Source)
		case doclens.FrameChunk:
			fmt.Fprint(deps.Stdout, f.Content)
		case doclens.FrameEnd:
			fmt.Fprintln(deps.Stdout)
		case doclens.FrameError:
			failure = doclens.Errorf(doclens.EPROVIDER, "%v", f.Content)
		}
		return nil
	})
	if err == nil {
		err = failure
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "\nerror: %s\n", doclens.ErrorMessage(err))
		return err
	}
	printSources(deps, sources)
	return nil
}

func printSources(deps *Dependencies, sources []doclens.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(deps.Stdout, "\nSources:")
	for _, s := range sources {
		fmt.Fprintf(deps.Stdout, "- %s (%s)\n", s.Title, s.URL)
	}
}
