package search

import (
	"strings"

	"github.com/fwojciec/doclens"
)

// Expansions are the terms appended to a query of each type before it is
// embedded.
var Expansions = map[doclens.QueryType][]string{
	doclens.QueryWhat:            {"definition", "explanation", "overview"},
	doclens.QueryHow:             {"tutorial", "guide", "steps", "example"},
	doclens.QuerySetup:           {"installation", "configuration", "setup", "initialize"},
	doclens.QueryReference:       {"api", "documentation", "reference", "method", "function"},
	doclens.QueryExamples:        {"code", "example", "sample", "snippet", "demo"},
	doclens.QueryTroubleshooting: {"error", "debug", "problem", "solution"},
}

// Expand returns the query followed by its type's expansion terms and its
// keywords, space separated. The result is used only for the semantic
// branch.
func Expand(query string, analysis doclens.QueryAnalysis) string {
	parts := []string{query}
	parts = append(parts, Expansions[analysis.Type]...)
	parts = append(parts, analysis.Keywords...)
	return strings.Join(parts, " ")
}
