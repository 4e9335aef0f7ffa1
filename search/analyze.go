// Package search ranks documentation chunks with a hybrid of vector
// similarity and full-text retrieval.
package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/doclens"
)

// Rule maps a query pattern to a query type and its intent tags.
type Rule struct {
	Pattern *regexp.Regexp
	Type    doclens.QueryType
	Intent  []string
}

// Rules are evaluated in order against the lowercased query. The first
// match wins.
var Rules = []Rule{
	{
		Pattern: regexp.MustCompile(`\b(what is|what are|define|explain|describe)\b`),
		Type:    doclens.QueryWhat,
		Intent:  []string{"definition", "explanation"},
	},
	{
		Pattern: regexp.MustCompile(`\b(how to|how can|how do|steps? to|guide to)\b`),
		Type:    doclens.QueryHow,
		Intent:  []string{"tutorial", "guide", "instructions"},
	},
	{
		Pattern: regexp.MustCompile(`\b(setup|install|configure|create|build|initialize|deploy)\b`),
		Type:    doclens.QuerySetup,
		Intent:  []string{"installation", "configuration", "setup"},
	},
	{
		Pattern: regexp.MustCompile(`\b(error|problem|issue|fail|bug|troubleshoot|debug|fix|solution)\b`),
		Type:    doclens.QueryTroubleshooting,
		Intent:  []string{"error", "debugging", "troubleshooting"},
	},
	{
		Pattern: regexp.MustCompile(`\b(api|reference|documentation|docs)\b`),
		Type:    doclens.QueryReference,
		Intent:  []string{"api", "reference", "documentation"},
	},
	{
		Pattern: regexp.MustCompile(`\b(example|sample|demo|code|snippet)\b`),
		Type:    doclens.QueryExamples,
		Intent:  []string{"example", "sample", "code"},
	},
}

// StopWords are dropped from extracted keywords.
var StopWords = newSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "do", "does",
	"did", "will", "would", "could", "should", "may", "might", "must", "can", "this", "that",
	"these", "those", "i", "me", "my", "myself", "we", "us", "our", "ours", "you", "your",
	"yours", "he", "him", "his", "she", "her", "hers", "it", "its", "they", "them", "their",
	"what", "which", "who", "when", "where", "why", "how",
)

// minKeywordLength is the shortest token kept as a keyword.
const minKeywordLength = 3

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Analyze classifies the query and extracts its keywords.
func Analyze(query string) doclens.QueryAnalysis {
	analysis := doclens.QueryAnalysis{
		Type:     doclens.QueryGeneral,
		Keywords: Keywords(query),
		Intent:   []string{},
	}
	lower := strings.ToLower(query)
	for _, r := range Rules {
		if r.Pattern.MatchString(lower) {
			analysis.Type = r.Type
			analysis.Intent = append(analysis.Intent, r.Intent...)
			break
		}
	}
	return analysis
}

// Keywords lowercases the query, replaces punctuation with spaces and
// returns the remaining tokens of at least three characters that are not
// stop words. Duplicates are kept.
func Keywords(query string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(query), " ")
	keywords := []string{}
	for _, w := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(w) < minKeywordLength {
			continue
		}
		if _, ok := StopWords[w]; ok {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

func newSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
