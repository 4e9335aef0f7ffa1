package search

import (
	"regexp"
	"strings"

	"github.com/fwojciec/doclens"
)

// Scoring weights.
const (
	KeywordWeight      = 0.3
	StructureBonus     = 0.1
	CorroborationBonus = 0.2
	TypeBonus          = 0.2

	// LexicalSimilarity is the similarity assigned to full-text hits.
	LexicalSimilarity = 0.5
)

var (
	headingPattern   = regexp.MustCompile(`(?m)^#+\s`)
	codeFencePattern = regexp.MustCompile("(?s)```.*?```")
	listPattern      = regexp.MustCompile(`(?m)^\s*[-*+]\s`)
)

// TypePatterns match content that suits a query type. A match earns
// TypeBonus.
var TypePatterns = map[doclens.QueryType]*regexp.Regexp{
	doclens.QueryWhat:            regexp.MustCompile(`(?i)\b(is|are|refers to|defined as|means)\b`),
	doclens.QueryHow:             regexp.MustCompile(`(?i)\b(steps?|guide|tutorial|example|first|then|next)\b`),
	doclens.QuerySetup:           regexp.MustCompile(`(?i)\b(install|setup|configure|create|initialize|npm|package)\b`),
	doclens.QueryTroubleshooting: regexp.MustCompile(`(?i)\b(error|problem|issue|solution|fix|debug)\b`),
	doclens.QueryReference:       regexp.MustCompile(`(?i)\b(api|method|function|parameter|property|class|interface)\b`),
	doclens.QueryExamples:        codeFencePattern,
}

// Score returns the relevance of content retrieved with the given
// similarity: the similarity, plus KeywordWeight times the fraction of
// keywords found in the content, plus StructureBonus for each of a markdown
// heading, a fenced code block and a list item. The result is capped at 1.
// An empty keyword list contributes nothing.
func Score(content string, keywords []string, similarity float64) float64 {
	score := similarity

	if len(keywords) > 0 {
		lower := strings.ToLower(content)
		var matched int
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				matched++
			}
		}
		score += float64(matched) / float64(len(keywords)) * KeywordWeight
	}

	for _, p := range []*regexp.Regexp{headingPattern, codeFencePattern, listPattern} {
		if p.MatchString(content) {
			score += StructureBonus
		}
	}
	return clamp(score)
}

// TypeBoost returns TypeBonus when content matches the pattern for the
// query type, and zero otherwise.
func TypeBoost(content string, t doclens.QueryType) float64 {
	p, ok := TypePatterns[t]
	if !ok || !p.MatchString(content) {
		return 0
	}
	return TypeBonus
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
