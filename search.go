package doclens

import "context"

// QueryType classifies what kind of answer a query is looking for.
type QueryType string

// Query types, checked in this order by the classifier.
const (
	QueryWhat            QueryType = "what"
	QueryHow             QueryType = "how"
	QuerySetup           QueryType = "setup"
	QueryTroubleshooting QueryType = "troubleshooting"
	QueryReference       QueryType = "reference"
	QueryExamples        QueryType = "examples"
	QueryGeneral         QueryType = "general"
)

// QueryAnalysis is the per-query classification result.
type QueryAnalysis struct {
	Type     QueryType `json:"type"`
	Keywords []string  `json:"keywords"`
	Intent   []string  `json:"intent"`
}

// Search defaults.
const (
	DefaultSearchLimit     = 10
	DefaultSearchThreshold = 0.1
)

// SearchOptions configures a hybrid search.
type SearchOptions struct {
	Limit           int     `json:"limit"`
	Threshold       float64 `json:"threshold"`
	IncludeKeywords bool    `json:"includeKeywords"`
}

// DefaultSearchOptions returns limit 10, threshold 0.1 and keywords on.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:           DefaultSearchLimit,
		Threshold:       DefaultSearchThreshold,
		IncludeKeywords: true,
	}
}

// SearchResult is one ranked chunk. Similarity and RelevanceScore are both
// in [0, 1].
type SearchResult struct {
	ID             int64     `json:"id"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Similarity     float64   `json:"similarity"`
	RelevanceScore float64   `json:"relevanceScore"`
	QueryType      QueryType `json:"queryType"`
}

// SearchResponse is the outcome of one hybrid search.
type SearchResponse struct {
	Results []*SearchResult `json:"results"`

	// TotalFound is the number of fused candidates before threshold
	// filtering and truncation.
	TotalFound    int       `json:"totalFound"`
	QueryType     QueryType `json:"queryType"`
	EnhancedQuery string    `json:"enhancedQuery"`
}

// Searcher ranks the chunks of a domain against a query.
type Searcher interface {
	Search(ctx context.Context, query, domain string, opts SearchOptions) (*SearchResponse, error)
}
