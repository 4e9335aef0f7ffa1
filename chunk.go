package doclens

import (
	"context"
	"strings"
	"time"
)

// Default chunking parameters, measured in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk is a bounded slice of a page's normalized text together with its
// embedding. ChunkIndex is unique within (Domain, URL).
type Chunk struct {
	ID         int64         `json:"id"`
	Domain     string        `json:"domain"`
	URL        string        `json:"url"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	ChunkIndex int           `json:"chunkIndex"`
	Embedding  []float32     `json:"embedding,omitempty"`
	Metadata   ChunkMetadata `json:"metadata"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// ChunkMetadata contains contextual information about a chunk.
type ChunkMetadata struct {
	// TotalChunks is the number of sibling chunks cut from the same page.
	TotalChunks int `json:"totalChunks"`

	// ContentHash is the xxHash of the chunk content.
	ContentHash string `json:"contentHash,omitempty"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.Domain == "" {
		return Errorf(EINVALID, "chunk domain required")
	}
	if c.URL == "" {
		return Errorf(EINVALID, "chunk URL required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	if c.ChunkIndex < 0 {
		return Errorf(EINVALID, "chunk index must not be negative")
	}
	if len(c.Embedding) == 0 {
		return Errorf(EINVALID, "chunk embedding required")
	}
	return nil
}

// ScoredChunk is a chunk returned by one retrieval branch.
type ScoredChunk struct {
	Chunk *Chunk

	// Distance is the cosine distance to the query vector (semantic branch).
	Distance float64

	// Rank is the full-text relevance rank (lexical branch). Lower is better.
	Rank float64
}

// ChunkService represents a service for managing chunks.
type ChunkService interface {
	// CreateChunks stores chunks in one transaction. IDs and creation times
	// are assigned by the store.
	CreateChunks(ctx context.Context, chunks []*Chunk) error

	// DeleteChunksByDomain removes all chunks for a domain.
	// Deleting an empty domain is not an error.
	DeleteChunksByDomain(ctx context.Context, domain string) error

	// CountChunks returns the number of chunks stored for a domain.
	CountChunks(ctx context.Context, domain string) (int, error)

	// SemanticSearch returns up to limit chunks of the domain ordered by
	// ascending cosine distance to vector.
	SemanticSearch(ctx context.Context, domain string, vector []float32, limit int) ([]ScoredChunk, error)

	// LexicalSearch returns up to limit chunks of the domain matching any
	// of the keywords, best match first. Keywords are matched literally.
	LexicalSearch(ctx context.Context, domain string, keywords []string, limit int) ([]ScoredChunk, error)
}

// ChunkText normalizes whitespace and slides a window of size characters
// over the text, advancing size-overlap characters each step. The last
// window may be shorter. An overlap that is negative or not smaller than
// size is treated as zero so the window always advances.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) == 0 {
		return []string{}
	}

	var chunks []string
	start := 0
	for {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - overlap
	}
	return chunks
}
