package doclens

import "context"

// Source identifies a page an answer was grounded in.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Answer is a generated response with its sources.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// FrameType identifies a streaming frame.
type FrameType string

// Streaming frame types. A stream is sources, zero or more chunks, then
// exactly one of end or error.
const (
	FrameSources FrameType = "sources"
	FrameChunk   FrameType = "chunk"
	FrameEnd     FrameType = "end"
	FrameError   FrameType = "error"
)

// Frame is one event of a streamed answer.
type Frame struct {
	Type    FrameType `json:"type"`
	Content any       `json:"content,omitempty"`
}

// Answerer generates answers grounded in ranked search results.
type Answerer interface {
	// Answer returns a complete answer in one call.
	Answer(ctx context.Context, query string, results []*SearchResult) (*Answer, error)

	// Stream delivers the answer as frames through emit. It returns when
	// the stream ends, fails, or emit returns an error.
	Stream(ctx context.Context, query string, results []*SearchResult, emit func(Frame) error) error
}

// AnswerCache stores generated answers by key.
type AnswerCache interface {
	// Get returns the cached answer and true on a hit.
	Get(ctx context.Context, key string) (*Answer, bool, error)

	// Set stores the answer under key.
	Set(ctx context.Context, key string, answer *Answer) error
}
