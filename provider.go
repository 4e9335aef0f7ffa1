package doclens

import (
	"context"
	"iter"
)

// Embedder converts text to fixed-length vectors.
type Embedder interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	// It fails rather than return a different number of vectors.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Prompt is a single-turn request to a generative model.
type Prompt struct {
	System string
	User   string
}

// Generator produces text from a generative model.
type Generator interface {
	// Generate returns the whole completion.
	Generate(ctx context.Context, prompt Prompt) (string, error)

	// Stream yields completion increments in delivery order. A non-nil
	// error ends the sequence. Stopping iteration early releases the
	// underlying provider stream.
	Stream(ctx context.Context, prompt Prompt) iter.Seq2[string, error]
}
