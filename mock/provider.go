package mock

import (
	"context"
	"iter"

	"github.com/fwojciec/doclens"
)

var _ doclens.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of doclens.Embedder.
type Embedder struct {
	EmbedFn      func(ctx context.Context, text string) ([]float32, error)
	EmbedBatchFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedBatchFn(ctx, texts)
}

var _ doclens.Generator = (*Generator)(nil)

// Generator is a mock implementation of doclens.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, prompt doclens.Prompt) (string, error)
	StreamFn   func(ctx context.Context, prompt doclens.Prompt) iter.Seq2[string, error]
}

func (g *Generator) Generate(ctx context.Context, prompt doclens.Prompt) (string, error) {
	return g.GenerateFn(ctx, prompt)
}

func (g *Generator) Stream(ctx context.Context, prompt doclens.Prompt) iter.Seq2[string, error] {
	return g.StreamFn(ctx, prompt)
}
