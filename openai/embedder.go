package openai

import (
	"context"

	"github.com/fwojciec/doclens"
	openai "github.com/sashabaranov/go-openai"
)

// MaxBatchSize is the number of texts sent per embedding request.
const MaxBatchSize = 100

var _ doclens.Embedder = (*Embedder)(nil)

// Embedder implements doclens.Embedder with the embeddings endpoint.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbedder creates a new Embedder. An empty model selects
// DefaultEmbeddingModel.
func NewEmbedder(client *openai.Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: openai.EmbeddingModel(model)}
}

// Embed returns the vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per text in input order. Vectors are placed
// by the index the API reports, so out-of-order responses stay aligned.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: e.model,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Data) != end-start {
			return nil, doclens.Errorf(doclens.EPROVIDER, "embedding batch response length mismatch")
		}
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= end-start || vectors[start+d.Index] != nil {
				return nil, doclens.Errorf(doclens.EPROVIDER, "embedding batch response index %d out of range", d.Index)
			}
			vectors[start+d.Index] = d.Embedding
		}
	}
	return vectors, nil
}
