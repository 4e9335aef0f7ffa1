package gemini

import (
	"context"

	"github.com/fwojciec/doclens"
	"google.golang.org/genai"
)

// MaxBatchSize is the number of texts sent per embedding request.
const MaxBatchSize = 100

var _ doclens.Embedder = (*Embedder)(nil)

// Embedder implements doclens.Embedder using Gemini embedding models.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int32
}

// NewEmbedder creates a new Embedder. An empty model selects
// DefaultEmbeddingModel; a positive dimensions truncates the vectors.
func NewEmbedder(client *genai.Client, model string, dimensions int) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model, dimensions: int32(dimensions)}
}

// Task types tell the model which side of retrieval a text is on.
const (
	taskQuery    = "RETRIEVAL_QUERY"
	taskDocument = "RETRIEVAL_DOCUMENT"
)

// Embed returns the vector for a search query.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{text}, taskQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one document vector per text in input order. Inputs
// are sent in requests of at most MaxBatchSize texts.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embed(ctx, texts, taskDocument)
}

func (e *Embedder) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	cfg := &genai.EmbedContentConfig{TaskType: taskType}
	if e.dimensions > 0 {
		cfg.OutputDimensionality = &e.dimensions
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, t := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
		}

		resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
		if err != nil {
			return nil, err
		}
		if resp == nil || len(resp.Embeddings) != end-start {
			return nil, doclens.Errorf(doclens.EPROVIDER, "embedding batch response length mismatch")
		}
		for _, emb := range resp.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				return nil, doclens.Errorf(doclens.EPROVIDER, "empty embedding in batch response")
			}
			vectors = append(vectors, emb.Values)
		}
	}
	return vectors, nil
}
