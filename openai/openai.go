// Package openai provides embeddings and chat completions backed by the
// OpenAI API or any compatible endpoint.
package openai

import (
	"github.com/fwojciec/doclens"
	openai "github.com/sashabaranov/go-openai"
)

// Default models.
const (
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// NewClient creates an OpenAI client. A non-empty baseURL points the client
// at a compatible endpoint.
func NewClient(apiKey, baseURL string) (*openai.Client, error) {
	if apiKey == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "openai API key required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg), nil
}
