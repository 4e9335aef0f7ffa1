// Package gemini provides embeddings, text generation and token counting
// backed by Google Gemini.
package gemini

import (
	"context"

	"github.com/fwojciec/doclens"
	"google.golang.org/genai"
)

// Default models.
const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
)

// NewClient creates a Gemini API client. A non-empty baseURL overrides the
// API endpoint.
func NewClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "gemini API key required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	return genai.NewClient(ctx, cfg)
}
