package gemini

import (
	"context"

	"github.com/fwojciec/doclens"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ doclens.TokenCounter = (*TokenCounter)(nil)

// TokenCounter implements doclens.TokenCounter with the local Gemini
// tokenizer, so counting needs no API call.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model. An empty
// model selects DefaultModel.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, doclens.Errorf(doclens.EPROVIDER, "count tokens: %v", err)
	}
	return int(result.TotalTokens), nil
}
