package gemini

import (
	"context"
	"iter"

	"github.com/fwojciec/doclens"
	"google.golang.org/genai"
)

var _ doclens.Generator = (*Generator)(nil)

// DefaultTemperature keeps answers close to the supplied documentation.
const DefaultTemperature = 0.4

// Generator implements doclens.Generator using Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator. An empty model selects DefaultModel.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Generate returns the whole completion for prompt.
func (g *Generator) Generate(ctx context.Context, prompt doclens.Prompt) (string, error) {
	if prompt.User == "" {
		return "", doclens.Errorf(doclens.EINVALID, "prompt required")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, BuildContents(prompt), BuildConfig(prompt))
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", doclens.Errorf(doclens.EPROVIDER, "gemini returned nil result")
	}
	return result.Text(), nil
}

// Stream yields completion text as Gemini delivers it. Breaking out of the
// sequence stops the underlying stream.
func (g *Generator) Stream(ctx context.Context, prompt doclens.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if prompt.User == "" {
			yield("", doclens.Errorf(doclens.EINVALID, "prompt required"))
			return
		}
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, BuildContents(prompt), BuildConfig(prompt)) {
			if err != nil {
				yield("", err)
				return
			}
			if resp == nil {
				continue
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

// BuildContents returns the single user turn of prompt.
func BuildContents(prompt doclens.Prompt) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(prompt.User, genai.RoleUser)}
}

// BuildConfig returns the GenerateContentConfig carrying the system
// instruction of prompt.
func BuildConfig(prompt doclens.Prompt) *genai.GenerateContentConfig {
	temp := float32(DefaultTemperature)
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if prompt.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		}
	}
	return cfg
}
