package openai

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/fwojciec/doclens"
	openai "github.com/sashabaranov/go-openai"
)

var _ doclens.Generator = (*Generator)(nil)

// Generator implements doclens.Generator with chat completions.
type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator creates a new Generator. An empty model selects
// DefaultModel.
func NewGenerator(client *openai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Generate returns the first choice of a chat completion.
func (g *Generator) Generate(ctx context.Context, prompt doclens.Prompt) (string, error) {
	if prompt.User == "" {
		return "", doclens.Errorf(doclens.EINVALID, "prompt required")
	}
	resp, err := g.client.CreateChatCompletion(ctx, g.request(prompt, false))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", doclens.Errorf(doclens.EPROVIDER, "chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream yields content deltas of a streamed chat completion. The stream is
// closed when the sequence ends or the caller stops ranging.
func (g *Generator) Stream(ctx context.Context, prompt doclens.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if prompt.User == "" {
			yield("", doclens.Errorf(doclens.EINVALID, "prompt required"))
			return
		}
		stream, err := g.client.CreateChatCompletionStream(ctx, g.request(prompt, true))
		if err != nil {
			yield("", err)
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(resp.Choices[0].Delta.Content, nil) {
				return
			}
		}
	}
}

func (g *Generator) request(prompt doclens.Prompt, stream bool) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	if prompt.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.User,
	})
	return openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
		Stream:   stream,
	}
}
