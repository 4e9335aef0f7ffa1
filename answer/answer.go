// Package answer generates answers grounded in retrieved documentation
// chunks, either whole or as a stream of frames.
package answer

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/doclens"
)

// SystemPrompt instructs the model to answer only from the supplied
// snippets.
const SystemPrompt = `You are DocLense, an expert documentation assistant.
You must answer the user's question **strictly using only** the information provided in the documentation snippets.
If the information is not present or insufficient, respond exactly with:
"` + NotFoundAnswer + `"

Your goal is to produce a clear, concise, and human-readable explanation that is entirely grounded in the provided documentation content.
Use examples, bullet points, or code snippets if available in the documentation.
Do not include any external knowledge or assumptions.`

// NotFoundAnswer is the sentence the model is told to use when the snippets
// do not answer the question.
const NotFoundAnswer = "I couldn't find this information in the provided documentation."

// FallbackAnswer replaces batch answers that are empty, too short or report
// that nothing was found.
const FallbackAnswer = "My bad! I couldn't find sufficient information about this topic in the provided documentation."

// minAnswerLength is the shortest batch answer kept as is.
const minAnswerLength = 40

var _ doclens.Answerer = (*Service)(nil)

// Service implements doclens.Answerer on top of a Generator.
type Service struct {
	Generator doclens.Generator

	// Cache, when set, stores batch answers keyed by CacheKey.
	Cache doclens.AnswerCache

	// Tokens, when set, is used to log the size of the grounding context.
	Tokens doclens.TokenCounter

	Logger *slog.Logger
}

// NewService returns a Service generating with gen.
func NewService(gen doclens.Generator, logger *slog.Logger) *Service {
	return &Service{Generator: gen, Logger: logger}
}

// Answer generates a complete answer. Provider failures are returned as
// EPROVIDER errors.
func (s *Service) Answer(ctx context.Context, query string, results []*doclens.SearchResult) (*doclens.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, doclens.Errorf(doclens.EINVALID, "query required")
	}

	key := CacheKey(query, results)
	if s.Cache != nil {
		cached, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			s.logger().Warn("answer cache read failed", "error", err)
		} else if ok {
			s.logger().Debug("answer cache hit", "key", key)
			return cached, nil
		}
	}

	prompt, sources := BuildPrompt(query, results)
	s.logContextSize(ctx, prompt)

	text, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, providerError(err)
	}

	answer := &doclens.Answer{Answer: finalize(text), Sources: sources}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, answer); err != nil {
			s.logger().Warn("answer cache write failed", "error", err)
		}
	}
	return answer, nil
}

// Stream emits a sources frame, one chunk frame per non-empty increment and
// a final end frame. A provider failure emits a single error frame instead
// of end. If emit fails the provider stream is released and the emit error
// is returned.
func (s *Service) Stream(ctx context.Context, query string, results []*doclens.SearchResult, emit func(doclens.Frame) error) error {
	if strings.TrimSpace(query) == "" {
		return doclens.Errorf(doclens.EINVALID, "query required")
	}

	prompt, sources := BuildPrompt(query, results)
	s.logContextSize(ctx, prompt)

	if err := emit(doclens.Frame{Type: doclens.FrameSources, Content: sources}); err != nil {
		return err
	}

	var chunks int
	for part, err := range s.Generator.Stream(ctx, prompt) {
		if err != nil {
			s.logger().Error("answer stream failed", "chunks", chunks, "error", err)
			return emit(doclens.Frame{Type: doclens.FrameError, Content: errorText(err)})
		}
		if part == "" {
			continue
		}
		if err := emit(doclens.Frame{Type: doclens.FrameChunk, Content: part}); err != nil {
			return err
		}
		chunks++
	}

	s.logger().Debug("answer stream complete", "chunks", chunks)
	return emit(doclens.Frame{Type: doclens.FrameEnd})
}

// BuildPrompt returns the prompt for query grounded in results, and the
// results' sources deduplicated by URL with the first occurrence kept.
func BuildPrompt(query string, results []*doclens.SearchResult) (doclens.Prompt, []doclens.Source) {
	sources := []doclens.Source{}
	seen := make(map[string]bool, len(results))
	contents := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		sources = append(sources, doclens.Source{Title: r.Title, URL: r.URL})
	}
	grounding := strings.Join(strings.Fields(strings.Join(contents, " ")), " ")

	user := "User query: " + query + "\n\n" +
		"Documentation snippets (use only the text between <<<DOC>>> and <<<ENDDOC>>>):\n\n" +
		"<<<DOC>>>\n" + grounding + "\n<<<ENDDOC>>>"

	return doclens.Prompt{System: SystemPrompt, User: user}, sources
}

// CacheKey identifies the answer for query over results. It changes when
// any result's URL or content changes.
func CacheKey(query string, results []*doclens.SearchResult) string {
	h := xxhash.New()
	_, _ = h.WriteString(query)
	for _, r := range results {
		_, _ = h.WriteString("\x00" + r.URL + "\x00" + r.Content)
	}
	return "answer:" + hex.EncodeToString(h.Sum(nil))
}

// finalize trims a batch answer and replaces unusable ones with
// FallbackAnswer.
func finalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(strings.ToLower(text), "not found") || len([]rune(text)) < minAnswerLength {
		return FallbackAnswer
	}
	return text
}

func (s *Service) logContextSize(ctx context.Context, prompt doclens.Prompt) {
	if s.Tokens == nil {
		return
	}
	n, err := s.Tokens.CountTokens(ctx, prompt.User)
	if err != nil {
		s.logger().Debug("token count failed", "error", err)
		return
	}
	s.logger().Debug("grounding context", "tokens", n)
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func providerError(err error) error {
	return doclens.Errorf(doclens.EPROVIDER, "generating answer: %s", errorText(err))
}

func errorText(err error) string {
	var e *doclens.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
