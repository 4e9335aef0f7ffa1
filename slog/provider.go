package slog

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/fwojciec/doclens"
)

// Ensure LoggingEmbedder implements doclens.Embedder.
var _ doclens.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with debug logging.
type LoggingEmbedder struct {
	next   doclens.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next doclens.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the operation.
func (e *LoggingEmbedder) Embed(ctx context.Context, text string) (vector []float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed",
			"chars", len(text),
			"dimensions", len(vector),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, text)
}

// EmbedBatch delegates to the wrapped embedder and logs the operation.
func (e *LoggingEmbedder) EmbedBatch(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed batch",
			"texts", len(texts),
			"vectors", len(vectors),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.EmbedBatch(ctx, texts)
}

// Ensure LoggingGenerator implements doclens.Generator.
var _ doclens.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with logging.
type LoggingGenerator struct {
	next   doclens.Generator
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next doclens.Generator, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, logger: logger}
}

// Generate delegates to the wrapped generator and logs the operation.
func (g *LoggingGenerator) Generate(ctx context.Context, prompt doclens.Prompt) (text string, err error) {
	defer func(begin time.Time) {
		g.logger.Info("generate",
			"promptChars", len(prompt.User),
			"answerChars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Generate(ctx, prompt)
}

// Stream delegates to the wrapped generator and logs once the sequence
// ends, including when the consumer stops early.
func (g *LoggingGenerator) Stream(ctx context.Context, prompt doclens.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var chunks int
		var err error
		stopped := false
		defer func(begin time.Time) {
			g.logger.Info("generate stream",
				"promptChars", len(prompt.User),
				"chunks", chunks,
				"stopped", stopped,
				"duration", time.Since(begin),
				"err", err,
			)
		}(time.Now())

		for part, perr := range g.next.Stream(ctx, prompt) {
			if perr != nil {
				err = perr
			} else {
				chunks++
			}
			if !yield(part, perr) {
				stopped = true
				return
			}
		}
	}
}
