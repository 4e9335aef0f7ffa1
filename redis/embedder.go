package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/doclens"
	"github.com/redis/go-redis/v9"
)

var _ doclens.Embedder = (*Embedder)(nil)

// Embedder caches single-text embeddings, which are query vectors in
// practice. Batch embeddings of page chunks pass through uncached. Cache
// failures are logged and fall through to the wrapped Embedder.
type Embedder struct {
	next   doclens.Embedder
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewEmbedder wraps next. The model name is part of every key so vectors
// of different models never mix.
func NewEmbedder(next doclens.Embedder, client redis.Cmdable, model string, ttl time.Duration, logger *slog.Logger) *Embedder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Embedder{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: "embedding:" + model + ":",
		logger: logger,
	}
}

// Embed returns the cached vector for text, embedding and caching it on a
// miss.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := e.prefix + strconv.FormatUint(xxhash.Sum64String(text), 16)

	data, err := e.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v []float32
		if err := json.Unmarshal(data, &v); err == nil && len(v) > 0 {
			return v, nil
		}
	case !errors.Is(err, redis.Nil):
		e.logger.Warn("embedding cache read failed", "error", err)
	}

	v, err := e.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := e.client.Set(ctx, key, data, e.ttl).Err(); err != nil {
			e.logger.Warn("embedding cache write failed", "error", err)
		}
	}
	return v, nil
}

// EmbedBatch delegates to the wrapped Embedder.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.next.EmbedBatch(ctx, texts)
}
