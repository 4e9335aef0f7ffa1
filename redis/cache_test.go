package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/doclens"
	"github.com/fwojciec/doclens/mock"
	dredis "github.com/fwojciec/doclens/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachable returns a client whose server refuses connections.
func unreachable(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestAnswerCache_unreachable_server(t *testing.T) {
	t.Parallel()

	c := dredis.NewAnswerCache(unreachable(t), 0)

	_, ok, err := c.Get(t.Context(), "answer:1")
	assert.Error(t, err)
	assert.False(t, ok)

	assert.Error(t, c.Set(t.Context(), "answer:1", &doclens.Answer{Answer: "x"}))
}

func TestEmbedder_falls_through_when_cache_unavailable(t *testing.T) {
	t.Parallel()

	var calls int
	next := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			calls++
			return []float32{1, 2}, nil
		},
		EmbedBatchFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{3}}, nil
		},
	}
	e := dredis.NewEmbedder(next, unreachable(t), "m", 0, nil)

	v, err := e.Embed(t.Context(), "query")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, v)
	assert.Equal(t, 1, calls)

	batch, err := e.EmbedBatch(t.Context(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{3}}, batch)
}
