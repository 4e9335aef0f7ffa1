package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/doclens"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long cached entries live.
const DefaultTTL = 24 * time.Hour

var _ doclens.AnswerCache = (*AnswerCache)(nil)

// AnswerCache implements doclens.AnswerCache with JSON values.
type AnswerCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewAnswerCache returns an AnswerCache storing entries for ttl. A
// non-positive ttl selects DefaultTTL.
func NewAnswerCache(client redis.Cmdable, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &AnswerCache{client: client, ttl: ttl}
}

// Get returns the answer stored under key.
func (c *AnswerCache) Get(ctx context.Context, key string) (*doclens.Answer, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached answer: %w", err)
	}

	var answer doclens.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached answer: %w", err)
	}
	return &answer, true, nil
}

// Set stores answer under key.
func (c *AnswerCache) Set(ctx context.Context, key string, answer *doclens.Answer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("failed to encode answer: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache answer: %w", err)
	}
	return nil
}
