package doclens_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/doclens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Millisecond, time.Millisecond}

	t.Run("stops at first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := doclens.Retry(context.Background(), delays, nil, func() error {
			calls++
			if calls < 2 {
				return errors.New("flaky")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("returns last error once delays are exhausted", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := doclens.Retry(context.Background(), delays, nil, func() error {
			calls++
			return errors.New("boom")
		})

		require.EqualError(t, err, "boom")
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry invalid input", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := doclens.Retry(context.Background(), delays, nil, func() error {
			calls++
			return doclens.Errorf(doclens.EINVALID, "bad")
		})

		assert.Equal(t, doclens.EINVALID, doclens.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := doclens.Retry(ctx, []time.Duration{time.Hour}, nil, func() error {
			calls++
			cancel()
			return errors.New("boom")
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestDefaultRetryDelays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, doclens.DefaultRetryDelays())
}
