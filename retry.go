package doclens

import (
	"context"
	"log/slog"
	"time"
)

// DefaultRetryDelays returns the backoff between attempts: 1s, 2s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second}
}

// Retry calls fn until it succeeds, waiting delays[i] after the i-th
// failure, so fn runs at most len(delays)+1 times. EINVALID errors are
// returned without retrying. A nil logger disables retry logging.
func Retry(ctx context.Context, delays []time.Duration, logger *slog.Logger, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= len(delays) || ErrorCode(err) == EINVALID {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if logger != nil {
			logger.Debug("retry", "attempt", attempt+2, "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
}
