package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/doclens"
)

// RenderFunc is the signature for a page render function.
type RenderFunc func(ctx context.Context, url string) (*doclens.RenderedPage, error)

// RenderWithRetryDelays renders a URL, retrying once per delay after a
// failure. The logger, if provided, records each retry.
func RenderWithRetryDelays(ctx context.Context, url string, render RenderFunc, logger *slog.Logger, delays []time.Duration) (*doclens.RenderedPage, error) {
	if logger != nil {
		logger = logger.With("url", url)
	}
	var page *doclens.RenderedPage
	err := doclens.Retry(ctx, delays, logger, func() (err error) {
		page, err = render(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
