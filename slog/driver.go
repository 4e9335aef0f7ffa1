// Package slog provides logging decorators and logger construction on top
// of log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/doclens"
)

// Ensure LoggingDriver implements doclens.PageDriver.
var _ doclens.PageDriver = (*LoggingDriver)(nil)

// LoggingDriver wraps a PageDriver with debug logging.
type LoggingDriver struct {
	next   doclens.PageDriver
	logger *slog.Logger
}

// NewLoggingDriver creates a new LoggingDriver.
func NewLoggingDriver(next doclens.PageDriver, logger *slog.Logger) *LoggingDriver {
	return &LoggingDriver{next: next, logger: logger}
}

// Render delegates to the wrapped driver and logs the result.
func (d *LoggingDriver) Render(ctx context.Context, url string) (page *doclens.RenderedPage, err error) {
	defer func(begin time.Time) {
		var n int
		if page != nil {
			n = len(page.HTML)
		}
		d.logger.Debug("render",
			"url", url,
			"bytes", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Render(ctx, url)
}

// Close delegates to the wrapped driver.
func (d *LoggingDriver) Close() error {
	return d.next.Close()
}
