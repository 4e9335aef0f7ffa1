// Package http fetches documentation pages and sitemaps over plain HTTP,
// for static sites that render without JavaScript.
package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/fwojciec/doclens"
)

// Default request settings.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultUserAgent    = "doclens/1.0 (+https://github.com/fwojciec/doclens)"
)

var _ doclens.PageDriver = (*Driver)(nil)

// Driver implements doclens.PageDriver with a single GET request per page.
// Redirects are followed and the final URL is reported.
type Driver struct {
	client       *http.Client
	maxBodyBytes int64
	userAgent    string
}

// Option configures a Driver.
type Option func(*Driver)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(drv *Driver) {
		drv.client.Timeout = d
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(drv *Driver) {
		drv.maxBodyBytes = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(drv *Driver) {
		drv.userAgent = ua
	}
}

// NewDriver creates a new Driver.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		client:       &http.Client{Timeout: DefaultTimeout},
		maxBodyBytes: DefaultMaxBodyBytes,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Render fetches rawURL. Non-200 responses and non-HTML content types are
// errors.
func (d *Driver) Render(ctx context.Context, rawURL string) (*doclens.RenderedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, doclens.Errorf(doclens.EINVALID, "invalid URL %q", rawURL)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != "text/html" && mediaType != "application/xhtml+xml") {
			return nil, fmt.Errorf("unsupported content type %q for %s", ct, rawURL)
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBodyBytes))
	if err != nil {
		return nil, err
	}

	return &doclens.RenderedPage{
		URL:  resp.Request.URL.String(),
		HTML: string(body),
	}, nil
}

// Close is a no-op; the HTTP client holds no resources that need release.
func (d *Driver) Close() error {
	return nil
}
