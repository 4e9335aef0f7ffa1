// Package rod renders documentation pages in headless Chrome.
package rod

import (
	"context"
	"net/url"
	"time"

	"github.com/fwojciec/doclens"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Default readiness settings.
const (
	DefaultNavigationTimeout = 45 * time.Second
	DefaultIdleTimeout       = 7 * time.Second
	DefaultContentTimeout    = 7 * time.Second

	// requestIdleWindow is how long the network must stay quiet to count
	// as idle.
	requestIdleWindow = 500 * time.Millisecond
)

// DefaultContentSelector matches the content containers a page is given
// time to render.
const DefaultContentSelector = `main, article, .content, .documentation, .docs, .main-content, [role="main"], [data-docs-root]`

// BlockedResourceTypes are request types aborted before they load.
var BlockedResourceTypes = []proto.NetworkResourceType{
	proto.NetworkResourceTypeImage,
	proto.NetworkResourceTypeFont,
	proto.NetworkResourceTypeMedia,
	proto.NetworkResourceTypeOther,
}

var _ doclens.PageDriver = (*Driver)(nil)

// Driver implements doclens.PageDriver with Chrome. Each render uses a fresh
// tab that is closed afterwards.
//
// Driver is safe for concurrent use.
type Driver struct {
	manager *BrowserManager

	NavigationTimeout time.Duration
	IdleTimeout       time.Duration
	ContentTimeout    time.Duration
	ContentSelector   string
}

// NewDriver returns a Driver rendering pages with the manager's browser.
func NewDriver(manager *BrowserManager) *Driver {
	return &Driver{
		manager:           manager,
		NavigationTimeout: DefaultNavigationTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ContentTimeout:    DefaultContentTimeout,
		ContentSelector:   DefaultContentSelector,
	}
}

// Render navigates to rawURL and returns the rendered DOM. Waiting for
// network quiescence and for the content selector is best effort; a page
// that never settles is returned as it stands when the waits expire.
func (d *Driver) Render(ctx context.Context, rawURL string) (*doclens.RenderedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := d.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	defer page.Close()
	defer d.manager.PageRendered()

	router := page.HijackRequests()
	if err := router.Add("*", "", blockHandler); err != nil {
		return nil, err
	}
	go router.Run()
	defer func() { _ = router.Stop() }()

	page = page.Context(ctx)

	waitIdle := page.Timeout(d.NavigationTimeout + d.IdleTimeout).
		WaitRequestIdle(requestIdleWindow, nil, nil, BlockedResourceTypes)

	if err := page.Timeout(d.NavigationTimeout).Navigate(rawURL); err != nil {
		return nil, err
	}
	if err := page.Timeout(d.NavigationTimeout).WaitLoad(); err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	d.bestEffort(ctx, d.IdleTimeout, waitIdle)
	if d.ContentSelector != "" {
		d.bestEffort(ctx, d.ContentTimeout, func() {
			_, _ = page.Timeout(d.ContentTimeout).Element(d.ContentSelector)
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}

	finalURL := rawURL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &doclens.RenderedPage{URL: finalURL, HTML: html}, nil
}

// Close shuts down the browser.
func (d *Driver) Close() error {
	return d.manager.Close()
}

// bestEffort runs wait and returns once it finishes, the timeout expires or
// ctx is done, whichever comes first.
func (d *Driver) bestEffort(ctx context.Context, timeout time.Duration, wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { _ = recover() }()
		wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
	case <-ctx.Done():
	}
}

// blockHandler aborts requests for non-document resources and blocked file
// types.
func blockHandler(h *rod.Hijack) {
	if ShouldBlock(h.Request.Type(), h.Request.URL()) {
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		return
	}
	h.ContinueRequest(&proto.FetchContinueRequest{})
}

// ShouldBlock reports whether a request of the given type for u is aborted.
func ShouldBlock(resourceType proto.NetworkResourceType, u *url.URL) bool {
	for _, t := range BlockedResourceTypes {
		if resourceType == t {
			return true
		}
	}
	if u == nil {
		return false
	}
	return doclens.HasBlockedExtension(u.Path)
}
