package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultRecycleAfter is the number of rendered pages after which the
// browser process is replaced.
const DefaultRecycleAfter = 75

// BrowserManager owns the Chrome process used for rendering. Chrome memory
// grows steadily under load even with pages closed, so the process is
// replaced after a fixed number of renders.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu           sync.Mutex
	browser      *rod.Browser
	launcher     *launcher.Launcher
	rendered     atomic.Int64
	recycleAfter int64
	headless     bool
	closed       atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithRecycleAfter sets how many pages are rendered before the browser is
// replaced. Non-positive values disable recycling.
func WithRecycleAfter(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.recycleAfter = n
	}
}

// WithHeadless controls whether Chrome runs without a window.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// NewBrowserManager launches Chrome and connects to it.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		recycleAfter: DefaultRecycleAfter,
		headless:     true,
	}
	for _, opt := range opts {
		opt(bm)
	}

	if err := bm.launch(); err != nil {
		return nil, err
	}
	return bm, nil
}

// Browser returns the current browser, replacing it first when the render
// count has reached the recycle threshold.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.recycleAfter > 0 && bm.rendered.Load() >= bm.recycleAfter {
		bm.recycle()
	}
	return bm.browser
}

// PageRendered records one rendered page toward the recycle threshold.
func (bm *BrowserManager) PageRendered() {
	bm.rendered.Add(1)
}

// Close shuts down the browser. It is safe to call more than once.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	return bm.shutdown()
}

// LauncherPID returns the process ID of the browser launcher, or 0 when no
// browser is running.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// launch starts Chrome with flags that keep background pages responsive.
// Must be called with mu held or before the manager is shared.
func (bm *BrowserManager) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(bm.headless)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = l
	return nil
}

// shutdown closes the browser and kills its process. Must be called with mu
// held.
func (bm *BrowserManager) shutdown() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycle replaces the browser. The old browser is kept when the new one
// fails to launch. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	oldBrowser, oldLauncher := bm.browser, bm.launcher
	bm.browser, bm.launcher = nil, nil

	if err := bm.launch(); err != nil {
		bm.browser, bm.launcher = oldBrowser, oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	bm.rendered.Store(0)
}
