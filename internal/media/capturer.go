// Package media captures homepage screenshots and moves external media into owned storage.
package media

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/browser"
	"github.com/aigcpilot/harvester/internal/logger"
)

// ErrRender wraps failures to render or screenshot a page.
var ErrRender = errors.New("render failed")

const (
	viewportWidth  = 1280
	viewportHeight = 720
	settleDelay    = 3 * time.Second
)

// Capturer screenshots a page's first viewport with headless Chrome.
type Capturer struct {
	browser *browser.Browser
	settle  time.Duration
	log     *zerolog.Logger
}

func NewCapturer(b *browser.Browser) *Capturer {
	return &Capturer{
		browser: b,
		settle:  settleDelay,
		log:     logger.Component("capturer"),
	}
}

// Capture returns a PNG of the page, or false when the page could not be rendered.
func (c *Capturer) Capture(ctx context.Context, url string) ([]byte, bool) {
	png, err := c.capture(ctx, url)
	if err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("Screenshot failed")
		return nil, false
	}
	return png, true
}

func (c *Capturer) capture(ctx context.Context, url string) ([]byte, error) {
	tabCtx, cancel := c.browser.Tab(ctx)
	defer cancel()

	idle := newIdleWatcher()
	chromedp.ListenTarget(tabCtx, idle.handle)

	var buf []byte
	actions := []chromedp.Action{
		page.SetLifecycleEventsEnabled(true),
		emulation.SetDeviceMetricsOverride(viewportWidth, viewportHeight, 1, false),
		chromedp.ActionFunc(func(context.Context) error {
			idle.arm()
			return nil
		}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Half the tab budget so long-polling pages still leave time to capture.
			if !idle.wait(ctx, c.browser.NavigationTimeout()/2) {
				c.log.Debug().Str("url", url).Msg("Network never went idle, capturing anyway")
			}
			return nil
		}),
		chromedp.Sleep(c.settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
			return err
		}),
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRender, url, err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: %s: empty screenshot", ErrRender, url)
	}
	return buf, nil
}

// idleWatcher tracks page lifecycle events and fires once the navigated document reports
// networkIdle. Events seen before arm, or before the new document's init event, are
// ignored so the blank start page cannot satisfy the wait.
type idleWatcher struct {
	mu     sync.Mutex
	armed  bool
	inited bool
	once   sync.Once
	done   chan struct{}
}

func newIdleWatcher() *idleWatcher {
	return &idleWatcher{done: make(chan struct{})}
}

func (w *idleWatcher) arm() {
	w.mu.Lock()
	w.armed = true
	w.mu.Unlock()
}

func (w *idleWatcher) handle(ev any) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.armed {
		return
	}
	switch e.Name {
	case "init":
		w.inited = true
	case "networkIdle":
		if w.inited {
			w.once.Do(func() { close(w.done) })
		}
	}
}

// wait blocks until networkIdle, ctx is done, or limit elapses. It reports whether the
// page went idle.
func (w *idleWatcher) wait(ctx context.Context, limit time.Duration) bool {
	timer := time.NewTimer(limit)
	defer timer.Stop()
	select {
	case <-w.done:
		return true
	case <-ctx.Done():
		return false
	case <-timer.C:
		return false
	}
}
