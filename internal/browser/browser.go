// Package browser owns the headless Chrome allocator shared by screenshot capture and
// infinite-scroll scraping.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultNavigationTimeout bounds a whole tab session.
const DefaultNavigationTimeout = 60 * time.Second

// Config controls the headless browser.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
}

// Browser holds the exec allocator. Each Tab launches its own headless Chrome process,
// which exits when the tab is cancelled.
type Browser struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
}

func New(cfg Config) *Browser {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = DefaultNavigationTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}
}

// Tab opens a fresh browser context bounded by the navigation timeout. It is also
// cancelled when ctx is done. Callers must call the returned cancel func.
func (b *Browser) Tab(ctx context.Context) (context.Context, context.CancelFunc) {
	tabCtx, tabCancel := chromedp.NewContext(b.allocator)
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, b.cfg.NavigationTimeout)

	stop := context.AfterFunc(ctx, timeoutCancel)
	return tabCtx, func() {
		stop()
		timeoutCancel()
		tabCancel()
	}
}

// NavigationTimeout returns the configured per-tab timeout.
func (b *Browser) NavigationTimeout() time.Duration {
	return b.cfg.NavigationTimeout
}

// Close stops the Chrome process.
func (b *Browser) Close() {
	b.allocCancel()
}
