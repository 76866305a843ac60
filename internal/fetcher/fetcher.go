package fetcher

import (
	"context"
	"sync"
	"time"

	"fbstats/internal/browser"
	"fbstats/internal/log"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrTimeout is returned when navigation or the element wait runs past its deadline.
var ErrTimeout = errors.New("timed out waiting for page")

// Options controls navigation and the render waits.
type Options struct {
	NavigateTimeout time.Duration
	Settle          time.Duration // unconditional sleep after navigation, 0 disables it
	WaitTimeout     time.Duration
	WaitSelector    string
}

// DefaultOptions returns the waits that work for FBref's client-side rendering.
func DefaultOptions() Options {
	return Options{
		NavigateTimeout: 30 * time.Second,
		Settle:          5 * time.Second,
		WaitTimeout:     15 * time.Second,
		WaitSelector:    "table",
	}
}

// Fetcher renders pages in a single reusable tab of the browser it owns.
type Fetcher struct {
	browser   *browser.Browser
	page      *rod.Page
	opts      Options
	log       zerolog.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewFetcher creates a Fetcher. The Fetcher takes ownership of b and closes it in Close.
func NewFetcher(b *browser.Browser, opts Options) *Fetcher {
	if opts.WaitSelector == "" {
		opts.WaitSelector = "table"
	}
	return &Fetcher{
		browser: b,
		opts:    opts,
		log:     log.NewLogger("fetcher"),
	}
}

// Render navigates to url, waits for the page to settle and for the wait
// selector to appear, and returns the rendered document.
func (f *Fetcher) Render(ctx context.Context, url string) (string, error) {
	page, err := f.ensurePage()
	if err != nil {
		return "", err
	}

	start := time.Now()

	if err := page.Context(ctx).Timeout(f.opts.NavigateTimeout).Navigate(url); err != nil {
		return "", wrapWait(err, "failed to navigate to %s", url)
	}

	f.log.Info().Msg("Waiting for table to load...")
	if err := Sleep(ctx, f.opts.Settle); err != nil {
		return "", errors.Wrap(err, "interrupted while page was settling")
	}

	if _, err := page.Context(ctx).Timeout(f.opts.WaitTimeout).Element(f.opts.WaitSelector); err != nil {
		return "", wrapWait(err, "element %q never appeared", f.opts.WaitSelector)
	}

	html, err := page.Context(ctx).HTML()
	if err != nil {
		return "", errors.Wrap(err, "failed to read page source")
	}

	f.log.Debug().
		Str("url", url).
		Dur("load_time", time.Since(start)).
		Int("bytes", len(html)).
		Msg("Page rendered")

	return html, nil
}

// Close closes the tab and the browser. Only the first call does any work.
func (f *Fetcher) Close() error {
	f.closeOnce.Do(func() {
		if f.page != nil {
			if err := f.page.Close(); err != nil {
				f.log.Debug().Err(err).Msg("Failed to close page")
			}
		}
		if f.browser != nil {
			f.closeErr = f.browser.Close()
		}
	})
	return f.closeErr
}

func (f *Fetcher) ensurePage() (*rod.Page, error) {
	if f.page != nil {
		return f.page, nil
	}
	page, err := f.browser.NewPage()
	if err != nil {
		return nil, err
	}
	f.page = page
	return page, nil
}

// wrapWait maps deadline errors to ErrTimeout so callers can tell them apart.
func wrapWait(err error, format string, args ...interface{}) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(ErrTimeout, format+": %v", append(args, err)...)
	}
	return errors.Wrapf(err, format, args...)
}

// Sleep waits for d or until ctx ends. A non-positive d returns at once.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
