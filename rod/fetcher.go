// Package rod implements seoentity.Fetcher with a headless Chrome browser,
// for pages whose visible content is rendered by JavaScript.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/seoentity/seoentity"
)

// DefaultFetchTimeout bounds one page render.
// Kept consistent with http.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxPages is the number of pages rendered before the browser is
// restarted. Chrome's memory baseline grows with every page.
const DefaultMaxPages = 75

// Ensure Fetcher implements seoentity.Fetcher at compile time.
var _ seoentity.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	timeout  time.Duration
	maxPages int

	mu       sync.Mutex
	current  *instance
	pages    int
	closed   bool
	retiring sync.WaitGroup
}

// instance is one browser process and the pages rendering on it.
type instance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	active   sync.WaitGroup
}

// shutdown waits for in-flight pages, then closes the browser and kills
// its process.
func (i *instance) shutdown() error {
	i.active.Wait()
	err := i.browser.Close()
	i.launcher.Kill()
	return err
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page render timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxPages sets how many pages are rendered before the browser restarts.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.launch(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	inst, err := f.acquire()
	if err != nil {
		return "", err
	}
	defer inst.active.Done()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := inst.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	return page.HTML()
}

// Close releases browser resources once in-flight fetches finish.
// Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	inst := f.current
	f.current = nil
	f.mu.Unlock()

	f.retiring.Wait()
	if inst == nil {
		return nil
	}
	return inst.shutdown()
}

// acquire registers a page on the current browser, restarting it once the
// page budget is spent. A failed restart keeps the old browser. The caller
// must call active.Done on the returned instance.
func (f *Fetcher) acquire() (*instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, seoentity.Errorf(seoentity.EINVALID, "fetcher is closed")
	}

	if f.pages >= f.maxPages {
		old := f.current
		if err := f.launch(); err == nil {
			f.retiring.Add(1)
			go func() {
				defer f.retiring.Done()
				_ = old.shutdown()
			}()
		}
	}
	f.pages++
	f.current.active.Add(1)
	return f.current, nil
}

// launch starts a browser and resets the page count.
// Must be called with mu held.
func (f *Fetcher) launch() error {
	l := launcher.New().
		Set("disable-dev-shm-usage").
		Set("disable-background-timer-throttling").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	f.current = &instance{browser: browser, launcher: l}
	f.pages = 0
	return nil
}
