package scraper

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Provider supplies the raw listing page, as HTML or plain text.
type Provider interface {
	Name() string
	Page(ctx context.Context) (string, error)
}

// FileProvider reads a saved copy of the listing from disk.
type FileProvider struct {
	Path string
}

// Name implements Provider.
func (p FileProvider) Name() string { return "file" }

// Page implements Provider.
func (p FileProvider) Page(context.Context) (string, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", fmt.Errorf("reading input file %s: %w", p.Path, err)
	}
	return string(data), nil
}

// DefaultRenderTimeout bounds a headless render.
const DefaultRenderTimeout = 60 * time.Second

// Renderer loads the listing in headless Chromium and returns the rendered DOM, for
// when the static HTML is only a script shell.
type Renderer struct {
	URL       string
	UserAgent string
	Timeout   time.Duration

	// WaitFor is a CSS selector that signals the listing has rendered; "body" when empty.
	WaitFor string
}

// Name implements Provider.
func (r *Renderer) Name() string { return "render" }

// Page implements Provider.
func (r *Renderer) Page(parent context.Context) (string, error) {
	if r.URL == "" {
		return "", fmt.Errorf("render: URL is required")
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	wait := r.WaitFor
	if wait == "" {
		wait = "body"
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	if r.UserAgent != "" {
		opts = append(opts[:len(opts):len(opts)], chromedp.UserAgent(r.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(r.URL),
		chromedp.WaitReady(wait, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", fmt.Errorf("render: chromedp run failed: %w", err)
	}
	return html, nil
}
