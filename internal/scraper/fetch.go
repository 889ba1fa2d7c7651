package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/svb-events/internal/logger"
)

const (
	ListingURL = "https://livenotessb.com/"
	UserAgent  = "svb-events/1.0 (github.com/pfrederiksen/svb-events)"

	DefaultConnectTimeout  = 5 * time.Second
	DefaultReadTimeout     = 45 * time.Second
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 10 * time.Second

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 8 << 20
)

// ErrUnexpectedStatus is returned for a non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// FetchOptions configures a Fetcher. Zero fields take the package defaults.
type FetchOptions struct {
	URL             string
	UserAgent       string
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.URL == "" {
		o.URL = ListingURL
	}
	if o.UserAgent == "" {
		o.UserAgent = UserAgent
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.InitialInterval <= 0 {
		o.InitialInterval = DefaultInitialInterval
	}
	if o.MaxInterval <= 0 {
		o.MaxInterval = DefaultMaxInterval
	}
	return o
}

// Fetcher downloads the listing over HTTP, retrying transient failures.
type Fetcher struct {
	client *http.Client
	opts   FetchOptions
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts FetchOptions) *Fetcher {
	opts = opts.withDefaults()
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{Timeout: opts.ConnectTimeout + opts.ReadTimeout, Transport: tr},
		opts:   opts,
	}
}

// Name implements Provider.
func (f *Fetcher) Name() string { return "http" }

// URL returns the address being fetched.
func (f *Fetcher) URL() string { return f.opts.URL }

// Page implements Provider. Timeouts, connection errors, 408, 429 and 5xx responses
// are retried with exponential backoff up to MaxAttempts in total.
func (f *Fetcher) Page(ctx context.Context) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.opts.InitialInterval
	b.MaxInterval = f.opts.MaxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.opts.MaxAttempts-1)), ctx)

	attempt := 0
	var body string
	op := func() error {
		attempt++
		var err error
		body, err = f.get(ctx)
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Fetch failed, retrying", logger.Fields{
			"url":     f.opts.URL,
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", fmt.Errorf("fetching %s after %d attempt(s): %w", f.opts.URL, attempt, err)
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.opts.URL, http.NoBody)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if !isRetryableStatus(resp.StatusCode) {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(data), nil
}

func isRetryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	}
	return false
}
