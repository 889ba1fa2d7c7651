package ticketing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/svb-events/internal/logger"
)

const (
	DefaultBaseURL = "https://app.ticketmaster.com/discovery/v2"

	// PageSize is the largest page the API allows.
	PageSize = 200

	classifications = "music,arts&theatre"

	DefaultConnectTimeout  = 5 * time.Second
	DefaultReadTimeout     = 30 * time.Second
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 10 * time.Second
)

// ErrUnexpectedStatus is returned for a non-200 response.
var ErrUnexpectedStatus = errors.New("API returned unexpected status")

// RetryPolicy controls how Search retries transient failures. Zero fields take
// the package defaults.
type RetryPolicy struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.ConnectTimeout <= 0 {
		p.ConnectTimeout = DefaultConnectTimeout
	}
	if p.ReadTimeout <= 0 {
		p.ReadTimeout = DefaultReadTimeout
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultInitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultMaxInterval
	}
	return p
}

func newHTTPClient(p RetryPolicy) *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: p.ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   p.ConnectTimeout,
		ResponseHeaderTimeout: p.ReadTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{Timeout: p.ConnectTimeout + p.ReadTimeout, Transport: tr}
}

// Client is a client for the Discovery API events endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
	cache      *Cache
}

// NewClient creates a client with its own response cache.
func NewClient(apiKey string) *Client {
	retry := RetryPolicy{}.withDefaults()
	return &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: newHTTPClient(retry),
		retry:      retry,
		cache:      NewCache(),
	}
}

// NewClientWithCache creates a client sharing an existing cache.
func NewClientWithCache(apiKey string, cache *Cache) *Client {
	client := NewClient(apiKey)
	client.cache = cache
	return client
}

// WithBaseURL points the client at another API root, such as a test server.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// WithRetry replaces the client's timeouts and retry schedule.
func (c *Client) WithRetry(p RetryPolicy) *Client {
	c.retry = p.withDefaults()
	c.httpClient = newHTTPClient(c.retry)
	return c
}

// HasKey reports whether the client has an API key.
func (c *Client) HasKey() bool {
	return c != nil && c.apiKey != ""
}

// Cache returns the client's cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Venue is the subset of a Discovery venue that records use.
type Venue struct {
	Name       string `json:"name"`
	PostalCode string `json:"postalCode"`
	City       struct {
		Name string `json:"name"`
	} `json:"city"`
	State struct {
		StateCode string `json:"stateCode"`
	} `json:"state"`
	Address struct {
		Line1 string `json:"line1"`
	} `json:"address"`
}

// Classification is one genre classification of an event.
type Classification struct {
	Segment struct {
		Name string `json:"name"`
	} `json:"segment"`
	Genre struct {
		Name string `json:"name"`
	} `json:"genre"`
}

// Event is the subset of a Discovery event that records use.
type Event struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	Popularity *float64 `json:"popularity,omitempty"`
	Dates      struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
			DateTime  string `json:"dateTime"`
		} `json:"start"`
	} `json:"dates"`
	Classifications []Classification `json:"classifications"`
	Embedded        struct {
		Venues []Venue `json:"venues"`
	} `json:"_embedded"`
}

// PageInfo describes the paging state of a response.
type PageInfo struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// SearchResult is one page of the events search response.
type SearchResult struct {
	Embedded struct {
		Events []Event `json:"events"`
	} `json:"_embedded"`
	Page PageInfo `json:"page"`
}

// Search fetches one page of music and arts events for a city name or zip code.
func (c *Client) Search(ctx context.Context, location string, page int) (*SearchResult, error) {
	if c.cache != nil {
		if cached := c.cache.Get(location, page); cached != nil {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("size", strconv.Itoa(PageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("sort", "date,asc")
	params.Set("locale", "*")
	params.Set("classificationName", classifications)
	params.Set("countryCode", "US")
	if isZip(location) {
		params.Set("postalCode", location)
	} else {
		params.Set("city", location)
	}

	reqURL := fmt.Sprintf("%s/events.json?%s", c.baseURL, params.Encode())

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialInterval
	b.MaxInterval = c.retry.MaxInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retry.MaxAttempts-1)), ctx)

	attempt := 0
	var result *SearchResult
	op := func() error {
		attempt++
		var err error
		result, err = c.get(ctx, reqURL)
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Ticketmaster request failed, retrying", logger.Fields{
			"location": location,
			"page":     page,
			"attempt":  attempt,
			"wait":     wait.String(),
			"error":    err.Error(),
		})
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, fmt.Errorf("searching %q page %d after %d attempt(s): %w", location, page, attempt, err)
	}

	if c.cache != nil {
		c.cache.Set(location, page, result)
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, reqURL string) (*SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if !isRetryableStatus(resp.StatusCode) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parsing response: %w", err))
	}
	return &result, nil
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

func isZip(location string) bool {
	if location == "" {
		return false
	}
	for _, r := range location {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
