package ticketing

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL keeps responses between runs of the schedule command without
// serving stale listings for long.
const DefaultCacheTTL = 15 * time.Minute

// Cache holds search responses per location and page with a TTL.
type Cache struct {
	TTL time.Duration

	mu       sync.Mutex
	results  map[string]*SearchResult
	cachedAt map[string]time.Time
	now      func() time.Time
}

// NewCache creates a cache with DefaultCacheTTL.
func NewCache() *Cache {
	return &Cache{
		TTL:      DefaultCacheTTL,
		results:  make(map[string]*SearchResult),
		cachedAt: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Get returns a cached response, or nil if absent or expired.
func (c *Cache) Get(location string, page int) *SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(location, page)
	result, ok := c.results[key]
	if !ok {
		return nil
	}
	if c.now().Sub(c.cachedAt[key]) > c.TTL {
		delete(c.results, key)
		delete(c.cachedAt, key)
		return nil
	}
	return result
}

// Set stores a response.
func (c *Cache) Set(location string, page int, result *SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(location, page)
	c.results[key] = result
	c.cachedAt[key] = c.now()
}

// CleanExpired removes expired entries and returns how many were removed.
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, at := range c.cachedAt {
		if now.Sub(at) > c.TTL {
			delete(c.results, key)
			delete(c.cachedAt, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

func cacheKey(location string, page int) string {
	return strings.ToLower(strings.TrimSpace(location)) + "|" + strconv.Itoa(page)
}
