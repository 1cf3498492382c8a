// Package pagecache keeps downloaded results pages between runs.
//
// Pages of weeks that are already over do not change, so a re-run over the same
// range can read them from a JSON cache file instead of the network.
package pagecache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pfrederiksen/animalitos/internal/logger"
	"github.com/pfrederiksen/animalitos/internal/storage"
)

// DefaultTTL is how long a cached page stays valid
const DefaultTTL = 30 * 24 * time.Hour

// Cache maps page URLs to their HTML with a TTL. It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	Pages    map[string]string    `json:"pages"`     // url → html
	CachedAt map[string]time.Time `json:"cached_at"` // url → cache time
	TTL      time.Duration        `json:"-"`
}

// New creates an empty cache with DefaultTTL
func New() *Cache {
	return &Cache{
		Pages:    make(map[string]string),
		CachedAt: make(map[string]time.Time),
		TTL:      DefaultTTL,
	}
}

// Get returns the cached page for url, or false if it is missing or expired
func (c *Cache) Get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	page, exists := c.Pages[url]
	if !exists {
		return nil, false
	}

	cachedTime, hasTime := c.CachedAt[url]
	if !hasTime || time.Since(cachedTime) > c.TTL {
		delete(c.Pages, url)
		delete(c.CachedAt, url)
		return nil, false
	}

	return []byte(page), true
}

// Set stores a page
func (c *Cache) Set(url string, page []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Pages[url] = string(page)
	c.CachedAt[url] = time.Now()
}

// CleanExpired removes expired entries and returns how many were removed
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := time.Now()

	for url, cachedTime := range c.CachedAt {
		if now.Sub(cachedTime) > c.TTL {
			delete(c.Pages, url)
			delete(c.CachedAt, url)
			removed++
		}
	}
	for url := range c.Pages {
		if _, ok := c.CachedAt[url]; !ok {
			delete(c.Pages, url)
			removed++
		}
	}

	return removed
}

// Size returns the number of cached pages
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Pages)
}

// Load reads a cache file. A missing file yields an empty cache.
func Load(path string, ttl time.Duration) (*Cache, error) {
	path, err := storage.ExpandPath(path)
	if err != nil {
		return nil, err
	}

	cache := New()
	if ttl > 0 {
		cache.TTL = ttl
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return nil, fmt.Errorf("reading page cache: %w", err)
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("parsing page cache: %w", err)
	}

	// Ensure maps are initialized
	if cache.Pages == nil {
		cache.Pages = make(map[string]string)
	}
	if cache.CachedAt == nil {
		cache.CachedAt = make(map[string]time.Time)
	}

	return cache, nil
}

// Save writes the cache to path, dropping expired pages first
func (c *Cache) Save(path string) error {
	path, err := storage.ExpandPath(path)
	if err != nil {
		return err
	}

	c.CleanExpired()

	c.mu.Lock()
	data, err := json.Marshal(c)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding page cache: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing page cache: %w", err)
	}

	return nil
}

// Upstream downloads a page
type Upstream interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Fetcher serves pages from a Cache and falls back to an Upstream on a miss
type Fetcher struct {
	upstream  Upstream
	cache     *Cache
	cacheable func(url string) bool
	metrics   *logger.Metrics
}

// NewFetcher wraps upstream. Downloaded pages are stored only when cacheable
// reports true for their URL; a nil cacheable stores every page.
func NewFetcher(upstream Upstream, cache *Cache, cacheable func(url string) bool, metrics *logger.Metrics) *Fetcher {
	if metrics == nil {
		metrics = logger.NewMetrics()
	}
	return &Fetcher{
		upstream:  upstream,
		cache:     cache,
		cacheable: cacheable,
		metrics:   metrics,
	}
}

// Fetch returns the cached page for url or downloads it
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if page, ok := f.cache.Get(url); ok {
		f.metrics.IncrCounter("cache.hits")
		return page, nil
	}
	f.metrics.IncrCounter("cache.misses")

	page, err := f.upstream.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if f.cacheable == nil || f.cacheable(url) {
		f.cache.Set(url, page)
	}
	return page, nil
}
