package blogcatalog

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/eringen/blogcatalog/metrics"
)

// CatalogCache is an in-memory, per-locale cache of catalogs with TTL.
// Concurrent misses for the same locale share one load, unless an
// invalidation happened in between.
type CatalogCache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	loader   CatalogLoader
	group    singleflight.Group
	recorder metrics.Recorder
	now      func() time.Time
	// gen is bumped on every invalidation so a load that started before it
	// does not repopulate the cache with stale content.
	gen uint64
}

type cacheEntry struct {
	catalog *Catalog
	fetched time.Time
}

// CacheOption configures a CatalogCache.
type CacheOption func(*CatalogCache)

// WithCacheRecorder reports hits and misses to r.
func WithCacheRecorder(r metrics.Recorder) CacheOption {
	return func(c *CatalogCache) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewCatalogCache creates a CatalogCache backed by loader. A ttl of zero
// keeps entries until they are invalidated.
func NewCatalogCache(loader CatalogLoader, ttl time.Duration, opts ...CacheOption) *CatalogCache {
	c := &CatalogCache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		loader:   loader,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CatalogCache) valid(e cacheEntry) bool {
	return e.catalog != nil && (c.ttl <= 0 || c.now().Sub(e.fetched) < c.ttl)
}

// Get returns the catalog for locale, loading it when absent or expired.
func (c *CatalogCache) Get(locale string) (*Catalog, error) {
	c.mu.RLock()
	e, ok := c.entries[locale]
	gen := c.gen
	c.mu.RUnlock()
	if ok && c.valid(e) {
		c.recorder.IncCacheResult(locale, true)
		return e.catalog, nil
	}
	c.recorder.IncCacheResult(locale, false)

	// Loads started before an invalidation are not shared with reads after it.
	key := locale + "/" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(key, func() (any, error) {
		cat, err := c.loader.LoadCatalog(locale)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.entries[locale] = cacheEntry{catalog: cat, fetched: c.now()}
		}
		c.mu.Unlock()
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

// LoadCatalog makes the cache usable wherever a CatalogLoader is expected.
func (c *CatalogCache) LoadCatalog(locale string) (*Catalog, error) {
	return c.Get(locale)
}

// Invalidate clears every locale so the next read triggers a fresh load.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.gen++
	c.mu.Unlock()
}

// InvalidateLocale drops a single locale.
func (c *CatalogCache) InvalidateLocale(locale string) {
	c.mu.Lock()
	delete(c.entries, locale)
	c.gen++
	c.mu.Unlock()
}

// Warm loads every locale, replacing cached entries. It returns the first
// error but keeps loading the remaining locales.
func (c *CatalogCache) Warm(locales []string) error {
	var firstErr error
	for _, loc := range locales {
		cat, err := c.loader.LoadCatalog(loc)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.mu.Lock()
		c.entries[loc] = cacheEntry{catalog: cat, fetched: c.now()}
		c.mu.Unlock()
	}
	return firstErr
}

// Locales returns the locales currently held in the cache.
func (c *CatalogCache) Locales() []string {
	c.mu.RLock()
	set := make(map[string]struct{}, len(c.entries))
	for loc := range c.entries {
		set[loc] = struct{}{}
	}
	c.mu.RUnlock()
	return sortedKeys(set, false)
}

var _ CatalogLoader = (*CatalogCache)(nil)
