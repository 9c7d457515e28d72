package tenant

import (
	"sync"
	"time"

	"github.com/kiranshivaraju/unionhome/pkg/models"
)

// DefaultTTL is how long a resolved union stays cached.
const DefaultTTL = 30 * time.Minute

// Cache is an in-memory slug -> union map with per-entry expiry.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	items      map[string]cacheItem
	defaultTTL time.Duration
	now        func() time.Time
}

type cacheItem struct {
	union     *models.Union
	expiresAt time.Time
}

// NewCache creates a cache whose Set uses defaultTTL when called with a
// non-positive ttl. A non-positive defaultTTL falls back to DefaultTTL.
func NewCache(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{
		items:      make(map[string]cacheItem),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the cached union for slug. An expired entry is evicted and
// reported as absent.
func (c *Cache) Get(slug string) (*models.Union, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[slug]
	if !ok {
		return nil, false
	}
	if !c.now().Before(item.expiresAt) {
		delete(c.items, slug)
		return nil, false
	}
	return item.union, true
}

// Set stores union under slug, replacing any previous entry.
func (c *Cache) Set(slug string, union *models.Union, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[slug] = cacheItem{
		union:     union,
		expiresAt: c.now().Add(ttl),
	}
}

// Delete removes slug from the cache.
func (c *Cache) Delete(slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, slug)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem)
}

// Len reports the number of stored entries, including expired ones that have
// not been read since they expired.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// DefaultTTL returns the TTL applied by Set when none is given.
func (c *Cache) DefaultTTL() time.Duration {
	return c.defaultTTL
}
