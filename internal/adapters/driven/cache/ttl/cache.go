// Package ttl provides an in-memory redaction cache with bounded
// capacity and time-based expiry.
package ttl

import (
	"sync"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.RedactionCache = (*Cache)(nil)

// Default configuration values.
const (
	DefaultTTL      = 5 * time.Minute
	DefaultCapacity = 1024
)

type entry struct {
	result  *domain.RedactionResult
	expires time.Time
}

// Cache is a capacity-bounded TTL cache keyed by content digest.
// Entries past their TTL are dropped lazily on access; when the cache
// is full, the entry closest to expiry is evicted.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// New creates a cache with the given TTL and capacity. Zero values
// select the defaults.
func New(ttl time.Duration, capacity int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[string]entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached result for a digest, if present and fresh.
func (c *Cache) Get(digest string) (*domain.RedactionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[digest]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, digest)
		return nil, false
	}
	return e.result, true
}

// Set stores a result under a digest.
func (c *Cache) Set(digest string, result *domain.RedactionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[digest]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked(now)
	}
	c.entries[digest] = entry{result: result, expires: now.Add(c.ttl)}
}

// Reset drops all entries.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the current number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked removes expired entries, then the entry closest to
// expiry if the cache is still full. Caller must hold the mutex.
func (c *Cache) evictLocked(now time.Time) {
	for digest, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, digest)
		}
	}
	if len(c.entries) < c.capacity {
		return
	}

	var oldest string
	var oldestExpiry time.Time
	for digest, e := range c.entries {
		if oldest == "" || e.expires.Before(oldestExpiry) {
			oldest = digest
			oldestExpiry = e.expires
		}
	}
	if oldest != "" {
		delete(c.entries, oldest)
	}
}
