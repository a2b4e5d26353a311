// Package cache provides a mutex-guarded, bounded, in-memory cache for
// compiled template artifacts (parsed segment lists, compiled expressions).
//
// The cache is an optimization only: evaluation output must be identical
// with the cache disabled. It is owned by an Evaluator instance and shared
// across instances only by explicitly passing the same *Cache around; there
// is no package-level global state.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits   uint64
	Misses uint64
}

type item struct {
	key      string
	artifact any
	storedAt time.Time
}

// Cache is a thread-safe string->artifact map with a size bound (oldest
// insertion evicted first) and an optional TTL.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	order   *list.List // of *item, oldest at front
	byKey   map[string]*list.Element
	stats   Stats
}

// New creates a cache holding at most maxSize entries. A maxSize <= 0 falls
// back to a sensible default. A ttl of zero disables expiry.
func New(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		order:   list.New(),
		byKey:   make(map[string]*list.Element),
	}
}

// Get returns the artifact stored under key, if present and not expired.
// Get on a nil *Cache always misses, so callers can treat "caching
// disabled" as a nil cache.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byKey[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	it := el.Value.(*item)
	if c.ttl > 0 && time.Since(it.storedAt) > c.ttl {
		c.order.Remove(el)
		delete(c.byKey, key)
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return it.artifact, true
}

// Put stores an artifact under key, evicting the oldest insertion when the
// bound is exceeded. Put on a nil *Cache is a no-op.
func (c *Cache) Put(key string, artifact any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byKey[key]; ok {
		it := el.Value.(*item)
		it.artifact = artifact
		it.storedAt = time.Now()
		return
	}
	c.byKey[key] = c.order.PushBack(&item{key: key, artifact: artifact, storedAt: time.Now()})
	for c.order.Len() > c.maxSize {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.byKey, oldest.Value.(*item).key)
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the hit/miss counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
