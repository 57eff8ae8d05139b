// Package cache is a small TTL cache for the API client's responses.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL applies to Set.
const DefaultTTL = 5 * time.Minute

type item[V any] struct {
	value  V
	expiry time.Time
}

type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	storage map[string]item[V]
	now     func() time.Time
}

// New creates a cache whose entries expire after ttl. A zero ttl means DefaultTTL.
func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		ttl:     ttl,
		storage: make(map[string]item[V]),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (c *Cache[V]) WithClock(now func() time.Time) *Cache[V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

// Get returns the value for key. Expired entries are removed and reported
// as missing.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	it, ok := c.storage[key]
	if !ok {
		return zero, false
	}
	if c.now().After(it.expiry) {
		delete(c.storage, key)
		return zero, false
	}
	return it.value, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.SetTTL(key, value, c.ttl)
}

func (c *Cache[V]) SetTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.storage[key] = item[V]{value: value, expiry: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.storage, key)
	c.mu.Unlock()
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.storage = make(map[string]item[V])
	c.mu.Unlock()
}

// Len counts stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.storage)
}
