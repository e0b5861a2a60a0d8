package cache

import (
	"sync"
	"time"
)

// Cache is a keyed store whose entries expire after a per-entry TTL.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
	Len() int
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type ttlCache[K comparable, V any] struct {
	mu      sync.RWMutex
	items   map[K]entry[V]
	now     func() time.Time
	maxSize int
}

type Option func(*options)

type options struct {
	now     func() time.Time
	maxSize int
}

// WithNow overrides the time source.
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMaxSize bounds the number of entries; expired entries are purged first
// and, if still full, the entry closest to expiry is evicted.
func WithMaxSize(n int) Option {
	return func(o *options) { o.maxSize = n }
}

// NewTTLCache returns an in-memory Cache safe for concurrent use.
func NewTTLCache[K comparable, V any](opts ...Option) Cache[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &ttlCache[K, V]{
		items:   make(map[K]entry[V]),
		now:     o.now,
		maxSize: o.maxSize,
	}
}

func (c *ttlCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		c.Delete(key)
		return zero, false
	}
	return item.value, true
}

// Set stores value. A non-positive ttl never expires.
func (c *ttlCache[K, V]) Set(key K, value V, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[key]; !exists && c.maxSize > 0 && len(c.items) >= c.maxSize {
		c.evictLocked()
	}
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
}

func (c *ttlCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *ttlCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *ttlCache[K, V]) evictLocked() {
	now := c.now()
	for key, item := range c.items {
		if !item.expiresAt.IsZero() && !now.Before(item.expiresAt) {
			delete(c.items, key)
		}
	}
	if len(c.items) < c.maxSize {
		return
	}

	var (
		victim K
		found  bool
		oldest time.Time
	)
	for key, item := range c.items {
		if item.expiresAt.IsZero() {
			continue
		}
		if !found || item.expiresAt.Before(oldest) {
			victim, oldest, found = key, item.expiresAt, true
		}
	}
	if !found {
		for key := range c.items {
			victim, found = key, true
			break
		}
	}
	if found {
		delete(c.items, victim)
	}
}
