// Package core holds small in-process building blocks shared by the meal view
// registry and the memory session store.
package core

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// LRU is a small in-memory LRU cache with per-entry idle TTL.
// Every successful Get pushes the entry's expiry forward by its TTL.
// Concurrency: methods are safe for concurrent use.
type LRU[V any] struct {
	mu     sync.Mutex
	cap    int
	ll     *list.List               // front = most-recently used
	items  map[string]*list.Element // key -> element
	now    func() time.Time         // injectable clock for tests
	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
}

type lruEntry[V any] struct {
	key    string
	value  V
	ttl    time.Duration
	expiry time.Time // zero means no expiry
}

// LRUConfig groups constructor options.
type LRUConfig struct {
	Capacity int
	Now      func() time.Time
}

// NewLRU creates a new LRU with the given config.
func NewLRU[V any](cfg LRUConfig) *LRU[V] {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 1024
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &LRU[V]{
		cap:   capacity,
		ll:    list.New(),
		items: make(map[string]*list.Element, capacity),
		now:   nowFn,
	}
}

// Get returns the value for key if present and not expired, refreshing its expiry.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, found := c.items[key]; found {
		ent := el.Value.(*lruEntry[V])
		if c.isExpired(ent) {
			c.removeElement(el)
			c.misses.Add(1)
			var zero V
			return zero, false
		}
		c.touch(ent)
		c.ll.MoveToFront(el)
		c.hits.Add(1)
		return ent.value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// GetOrCreate returns the live value for key, or stores and returns create()'s result.
// create runs under the cache lock and must not call back into the cache.
func (c *LRU[V]) GetOrCreate(key string, ttl time.Duration, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, found := c.items[key]; found {
		ent := el.Value.(*lruEntry[V])
		if !c.isExpired(ent) {
			c.touch(ent)
			c.ll.MoveToFront(el)
			c.hits.Add(1)
			return ent.value
		}
		c.removeElement(el)
	}
	c.misses.Add(1)
	v := create()
	c.insert(key, v, ttl)
	return v
}

// Set inserts or updates a value with TTL.
// ttl <= 0 means no expiration.
func (c *LRU[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, found := c.items[key]; found {
		ent := el.Value.(*lruEntry[V])
		ent.value = value
		ent.ttl = ttl
		c.touch(ent)
		c.ll.MoveToFront(el)
		return
	}
	c.insert(key, value, ttl)
}

// Delete removes a key from the cache.
func (c *LRU[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
		return true
	}
	return false
}

// Sweep removes every expired entry and returns how many were removed.
func (c *LRU[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if c.isExpired(el.Value.(*lruEntry[V])) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the current number of items in the cache.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// LRUStats are simple counters for observability.
type LRUStats struct {
	Hits, Misses, Evictions uint64
	Size, Capacity          int
}

// Stats returns a snapshot of counters and sizes.
func (c *LRU[V]) Stats() LRUStats {
	return LRUStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicts.Load(),
		Size:      c.Len(),
		Capacity:  c.cap,
	}
}

// Helpers (caller must hold c.mu).
func (c *LRU[V]) insert(key string, value V, ttl time.Duration) {
	ent := &lruEntry[V]{key: key, value: value, ttl: ttl}
	c.touch(ent)
	c.items[key] = c.ll.PushFront(ent)
	c.evictIfNeeded()
}

func (c *LRU[V]) touch(e *lruEntry[V]) {
	if e.ttl > 0 {
		e.expiry = c.now().Add(e.ttl)
		return
	}
	e.expiry = time.Time{}
}

func (c *LRU[V]) isExpired(e *lruEntry[V]) bool {
	if e.expiry.IsZero() {
		return false
	}
	return c.now().After(e.expiry)
}

func (c *LRU[V]) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*lruEntry[V]).key)
}

func (c *LRU[V]) evictIfNeeded() {
	for c.ll.Len() > c.cap {
		el := c.ll.Back()
		if el == nil {
			return
		}
		c.removeElement(el)
		c.evicts.Add(1)
	}
}
