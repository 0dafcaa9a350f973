package cache

import "sync"

// Cache is a process-wide concurrent map used by the serving layer as a
// read-through cache over storage. Entries never expire; invalidation is
// explicit via Remove or Clear.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	store map[K]V
}

// New returns an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{store: make(map[K]V)}
}

// Get returns the value for key and whether it was present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.store[key]
	return value, ok
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
}

// Remove deletes the entry and returns the previous value, if any.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.store[key]
	if ok {
		delete(c.store, key)
	}
	return value, ok
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[K]V)
}
