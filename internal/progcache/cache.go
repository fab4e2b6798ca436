// Package progcache caches resolved descriptor trees keyed by the raw
// bytes of the data-description section's descriptor list.
//
// Operational BUFR feeds typically replay the same template (the same
// data-description section) across many thousands of messages in a row;
// resolving that template (recursive Table B/D lookups, replication span
// slicing) is pure overhead if it was already done for an identical byte
// sequence moments ago. A single xxHash64 pass over the raw descriptor
// bytes identifies the template once, the same trade-off the teacher makes
// for its own content-addressed lookup maps.
package progcache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Key identifies a descriptor program by the xxHash64 of its raw bytes.
type Key uint64

// KeyOf hashes the raw wire bytes of a data-description section's
// descriptor list (2 bytes per descriptor, in wire order).
func KeyOf(rawDescriptorBytes []byte) Key {
	return Key(xxhash.Sum64(rawDescriptorBytes))
}

// Cache is a concurrency-safe, unbounded cache from Key to an arbitrary
// resolved-tree value. It never evicts: a decoder process resolves a
// bounded number of distinct templates over its lifetime, so unbounded
// growth keyed by template hash is the same trade-off the teacher makes
// for its own process-lifetime lookup maps.
type Cache[V any] struct {
	mu    sync.RWMutex
	items map[Key]V
}

// New returns an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{items: make(map[Key]V)}
}

// Get returns the cached value for key, if present.
func (c *Cache[V]) Get(key Key) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

// Put stores value under key.
func (c *Cache[V]) Put(key Key, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}
