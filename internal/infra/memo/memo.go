// Package memo memoizes external lookups for the lifetime of the process.
//
// Results are keyed by call arguments and never expire or get invalidated.
// Failed calls are not cached, so a retry within the same run re-issues the
// call. Concurrent callers asking for the same key share one in-flight call.
package memo

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache stores successful results by key.
type Cache[K comparable, V any] struct {
	entries map[K]V
	group   singleflight.Group
	mu      sync.Mutex
}

// NewCache creates an empty cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for key, calling fn on a miss.
func (c *Cache[K, V]) Get(key K, fn func() (V, error)) (V, error) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	res, err, _ := c.group.Do(fmt.Sprintf("%#v", key), func() (any, error) {
		// Another caller may have filled the entry while we waited.
		c.mu.Lock()
		if v, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		v, err := fn()
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
