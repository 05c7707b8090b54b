package descriptor

import (
	"fmt"
	"sync"

	"github.com/c360/scriptbridge/catalog"
	"github.com/c360/scriptbridge/errors"
)

// Cache maps spawner keys to weak references of live catalog entries.
// It is populated lazily by the search engine and the resolution
// pipeline, never explicitly cleared, and self-heals: a lookup that
// finds its backing entry dead removes the stale mapping instead of
// dereferencing it. There is no proactive sweep.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]catalog.Handle[catalog.Entry]
	onEvict func(key string)
}

// NewCache creates an empty spawner cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]catalog.Handle[catalog.Entry])}
}

// SetEvictionHook installs a callback invoked whenever a stale mapping
// is removed. Used for metrics; may be nil.
func (c *Cache) SetEvictionHook(fn func(key string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Put records a key to entry mapping. Keys must be non-empty; an entry
// re-discovered under the same key simply refreshes the mapping.
func (c *Cache) Put(key string, e catalog.Entry) error {
	if key == "" {
		return errors.WrapInvalid(
			fmt.Errorf("spawner key cannot be empty"),
			"Cache", "Put", "key validation")
	}
	if e == nil {
		return errors.WrapInvalid(
			fmt.Errorf("entry cannot be nil"),
			"Cache", "Put", "entry validation")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = catalog.NewHandle(e)
	return nil
}

// Lookup returns the live entry cached under key. A dead backing entry
// is evicted and reported as a miss.
func (c *Cache) Lookup(key string) (catalog.Entry, bool) {
	c.mu.RLock()
	h, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e, valid := h.Get(); valid {
		return e, true
	}

	// Lazy eviction: remove the stale mapping the moment it is seen.
	c.mu.Lock()
	// Re-check under the write lock; a concurrent rediscovery may have
	// refreshed the key with a live entry.
	if current, ok := c.entries[key]; ok && !current.IsValid() {
		delete(c.entries, key)
		if c.onEvict != nil {
			c.onEvict(key)
		}
	}
	c.mu.Unlock()
	return nil, false
}

// Len returns the number of mappings, live or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
