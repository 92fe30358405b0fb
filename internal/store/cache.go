package store

import "sync"

// ScopedCache is a secondary cache keyed by a parent identifier, e.g. the
// agents available to one company or the members of one team. It lives next
// to an entity store but is deliberately decoupled from it: filling or
// invalidating a scoped cache never touches the store's primary status, so a
// dropdown load cannot flash a page-level spinner.
type ScopedCache[K comparable, T any] struct {
	mu      sync.RWMutex
	entries map[K][]T
}

func NewScopedCache[K comparable, T any]() *ScopedCache[K, T] {
	return &ScopedCache[K, T]{entries: make(map[K][]T)}
}

// Peek returns the cached slice for key without fetching.
func (c *ScopedCache[K, T]) Peek(key K) ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	out := make([]T, len(items))
	copy(out, items)
	return out, true
}

// Get returns the cached slice for key, calling fetch only on a miss. A
// cached entry is reused even when empty; only Invalidate forces a refetch.
func (c *ScopedCache[K, T]) Get(key K, fetch func() ([]T, error)) ([]T, error) {
	if items, ok := c.Peek(key); ok {
		return items, nil
	}
	items, err := fetch()
	if err != nil {
		return nil, err
	}
	c.Put(key, items)
	return items, nil
}

// Put overwrites the entry for key. Server responses that return the new
// authoritative slice (a membership update, say) land here directly.
func (c *ScopedCache[K, T]) Put(key K, items []T) {
	cp := make([]T, len(items))
	copy(cp, items)
	c.mu.Lock()
	c.entries[key] = cp
	c.mu.Unlock()
}

// Invalidate drops the entry for key.
func (c *ScopedCache[K, T]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll drops every entry.
func (c *ScopedCache[K, T]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[K][]T)
	c.mu.Unlock()
}
