package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader produces the value for a missing or stale key
type Loader[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is an in-process TTL cache. Concurrent misses on the same key share a
// single in-flight load; failed loads are not cached.
//
// One instance per document kind is created at process start and passed to
// the consumers that need it.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	group   singleflight.Group
	now     func() time.Time
}

// New creates an empty cache
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Get returns the cached value if it was inserted less than ttl ago
func (c *Cache[V]) Get(key string, ttl time.Duration) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.insertedAt) >= ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, stamped with the current time
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate drops key
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of entries, fresh or stale
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrFetch returns the fresh cached value for key, or runs load and caches
// its result. Concurrent callers share one load, which runs detached from any
// single caller's cancellation; each caller still stops waiting when its own
// ctx is done.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, load Loader[V]) (V, error) {
	var zero V
	if v, ok := c.Get(key, ttl); ok {
		return v, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		// another caller may have filled it while we queued
		if v, ok := c.Get(key, ttl); ok {
			return v, nil
		}
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}
