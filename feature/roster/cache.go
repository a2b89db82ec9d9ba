package roster

import (
	"context"
	"strconv"
	"sync"
	"time"

	"attendance-reconciler/feature/roster/models"

	"golang.org/x/sync/singleflight"
)

const defaultRunCacheTTL = 30 * time.Second

type cachedValue struct {
	value any
	built time.Time
}

// RunCache serves run-history reads from memory for a short TTL. Concurrent
// misses for the same key share one database query.
type RunCache struct {
	store *RunStore
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]cachedValue
	sf      singleflight.Group
}

// NewRunCache wraps store. A zero ttl disables caching.
func NewRunCache(store *RunStore, ttl time.Duration) *RunCache {
	return &RunCache{
		store:   store,
		ttl:     ttl,
		entries: make(map[string]cachedValue),
	}
}

// List returns the most recent runs.
func (c *RunCache) List(ctx context.Context, limit int) ([]models.Run, error) {
	v, err := c.load(ctx, "list:"+strconv.Itoa(limit), func(ctx context.Context) (any, error) {
		return c.store.List(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Run), nil
}

// Get returns one run with its roster.
func (c *RunCache) Get(ctx context.Context, id string) (*models.Run, error) {
	v, err := c.load(ctx, "run:"+id, func(ctx context.Context) (any, error) {
		return c.store.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Run), nil
}

// Invalidate drops every cached entry.
func (c *RunCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cachedValue)
	c.mu.Unlock()
}

func (c *RunCache) load(ctx context.Context, key string, build func(context.Context) (any, error)) (any, error) {
	if v, ok := c.fresh(key); ok {
		return v, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		if v, ok := c.fresh(key); ok {
			return v, nil
		}

		v, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[key] = cachedValue{value: v, built: time.Now()}
			c.mu.Unlock()
		}
		return v, nil
	})
	return v, err
}

func (c *RunCache) fresh(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.built) > c.ttl {
		return nil, false
	}
	return e.value, true
}
