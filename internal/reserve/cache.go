package reserve

import (
	"context"
	"sync"

	"amm-settlement-lab/internal/chain"
	"amm-settlement-lab/internal/domain"
)

// Cache keeps the most recent snapshot per pool and serves it until it
// is invalidated or ages out. Invalidation comes from pool-change
// notifications; the staleness bound in the underlying provider is the
// backstop for missed notifications.
type Cache struct {
	provider *Provider

	mu    sync.RWMutex
	snaps map[string]domain.ReserveSnapshot
}

// NewCache wraps a provider with per-pool snapshot caching.
func NewCache(provider *Provider) *Cache {
	return &Cache{
		provider: provider,
		snaps:    make(map[string]domain.ReserveSnapshot),
	}
}

// Snapshot returns a cached snapshot when it is still within the
// staleness bound, otherwise fetches a fresh one.
func (c *Cache) Snapshot(ctx context.Context, poolID string) (domain.ReserveSnapshot, error) {
	c.mu.RLock()
	snap, ok := c.snaps[poolID]
	c.mu.RUnlock()
	if ok && snap.AgeAt(c.provider.now()) <= c.provider.maxAge {
		return snap, nil
	}

	snap, err := c.provider.Snapshot(ctx, poolID)
	if err != nil {
		return domain.ReserveSnapshot{}, err
	}

	c.mu.Lock()
	c.snaps[poolID] = snap
	c.mu.Unlock()
	return snap, nil
}

// Invalidate drops the cached snapshot for one pool.
func (c *Cache) Invalidate(poolID string) {
	c.mu.Lock()
	delete(c.snaps, poolID)
	c.mu.Unlock()
}

// Watch consumes pool-change notifications and invalidates the
// affected pools until the channel closes or ctx is cancelled.
// Notifications name pools by on-chain address; unknown addresses are
// ignored. Intended to run in its own goroutine.
func (c *Cache) Watch(ctx context.Context, notes <-chan chain.PoolNotification, onInvalidate func(poolID string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notes:
			if !ok {
				return
			}
			pool, known := c.provider.store.Load().PoolByAddress(n.Pool)
			if !known {
				continue
			}
			c.Invalidate(pool.ID)
			if onInvalidate != nil {
				onInvalidate(pool.ID)
			}
		}
	}
}
