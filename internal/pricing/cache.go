package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/infra"
)

// ComputeFunc produces a fresh price bundle. Wired at bootstrap to the feed
// chains plus the calculator.
type ComputeFunc func(ctx context.Context) (domain.PriceBundle, error)

// Result is a bundle plus cache observability flags: Cached means the
// bundle was served without recomputation, Stale additionally means its TTL
// had expired but recomputation failed (degraded serve).
type Result struct {
	domain.PriceBundle
	Cached bool `json:"cached"`
	Stale  bool `json:"stale"`
}

// Cache is the single process-wide memoization of the last successfully
// computed price bundle. Concurrent cache-miss callers may each recompute
// (thundering herd is tolerated); the final write is last-write-wins with
// monotonically increasing ComputedAt, and no caller ever observes a torn
// bundle.
type Cache struct {
	compute ComputeFunc

	mu     sync.RWMutex
	bundle *domain.PriceBundle
}

// NewCache creates an empty cache around the compute function.
func NewCache(compute ComputeFunc) *Cache {
	return &Cache{compute: compute}
}

// GetOrCompute returns the cached bundle while it is younger than ttl,
// otherwise recomputes. When recomputation fails and any previous bundle
// exists, that bundle is served stale instead of propagating the error;
// domain.ErrPriceUnavailable is returned only when no bundle ever existed.
func (c *Cache) GetOrCompute(ctx context.Context, ttl time.Duration) (Result, error) {
	c.mu.RLock()
	prev := c.bundle
	c.mu.RUnlock()

	if prev != nil && time.Since(prev.ComputedAt) < ttl {
		infra.GlobalMetrics.RecordCacheHit()
		return Result{PriceBundle: *prev, Cached: true}, nil
	}

	fresh, err := c.compute(ctx)
	if err != nil {
		if prev != nil {
			infra.GlobalMetrics.RecordStaleServe()
			return Result{PriceBundle: *prev, Cached: true, Stale: true}, nil
		}
		return Result{}, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}

	c.mu.Lock()
	if c.bundle == nil || fresh.ComputedAt.After(c.bundle.ComputedAt) {
		c.bundle = &fresh
	}
	c.mu.Unlock()

	infra.GlobalMetrics.RecordCacheRefresh()
	return Result{PriceBundle: fresh}, nil
}
