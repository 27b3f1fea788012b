package infra

import (
	"sync/atomic"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	upstreamFetches  atomic.Uint64
	upstreamFailures atomic.Uint64
	cacheHits        atomic.Uint64
	cacheRefreshes   atomic.Uint64
	staleServes      atomic.Uint64
	tradesSettled    atomic.Uint64
	tradesRejected   atomic.Uint64
	paymentsVerified atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordUpstreamFetch records one provider call and whether it failed.
func (m *Metrics) RecordUpstreamFetch(failed bool) {
	m.upstreamFetches.Add(1)
	if failed {
		m.upstreamFailures.Add(1)
	}
}

// RecordCacheHit records a bundle served from cache within its TTL.
func (m *Metrics) RecordCacheHit() { m.cacheHits.Add(1) }

// RecordCacheRefresh records a fresh bundle computation.
func (m *Metrics) RecordCacheRefresh() { m.cacheRefreshes.Add(1) }

// RecordStaleServe records an expired bundle served because recomputation failed.
func (m *Metrics) RecordStaleServe() { m.staleServes.Add(1) }

// RecordTradeSettled records a completed trade.
func (m *Metrics) RecordTradeSettled() { m.tradesSettled.Add(1) }

// RecordTradeRejected records a trade refused by validation or balance check.
func (m *Metrics) RecordTradeRejected() { m.tradesRejected.Add(1) }

// RecordPaymentVerified records a successful gateway verification.
func (m *Metrics) RecordPaymentVerified() { m.paymentsVerified.Add(1) }

// Snapshot returns current counter values for the stats endpoint.
func (m *Metrics) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"upstream_fetches":  m.upstreamFetches.Load(),
		"upstream_failures": m.upstreamFailures.Load(),
		"cache_hits":        m.cacheHits.Load(),
		"cache_refreshes":   m.cacheRefreshes.Load(),
		"stale_serves":      m.staleServes.Load(),
		"trades_settled":    m.tradesSettled.Load(),
		"trades_rejected":   m.tradesRejected.Load(),
		"payments_verified": m.paymentsVerified.Load(),
	}
}
