package pricing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gold_go/internal/domain"

	"github.com/shopspring/decimal"
)

func testBundle(price int64) domain.PriceBundle {
	p := decimal.NewFromInt(price)
	return domain.PriceBundle{
		Base24k:    p,
		Base18k:    p.Mul(d("0.75")).Round(0),
		Source:     domain.SourcePrimary,
		ComputedAt: time.Now(),
	}
}

func TestCache_GetOrCompute(t *testing.T) {
	ctx := context.Background()

	t.Run("Fresh Hit Skips Recompute", func(t *testing.T) {
		computes := 0
		cache := NewCache(func(ctx context.Context) (domain.PriceBundle, error) {
			computes++
			return testBundle(1000000), nil
		})

		first, err := cache.GetOrCompute(ctx, time.Minute)
		if err != nil {
			t.Fatalf("First call failed: %v", err)
		}
		if first.Cached {
			t.Error("First call must be a miss")
		}

		second, err := cache.GetOrCompute(ctx, time.Minute)
		if err != nil {
			t.Fatalf("Second call failed: %v", err)
		}
		if !second.Cached || second.Stale {
			t.Error("Second call within TTL must be a fresh hit")
		}
		if !second.ComputedAt.Equal(first.ComputedAt) {
			t.Error("Cached bundle must be the same computation")
		}
		if computes != 1 {
			t.Errorf("Expected 1 compute, got %d", computes)
		}
	})

	t.Run("Expired TTL Recomputes", func(t *testing.T) {
		computes := 0
		cache := NewCache(func(ctx context.Context) (domain.PriceBundle, error) {
			computes++
			return testBundle(1000000), nil
		})

		cache.GetOrCompute(ctx, 0)
		cache.GetOrCompute(ctx, 0)
		if computes != 2 {
			t.Errorf("Zero TTL must recompute every call, got %d computes", computes)
		}
	})

	t.Run("Stale Serve On Refresh Failure", func(t *testing.T) {
		fail := false
		cache := NewCache(func(ctx context.Context) (domain.PriceBundle, error) {
			if fail {
				return domain.PriceBundle{}, fmt.Errorf("upstream down")
			}
			return testBundle(1000000), nil
		})

		first, err := cache.GetOrCompute(ctx, 0)
		if err != nil {
			t.Fatalf("Seed call failed: %v", err)
		}

		fail = true
		res, err := cache.GetOrCompute(ctx, 0)
		if err != nil {
			t.Fatalf("Stale serve must not error: %v", err)
		}
		if !res.Cached || !res.Stale {
			t.Errorf("Expected stale serve flags, got cached=%v stale=%v", res.Cached, res.Stale)
		}
		if !res.Base24k.Equal(first.Base24k) {
			t.Error("Stale serve must return the last good bundle")
		}
	})

	t.Run("No Bundle Ever", func(t *testing.T) {
		cache := NewCache(func(ctx context.Context) (domain.PriceBundle, error) {
			return domain.PriceBundle{}, fmt.Errorf("upstream down")
		})

		_, err := cache.GetOrCompute(ctx, time.Minute)
		if !errors.Is(err, domain.ErrPriceUnavailable) {
			t.Errorf("Expected ErrPriceUnavailable, got %v", err)
		}
	})
}
