package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/infra/storage"
	"gold_go/internal/pricing"

	"github.com/shopspring/decimal"
)

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	return store
}

func newTestUser(t *testing.T, store *storage.Storage, balance string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:          "tester",
		Phone:         "09120000001",
		WalletBalance: decimal.RequireFromString(balance),
	}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func fixedPriceCache(price18k string) *pricing.Cache {
	return pricing.NewCache(func(ctx context.Context) (domain.PriceBundle, error) {
		p := decimal.RequireFromString(price18k)
		return domain.PriceBundle{
			Base18k:    p,
			Base24k:    p.Div(decimal.RequireFromString("0.75")).Round(0),
			Source:     domain.SourcePrimary,
			ComputedAt: time.Now(),
		}, nil
	})
}

func newTradeService(store *storage.Storage) *TradeService {
	return NewTradeService(store, fixedPriceCache("1000000"), decimal.NewFromInt(1000), time.Minute)
}

func TestTradeService_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("Buy Debits Total", func(t *testing.T) {
		store := newTestStorage(t)
		user := newTestUser(t, store, "10000000")
		svc := newTradeService(store)

		trade, err := svc.Execute(ctx, user.ID, domain.TradeBuy, decimal.RequireFromString("2.5"))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !trade.Total.Equal(decimal.NewFromInt(2500000)) {
			t.Errorf("Expected total 2500000, got %s", trade.Total)
		}
		if trade.Status != domain.TradeStatusCompleted {
			t.Errorf("Settled trade must be completed, got %s", trade.Status)
		}

		balance, _ := store.GetBalance(user.ID)
		if !balance.Equal(decimal.NewFromInt(7500000)) {
			t.Errorf("Expected balance 7500000, got %s", balance)
		}
	})

	t.Run("Sell Credits Total", func(t *testing.T) {
		store := newTestStorage(t)
		user := newTestUser(t, store, "1000000")
		svc := newTradeService(store)

		trade, err := svc.Execute(ctx, user.ID, domain.TradeSell, decimal.NewFromInt(3))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !trade.Total.Equal(decimal.NewFromInt(3000000)) {
			t.Errorf("Expected total 3000000, got %s", trade.Total)
		}

		balance, _ := store.GetBalance(user.ID)
		if !balance.Equal(decimal.NewFromInt(4000000)) {
			t.Errorf("Expected balance 4000000, got %s", balance)
		}
	})

	t.Run("Insufficient Funds Leaves State Untouched", func(t *testing.T) {
		store := newTestStorage(t)
		user := newTestUser(t, store, "1000")
		svc := newTradeService(store)

		_, err := svc.Execute(ctx, user.ID, domain.TradeBuy, decimal.NewFromInt(1))
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
		}

		balance, _ := store.GetBalance(user.ID)
		if !balance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("Balance changed despite rejection: %s", balance)
		}
		trades, _ := store.ListTrades(user.ID, 10)
		if len(trades) != 0 {
			t.Error("Rejected trade must not be recorded")
		}
	})

	t.Run("Quantity Bounds", func(t *testing.T) {
		store := newTestStorage(t)
		user := newTestUser(t, store, "1000000000")
		svc := newTradeService(store)

		for _, grams := range []string{"0", "-1", "1001"} {
			_, err := svc.Execute(ctx, user.ID, domain.TradeBuy, decimal.RequireFromString(grams))
			if !errors.Is(err, domain.ErrInvalidQuantity) {
				t.Errorf("grams=%s: expected ErrInvalidQuantity, got %v", grams, err)
			}
		}
	})

	t.Run("Unknown Direction", func(t *testing.T) {
		store := newTestStorage(t)
		user := newTestUser(t, store, "1000000")
		svc := newTradeService(store)

		if _, err := svc.Execute(ctx, user.ID, "short", decimal.NewFromInt(1)); !errors.Is(err, domain.ErrInvalidDirection) {
			t.Errorf("Expected ErrInvalidDirection, got %v", err)
		}
	})

	t.Run("Unknown User", func(t *testing.T) {
		store := newTestStorage(t)
		svc := newTradeService(store)

		_, err := svc.Execute(ctx, 9999, domain.TradeBuy, decimal.NewFromInt(1))
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("Price Unavailable", func(t *testing.T) {
		store := newTestStorage(t)
		user := newTestUser(t, store, "1000000")
		cache := pricing.NewCache(func(ctx context.Context) (domain.PriceBundle, error) {
			return domain.PriceBundle{}, errors.New("all feeds down")
		})
		svc := NewTradeService(store, cache, decimal.NewFromInt(1000), time.Minute)

		_, err := svc.Execute(ctx, user.ID, domain.TradeBuy, decimal.NewFromInt(1))
		if !errors.Is(err, domain.ErrPriceUnavailable) {
			t.Errorf("Expected ErrPriceUnavailable, got %v", err)
		}
	})
}

func TestTradeService_History(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := newTestUser(t, store, "100000000")
	svc := newTradeService(store)

	for i := 0; i < 3; i++ {
		if _, err := svc.Execute(ctx, user.ID, domain.TradeBuy, decimal.NewFromInt(1)); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	}

	trades, err := svc.History(ctx, user.ID, 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(trades) != 2 {
		t.Errorf("Expected limit 2, got %d", len(trades))
	}
}
