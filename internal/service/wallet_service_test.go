package service

import (
	"context"
	"errors"
	"testing"

	"gold_go/internal/domain"

	"github.com/shopspring/decimal"
)

func TestWalletService_DepositWithdraw(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := newTestUser(t, store, "0")
	svc := NewWalletService(store)

	balance, err := svc.Deposit(ctx, user.ID, decimal.NewFromInt(2_000_000))
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(2_000_000)) {
		t.Errorf("Expected 2000000, got %s", balance)
	}

	balance, err = svc.Withdraw(ctx, user.ID, decimal.NewFromInt(500_000))
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(1_500_000)) {
		t.Errorf("Expected 1500000, got %s", balance)
	}

	// Both operations leave a completed ledger entry.
	txs, err := store.ListTransactions(user.ID, 10)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("Expected 2 ledger entries, got %d", len(txs))
	}
	kinds := map[domain.TransactionKind]bool{}
	for _, tx := range txs {
		if tx.Status != domain.TxStatusCompleted {
			t.Errorf("Direct wallet entries must be completed, got %s", tx.Status)
		}
		kinds[tx.Kind] = true
	}
	if !kinds[domain.TxDeposit] || !kinds[domain.TxWithdraw] {
		t.Errorf("Missing ledger kinds: %v", kinds)
	}
}

func TestWalletService_Validation(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := newTestUser(t, store, "1000")
	svc := NewWalletService(store)

	t.Run("Non Positive Amounts", func(t *testing.T) {
		if _, err := svc.Deposit(ctx, user.ID, decimal.Zero); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
		if _, err := svc.Withdraw(ctx, user.ID, decimal.NewFromInt(-5)); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("Overdraw Rejected", func(t *testing.T) {
		_, err := svc.Withdraw(ctx, user.ID, decimal.NewFromInt(2000))
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
		}
		balance, _ := store.GetBalance(user.ID)
		if !balance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("Rejected withdraw changed the balance: %s", balance)
		}
		txs, _ := store.ListTransactions(user.ID, 10)
		if len(txs) != 0 {
			t.Error("Rejected withdraw must not be recorded")
		}
	})
}

func TestWalletService_Summary(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	user := newTestUser(t, store, "0")
	svc := NewWalletService(store)

	if _, err := svc.Deposit(ctx, user.ID, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	summary, err := svc.Summary(ctx, user.ID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !summary.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected balance 100, got %s", summary.Balance)
	}
	if len(summary.Transactions) != 1 {
		t.Errorf("Expected 1 ledger entry, got %d", len(summary.Transactions))
	}
}
