package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/infra/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletSummary is the wallet page payload: current balance plus recent
// ledger entries.
type WalletSummary struct {
	Balance      decimal.Decimal      `json:"balance"`
	Transactions []domain.Transaction `json:"transactions"`
}

// WalletService handles direct wallet operations. Every balance change is
// paired with a completed ledger entry.
type WalletService struct {
	store  *storage.Storage
	logger *slog.Logger
}

// NewWalletService creates the wallet service.
func NewWalletService(store *storage.Storage) *WalletService {
	return &WalletService{
		store:  store,
		logger: slog.Default().With("module", "wallet_service"),
	}
}

// Deposit credits the wallet and records the ledger entry.
func (s *WalletService) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	if err := s.store.CreditWallet(userID, amount); err != nil {
		return decimal.Zero, err
	}

	tx := &domain.Transaction{
		ID:     uuid.NewString(),
		UserID: &userID,
		Kind:   domain.TxDeposit,
		Amount: amount,
		Ref:    fmt.Sprintf("DEP-%d", time.Now().UnixMilli()),
		Status: domain.TxStatusCompleted,
	}
	if err := s.store.InsertTransaction(tx); err != nil {
		if rerr := s.store.DebitWallet(userID, amount); rerr != nil {
			s.logger.Error("deposit compensation failed",
				slog.Uint64("user_id", uint64(userID)),
				slog.Any("cause", err),
				slog.Any("error", rerr),
			)
		}
		return decimal.Zero, fmt.Errorf("deposit persistence failed: %w", err)
	}

	return s.store.GetBalance(userID)
}

// Withdraw debits the wallet when the balance covers the amount and records
// the ledger entry.
func (s *WalletService) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	if err := s.store.DebitWallet(userID, amount); err != nil {
		return decimal.Zero, err
	}

	tx := &domain.Transaction{
		ID:     uuid.NewString(),
		UserID: &userID,
		Kind:   domain.TxWithdraw,
		Amount: amount,
		Ref:    fmt.Sprintf("WTH-%d", time.Now().UnixMilli()),
		Status: domain.TxStatusCompleted,
	}
	if err := s.store.InsertTransaction(tx); err != nil {
		if rerr := s.store.CreditWallet(userID, amount); rerr != nil {
			s.logger.Error("withdraw compensation failed",
				slog.Uint64("user_id", uint64(userID)),
				slog.Any("cause", err),
				slog.Any("error", rerr),
			)
		}
		return decimal.Zero, fmt.Errorf("withdraw persistence failed: %w", err)
	}

	return s.store.GetBalance(userID)
}

// Summary returns the balance and the most recent ledger entries.
func (s *WalletService) Summary(ctx context.Context, userID uint) (*WalletSummary, error) {
	balance, err := s.store.GetBalance(userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(userID, 50)
	if err != nil {
		return nil, err
	}
	return &WalletSummary{Balance: balance, Transactions: txs}, nil
}
