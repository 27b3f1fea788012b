package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/infra"
	"gold_go/internal/infra/storage"
	"gold_go/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeService settles melted-gold buy/sell trades against wallet balances.
// The trading reference price is the cached 18k gram price.
type TradeService struct {
	store    *storage.Storage
	cache    *pricing.Cache
	maxGrams decimal.Decimal
	priceTTL time.Duration
	logger   *slog.Logger
}

// NewTradeService creates the settlement engine.
func NewTradeService(store *storage.Storage, cache *pricing.Cache, maxGrams decimal.Decimal, priceTTL time.Duration) *TradeService {
	return &TradeService{
		store:    store,
		cache:    cache,
		maxGrams: maxGrams,
		priceTTL: priceTTL,
		logger:   slog.Default().With("module", "trade_service"),
	}
}

// Execute settles one trade for the resolved user. Buys debit the wallet
// through a conditional update that cannot overdraw under concurrency;
// sells credit unconditionally. The trade record and the wallet mutation
// form one settlement: a failed trade insert reverses the mutation.
func (s *TradeService) Execute(ctx context.Context, userID uint, direction domain.TradeDirection, grams decimal.Decimal) (*domain.Trade, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDirection, direction)
	}
	if !grams.IsPositive() || grams.GreaterThan(s.maxGrams) {
		infra.GlobalMetrics.RecordTradeRejected()
		return nil, fmt.Errorf("%w: %s grams (max %s)", domain.ErrInvalidQuantity, grams, s.maxGrams)
	}

	res, err := s.cache.GetOrCompute(ctx, s.priceTTL)
	if err != nil {
		return nil, err
	}

	unitPrice := res.Base18k
	total := unitPrice.Mul(grams).Round(0)

	switch direction {
	case domain.TradeBuy:
		if err := s.store.DebitWallet(userID, total); err != nil {
			infra.GlobalMetrics.RecordTradeRejected()
			return nil, err
		}
	case domain.TradeSell:
		if err := s.store.CreditWallet(userID, total); err != nil {
			infra.GlobalMetrics.RecordTradeRejected()
			return nil, err
		}
	}

	trade := &domain.Trade{
		ID:        uuid.NewString(),
		UserID:    userID,
		Direction: direction,
		Grams:     grams,
		UnitPrice: unitPrice,
		Total:     total,
		Status:    domain.TradeStatusCompleted,
		CreatedAt: time.Now(),
	}

	if err := s.store.InsertTrade(trade); err != nil {
		s.compensate(userID, direction, total, err)
		return nil, fmt.Errorf("trade persistence failed: %w", err)
	}

	infra.GlobalMetrics.RecordTradeSettled()
	s.logger.Info("trade settled",
		slog.String("trade_id", trade.ID),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("direction", string(direction)),
		slog.String("grams", grams.String()),
		slog.String("total", total.String()),
		slog.String("price_source", res.Source),
	)
	return trade, nil
}

// compensate reverses a wallet mutation after the trade record could not be
// written. A compensation failure leaves the ledger and wallet out of sync
// and is logged at error level, distinct from ordinary validation failures.
func (s *TradeService) compensate(userID uint, direction domain.TradeDirection, total decimal.Decimal, cause error) {
	var err error
	if direction == domain.TradeBuy {
		err = s.store.CreditWallet(userID, total)
	} else {
		err = s.store.DebitWallet(userID, total)
	}

	if err != nil {
		s.logger.Error("trade compensation failed, wallet and trade log diverged",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("direction", string(direction)),
			slog.String("total", total.String()),
			slog.Any("cause", cause),
			slog.Any("error", err),
		)
		return
	}

	s.logger.Error("trade persistence failed, wallet mutation reversed",
		slog.Uint64("user_id", uint64(userID)),
		slog.String("direction", string(direction)),
		slog.String("total", total.String()),
		slog.Any("cause", cause),
	)
}

// History returns the user's most recent trades.
func (s *TradeService) History(ctx context.Context, userID uint, limit int) ([]domain.Trade, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListTrades(userID, limit)
}
