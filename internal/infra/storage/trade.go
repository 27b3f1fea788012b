package storage

import (
	"gold_go/internal/domain"
)

// ======================================================================================
// Trade Operations
// ======================================================================================

// InsertTrade appends an immutable trade record.
func (s *Storage) InsertTrade(trade *domain.Trade) error {
	return s.db.Create(trade).Error
}

// ListTrades returns the most recent trades for a user, newest first.
func (s *Storage) ListTrades(userID uint, limit int) ([]domain.Trade, error) {
	var trades []domain.Trade
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}
