package storage

import (
	"encoding/json"
	"errors"

	"gold_go/internal/domain"

	"gorm.io/gorm"
)

// ======================================================================================
// Transaction Ledger Operations
// ======================================================================================

// InsertTransaction appends a ledger entry.
func (s *Storage) InsertTransaction(tx *domain.Transaction) error {
	return s.db.Create(tx).Error
}

// GetTransaction retrieves a ledger entry by id.
func (s *Storage) GetTransaction(id string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := s.db.First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindTransactionByAuthority looks up the entry for a gateway authority
// token, the idempotency key of payment verification.
func (s *Storage) FindTransactionByAuthority(authority string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := s.db.First(&tx, "authority = ?", authority).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindTransactionByReference looks up a ledger entry by its reference id.
func (s *Storage) FindTransactionByReference(ref string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := s.db.First(&tx, "ref = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// TransitionTransaction moves a pending entry to its terminal status. The
// WHERE clause only matches pending rows, so a second transition attempt
// affects zero rows and the caller can treat the call as a no-op. Returns
// whether this call performed the transition.
func (s *Storage) TransitionTransaction(id string, to domain.TransactionStatus, ref string, metadata map[string]string) (bool, error) {
	updates := map[string]any{"status": to}
	if ref != "" {
		updates["ref"] = ref
	}
	if metadata != nil {
		// Map updates skip gorm's field serializers, so encode the
		// metadata column by hand.
		raw, err := json.Marshal(metadata)
		if err != nil {
			return false, err
		}
		updates["metadata"] = string(raw)
	}

	res := s.db.Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TxStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReopenTransaction moves a completed entry back to pending so a retried
// gateway callback can settle it again. Used when the wallet credit after a
// winning transition could not be applied.
func (s *Storage) ReopenTransaction(id string) error {
	res := s.db.Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TxStatusCompleted).
		Update("status", domain.TxStatusPending)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListTransactions returns the most recent ledger entries for a user.
func (s *Storage) ListTransactions(userID uint, limit int) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}
