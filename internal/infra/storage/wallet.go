package storage

import (
	"errors"

	"gold_go/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ======================================================================================
// User / Wallet Operations
// ======================================================================================

// CreateUser inserts a new account.
func (s *Storage) CreateUser(user *domain.User) error {
	return s.db.Create(user).Error
}

// CountUsers returns the number of registered accounts.
func (s *Storage) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&domain.User{}).Count(&count).Error
	return count, err
}

// GetUser retrieves an account by id.
func (s *Storage) GetUser(id uint) (*domain.User, error) {
	var user domain.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetBalance returns the current wallet balance for a user.
func (s *Storage) GetBalance(userID uint) (decimal.Decimal, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return user.WalletBalance, nil
}

// CreditWallet unconditionally adds amount to the user's balance.
func (s *Storage) CreditWallet(userID uint, amount decimal.Decimal) error {
	res := s.db.Model(&domain.User{}).
		Where("id = ?", userID).
		UpdateColumn("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DebitWallet subtracts amount only when the balance covers it. The check
// and the write are one conditional UPDATE, so concurrent debits for the
// same user cannot jointly overdraw the wallet against a stale read.
func (s *Storage) DebitWallet(userID uint, amount decimal.Decimal) error {
	res := s.db.Model(&domain.User{}).
		Where("id = ? AND wallet_balance >= ?", userID, amount).
		UpdateColumn("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetUser(userID); err != nil {
			return err
		}
		return domain.ErrInsufficientFunds
	}
	return nil
}
