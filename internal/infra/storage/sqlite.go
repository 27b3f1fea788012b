package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gold_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage wraps the SQLite database behind the wallet, trade, ledger and
// product operations. All balance mutations go through the conditional
// updates in wallet.go; nothing else touches wallet_balance.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at path and migrates
// the schema.
func NewStorage(path string) (*Storage, error) {
	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Pure Go SQLite
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Trade{},
		&domain.Transaction{},
		&domain.Product{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// DB exposes the underlying handle for transactional composition.
func (s *Storage) DB() *gorm.DB {
	return s.db
}
