package storage

import (
	"errors"

	"gold_go/internal/domain"

	"gorm.io/gorm"
)

// ======================================================================================
// Product Operations
// ======================================================================================

// UpsertProduct creates or updates a catalog item.
func (s *Storage) UpsertProduct(p *domain.Product) error {
	return s.db.Save(p).Error
}

// GetProduct retrieves a catalog item by id.
func (s *Storage) GetProduct(id uint) (*domain.Product, error) {
	var p domain.Product
	err := s.db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActiveProducts returns the gallery items.
func (s *Storage) ListActiveProducts() ([]domain.Product, error) {
	var products []domain.Product
	err := s.db.Where("is_active = ?", true).Order("id").Find(&products).Error
	return products, err
}
