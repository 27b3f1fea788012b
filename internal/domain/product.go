package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item for the storefront gallery. Price is in Toman.
// ImagePath is filled by the image cache after the remote image has been
// downloaded and thumbnailed.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255" json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric" json:"price"`
	ImageURL    string          `gorm:"size:512" json:"image_url,omitempty"`
	ImagePath   string          `gorm:"size:512" json:"image_path,omitempty"`
	IsActive    bool            `gorm:"index" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
