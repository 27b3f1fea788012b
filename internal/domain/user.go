package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a storefront account. WalletBalance is in Toman and is mutated
// only through the wallet store's conditional adjustment, together with the
// matching Trade or Transaction record. It must never go negative.
type User struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:255" json:"name"`
	Phone         string          `gorm:"size:32;uniqueIndex" json:"phone"`
	Email         string          `gorm:"size:255" json:"email,omitempty"`
	WalletBalance decimal.Decimal `gorm:"type:numeric" json:"wallet_balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
