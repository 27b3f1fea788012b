package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeDirection is the side of a melted-gold trade from the user's view.
type TradeDirection string

const (
	TradeBuy  TradeDirection = "buy"
	TradeSell TradeDirection = "sell"
)

// Valid reports whether the direction is one of the two known sides.
func (d TradeDirection) Valid() bool {
	return d == TradeBuy || d == TradeSell
}

// TradeStatus is the lifecycle state of a trade. Settled trades are created
// already completed; once completed a trade is never mutated.
type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "pending"
	TradeStatusCompleted TradeStatus = "completed"
	TradeStatusCancelled TradeStatus = "cancelled"
)

// Trade is an immutable record of a settled melted-gold trade.
// Total = Grams * UnitPrice, in Toman.
type Trade struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint            `gorm:"index" json:"user_id"`
	Direction TradeDirection  `gorm:"size:8" json:"direction"`
	Grams     decimal.Decimal `gorm:"type:numeric" json:"grams"`
	UnitPrice decimal.Decimal `gorm:"type:numeric" json:"unit_price"`
	Total     decimal.Decimal `gorm:"type:numeric" json:"total"`
	Status    TradeStatus     `gorm:"size:16;index" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
