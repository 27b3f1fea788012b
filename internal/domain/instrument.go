package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Instrument describes one tradable or purchasable gold form. Instruments
// are loaded from configuration at startup and immutable afterwards.
//
// Exactly one pricing mode applies:
//   - WeightGrams > 0: coins and bars, priced as base24k * weight
//   - KaratRatio  > 0: gram gold and jewelry, priced as base24k * ratio,
//     optionally multiplied by a jewelry Premium
type Instrument struct {
	Key         string          `yaml:"key" json:"key"`
	Name        string          `yaml:"name" json:"name"`
	Unit        string          `yaml:"unit" json:"unit"`
	WeightGrams decimal.Decimal `yaml:"weight_grams" json:"weight_grams,omitempty"`
	KaratRatio  decimal.Decimal `yaml:"karat_ratio" json:"karat_ratio,omitempty"`
	Premium     decimal.Decimal `yaml:"premium" json:"premium,omitempty"`

	// BuySpread < 1.0 < SellSpread: the house buys low and sells high.
	BuySpread  decimal.Decimal `yaml:"buy_spread" json:"buy_spread"`
	SellSpread decimal.Decimal `yaml:"sell_spread" json:"sell_spread"`

	// ReferencePrice is the hardcoded last-resort quote used when the
	// base price is zero (total upstream failure).
	ReferencePrice decimal.Decimal `yaml:"reference_price" json:"reference_price"`
}

// Validate checks the instrument definition at load time.
func (i Instrument) Validate() error {
	if i.Key == "" {
		return fmt.Errorf("instrument key is required")
	}
	byWeight := i.WeightGrams.IsPositive()
	byRatio := i.KaratRatio.IsPositive()
	if byWeight == byRatio {
		return fmt.Errorf("instrument %s: exactly one of weight_grams and karat_ratio must be set", i.Key)
	}
	one := decimal.NewFromInt(1)
	if !i.BuySpread.IsPositive() || i.BuySpread.GreaterThan(one) {
		return fmt.Errorf("instrument %s: buy_spread must be in (0, 1]", i.Key)
	}
	if i.SellSpread.LessThan(one) {
		return fmt.Errorf("instrument %s: sell_spread must be >= 1", i.Key)
	}
	if i.BuySpread.GreaterThan(i.SellSpread) {
		return fmt.Errorf("instrument %s: buy_spread exceeds sell_spread", i.Key)
	}
	return nil
}

// InstrumentQuote is derived from an Instrument and a PriceBundle on every
// pricing request. Never persisted.
type InstrumentQuote struct {
	Key           string          `json:"key"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	MarketPrice   decimal.Decimal `json:"market_price"`
	BuyPrice      decimal.Decimal `json:"buy_price"`
	SellPrice     decimal.Decimal `json:"sell_price"`
	SpreadPercent decimal.Decimal `json:"spread_percent"`
	Source        string          `json:"source"`
	ComputedAt    time.Time       `json:"computed_at"`
}
