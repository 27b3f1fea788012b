package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price source tags, carried on every bundle so degraded data is visible
// to callers without turning degradation into an error.
const (
	SourcePrimary   = "primary"
	SourceFallback  = "fallback"
	SourceEmergency = "emergency"
)

// PriceBundle is the computed, ready-to-use pricing snapshot. Bundles are
// immutable: a refresh produces a new bundle, it never mutates the old one.
type PriceBundle struct {
	Base24k         decimal.Decimal `json:"base_24k"`           // Toman per gram, 24 karat
	Base18k         decimal.Decimal `json:"base_18k"`           // Toman per gram, 18 karat
	SpotUSDPerOunce decimal.Decimal `json:"spot_usd_per_ounce"`
	UsdToToman      decimal.Decimal `json:"usd_to_toman"`
	MarketPremium   decimal.Decimal `json:"market_premium"`
	Fluctuation     decimal.Decimal `json:"fluctuation"`        // actually applied, for audit
	ComputedAt      time.Time       `json:"computed_at"`
	Source          string          `json:"source"`
}

// IsZero reports whether the bundle carries no usable price.
func (b PriceBundle) IsZero() bool {
	return b.Base24k.IsZero()
}

// MarketQuote is one symbol of the Iranian market snapshot served by the
// BrsApi feed (18k/24k gram, coins, USD, EUR).
type MarketQuote struct {
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Unit          string          `json:"unit"`
}

// MarketSnapshot aggregates the BrsApi quotes for the market overview page.
type MarketSnapshot struct {
	Gold18k   *MarketQuote `json:"gold_18k,omitempty"`
	Gold24k   *MarketQuote `json:"gold_24k,omitempty"`
	CoinEmami *MarketQuote `json:"coin_emami,omitempty"`
	CoinBahar *MarketQuote `json:"coin_bahar,omitempty"`
	USD       *MarketQuote `json:"usd,omitempty"`
	EUR       *MarketQuote `json:"eur,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}
