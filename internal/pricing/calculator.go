package pricing

import (
	"math/rand"
	"time"

	"gold_go/internal/domain"

	"github.com/shopspring/decimal"
)

// gramsPerTroyOunce is the standard precious-metals weight conversion.
var gramsPerTroyOunce = decimal.RequireFromString("31.1035")

var one = decimal.NewFromInt(1)

// karat18Ratio is the 18-karat purity fraction of pure gold.
var karat18Ratio = decimal.RequireFromString("0.75")

// Fluctuator draws the small symmetric tick-movement fraction applied to
// computed prices. Injectable so tests can pin it to zero or a known value.
type Fluctuator func() decimal.Decimal

// NewFluctuator returns a uniform draw from [-band, band].
func NewFluctuator(band decimal.Decimal) Fluctuator {
	return func() decimal.Decimal {
		if band.IsZero() {
			return decimal.Zero
		}
		// rand.Float64() in [0,1) -> [-1,1) via *2-1
		u := decimal.NewFromFloat(rand.Float64()*2 - 1)
		return band.Mul(u)
	}
}

// FixedFluctuation always returns f. Test helper.
func FixedFluctuation(f decimal.Decimal) Fluctuator {
	return func() decimal.Decimal { return f }
}

// Calculator derives the base 24k/18k gram prices in Toman from world spot
// data. Compute is pure given the injected fluctuation source.
type Calculator struct {
	premium  decimal.Decimal
	minPrice decimal.Decimal // 18k clamp band, zero disables
	maxPrice decimal.Decimal
	fluct    Fluctuator
}

// NewCalculator creates a calculator with the market premium multiplier and
// the canonical 18k clamp band guarding against corrupted upstream data.
func NewCalculator(premium, minPrice, maxPrice decimal.Decimal, fluct Fluctuator) *Calculator {
	return &Calculator{
		premium:  premium,
		minPrice: minPrice,
		maxPrice: maxPrice,
		fluct:    fluct,
	}
}

// Compute turns a spot USD/oz price and a USD→Toman rate into a price
// bundle. All Toman values are rounded to whole Toman, half away from zero.
// The caller fills Source from the feed tags.
func (c *Calculator) Compute(spotUsdOz, usdToToman decimal.Decimal) domain.PriceBundle {
	perGramUSD := spotUsdOz.Div(gramsPerTroyOunce)
	base24k := perGramUSD.Mul(usdToToman).Round(0)

	// Local market trades above world spot.
	adjusted24k := base24k.Mul(c.premium).Round(0)

	fluct := c.fluct()
	final24k := adjusted24k.Mul(one.Add(fluct)).Round(0)
	final18k := final24k.Mul(karat18Ratio).Round(0)

	// Clamp the trading reference price; re-derive 24k so the karat ratio
	// stays exact when the clamp fires.
	if clamped, ok := c.clamp18k(final18k); ok {
		final18k = clamped
		final24k = final18k.Div(karat18Ratio).Round(0)
	}

	return domain.PriceBundle{
		Base24k:         final24k,
		Base18k:         final18k,
		SpotUSDPerOunce: spotUsdOz,
		UsdToToman:      usdToToman,
		MarketPremium:   c.premium,
		Fluctuation:     fluct,
		ComputedAt:      time.Now(),
	}
}

func (c *Calculator) clamp18k(price decimal.Decimal) (decimal.Decimal, bool) {
	if c.minPrice.IsPositive() && price.LessThan(c.minPrice) {
		return c.minPrice, true
	}
	if c.maxPrice.IsPositive() && price.GreaterThan(c.maxPrice) {
		return c.maxPrice, true
	}
	return price, false
}
