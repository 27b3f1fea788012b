package pricing

import (
	"time"

	"gold_go/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Table is the declarative catalog of tradable gold instruments. Loaded
// once at startup and immutable afterwards; quoting is concurrent-safe.
type Table struct {
	instruments []domain.Instrument
	byKey       map[string]domain.Instrument
	fluct       Fluctuator
}

// NewTable validates the instrument definitions and builds the lookup.
func NewTable(instruments []domain.Instrument, fluct Fluctuator) (*Table, error) {
	byKey := make(map[string]domain.Instrument, len(instruments))
	for _, inst := range instruments {
		if err := inst.Validate(); err != nil {
			return nil, err
		}
		byKey[inst.Key] = inst
	}
	return &Table{instruments: instruments, byKey: byKey, fluct: fluct}, nil
}

// QuoteAll computes a quote for every instrument from the bundle. Each
// instrument draws its own fluctuation so they do not move in lockstep.
func (t *Table) QuoteAll(bundle domain.PriceBundle) map[string]domain.InstrumentQuote {
	quotes := make(map[string]domain.InstrumentQuote, len(t.instruments))
	for _, inst := range t.instruments {
		quotes[inst.Key] = t.quote(inst, bundle)
	}
	return quotes
}

// QuoteOne computes the quote for a single instrument key.
func (t *Table) QuoteOne(key string, bundle domain.PriceBundle) (domain.InstrumentQuote, error) {
	inst, ok := t.byKey[key]
	if !ok {
		return domain.InstrumentQuote{}, domain.ErrInstrumentNotFound
	}
	return t.quote(inst, bundle), nil
}

func (t *Table) quote(inst domain.Instrument, bundle domain.PriceBundle) domain.InstrumentQuote {
	var market decimal.Decimal
	source := bundle.Source

	if bundle.IsZero() {
		// Total upstream failure with no fallback constant: hardcoded
		// per-instrument reference price instead of a zero quote.
		market = inst.ReferencePrice
		source = domain.SourceEmergency
	} else {
		switch {
		case inst.WeightGrams.IsPositive():
			market = bundle.Base24k.Mul(inst.WeightGrams).Round(0)
		default:
			market = bundle.Base24k.Mul(inst.KaratRatio).Round(0)
			if inst.Premium.IsPositive() {
				market = market.Mul(inst.Premium).Round(0)
			}
		}
		market = market.Mul(one.Add(t.fluct())).Round(0)
	}

	buy := market.Mul(inst.BuySpread).Round(0)
	sell := market.Mul(inst.SellSpread).Round(0)

	spreadPct := decimal.Zero
	if buy.IsPositive() {
		spreadPct = sell.Sub(buy).Div(buy).Mul(hundred)
	}

	return domain.InstrumentQuote{
		Key:           inst.Key,
		Name:          inst.Name,
		Unit:          inst.Unit,
		MarketPrice:   market,
		BuyPrice:      buy,
		SellPrice:     sell,
		SpreadPercent: spreadPct,
		Source:        source,
		ComputedAt:    time.Now(),
	}
}
