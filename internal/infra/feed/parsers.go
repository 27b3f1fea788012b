package feed

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Parser names accepted in provider configuration. Each upstream has its own
// response contract; the parser turns a raw body into a single price value.
const (
	ParserPrice      = "price"          // {"price": 2412.5}
	ParserSpotArray  = "spot_array"     // [{"price": 2412.5}, ...]
	ParserCoingecko  = "coingecko_gold" // {"pax-gold": {"usd": 2412.5}}
	ParserRatesIRR   = "rates_irr"      // {"rates": {"IRR": 1048300}}
	ParserBrsGold18k = "brs_gold_18k"   // BrsApi array, IR_GOLD_18K symbol
)

type priceBody struct {
	Price float64 `json:"price"`
}

// coingecko keys the response by coin id, so decode the single entry
// without hardcoding which gold token the config queries.
type coingeckoBody map[string]struct {
	USD float64 `json:"usd"`
}

type ratesBody struct {
	Rates map[string]float64 `json:"rates"`
}

// parsePayload extracts the price from body according to the provider's
// declared contract. A missing or non-positive price is an error so the
// chain falls through to the next provider.
func parsePayload(parser string, body []byte) (decimal.Decimal, error) {
	var price float64

	switch parser {
	case ParserPrice:
		var p priceBody
		if err := json.Unmarshal(body, &p); err != nil {
			return decimal.Zero, err
		}
		price = p.Price

	case ParserSpotArray:
		var items []priceBody
		if err := json.Unmarshal(body, &items); err != nil {
			return decimal.Zero, err
		}
		if len(items) == 0 {
			return decimal.Zero, fmt.Errorf("empty spot array")
		}
		price = items[0].Price

	case ParserCoingecko:
		var p coingeckoBody
		if err := json.Unmarshal(body, &p); err != nil {
			return decimal.Zero, err
		}
		for _, entry := range p {
			price = entry.USD
			break
		}

	case ParserRatesIRR:
		var p ratesBody
		if err := json.Unmarshal(body, &p); err != nil {
			return decimal.Zero, err
		}
		price = p.Rates["IRR"]

	case ParserBrsGold18k:
		var items []brsItem
		if err := json.Unmarshal(body, &items); err != nil {
			return decimal.Zero, err
		}
		for _, it := range items {
			if it.Symbol == "IR_GOLD_18K" {
				price = it.Price
				break
			}
		}

	default:
		return decimal.Zero, fmt.Errorf("unknown parser: %s", parser)
	}

	if price <= 0 {
		return decimal.Zero, fmt.Errorf("missing or zero price field")
	}
	return decimal.NewFromFloat(price), nil
}
