package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/infra"

	"github.com/shopspring/decimal"
)

// brsItem is one entry of the BrsApi Gold_Currency response.
type brsItem struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Unit          string  `json:"unit"`
}

// BrsClient fetches the Iranian market snapshot (18k/24k gram gold, coins,
// USD, EUR) from BrsApi. Responses are cached for a short TTL; on upstream
// failure the last snapshot is served stale rather than erroring out.
type BrsClient struct {
	apiURL string
	apiKey string
	ttl    time.Duration
	client *http.Client
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot *domain.MarketSnapshot
	fetched  time.Time
}

// NewBrsClient creates a BrsApi client with the given cache TTL.
func NewBrsClient(apiURL, apiKey string, ttl, timeout time.Duration) *BrsClient {
	return &BrsClient{
		apiURL: apiURL,
		apiKey: apiKey,
		ttl:    ttl,
		client: &http.Client{Timeout: timeout},
		logger: slog.Default().With("feed", "brsapi"),
	}
}

// Snapshot returns the cached market snapshot, refreshing it when the TTL
// has elapsed. The error is non-nil only when no snapshot has ever been
// fetched successfully.
func (c *BrsClient) Snapshot(ctx context.Context) (*domain.MarketSnapshot, bool, error) {
	c.mu.RLock()
	cached := c.snapshot
	fresh := cached != nil && time.Since(c.fetched) < c.ttl
	c.mu.RUnlock()

	if fresh {
		return cached, true, nil
	}

	snap, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("brsapi fetch failed", slog.Any("error", err))
		if cached != nil {
			return cached, true, nil // stale serve
		}
		return nil, false, domain.ErrPriceUnavailable
	}

	c.mu.Lock()
	c.snapshot = snap
	c.fetched = time.Now()
	c.mu.Unlock()

	return snap, false, nil
}

func (c *BrsClient) fetch(ctx context.Context) (*domain.MarketSnapshot, error) {
	u := fmt.Sprintf("%s?key=%s", c.apiURL, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NewUpstreamError("brsapi", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewUpstreamError("brsapi", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var items []brsItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NewUpstreamError("brsapi", fmt.Errorf("empty response"))
	}

	snap := &domain.MarketSnapshot{UpdatedAt: time.Now()}
	for _, it := range items {
		q := &domain.MarketQuote{
			Name:          it.Name,
			Price:         decimal.NewFromFloat(it.Price),
			ChangePercent: decimal.NewFromFloat(it.ChangePercent),
			Unit:          it.Unit,
		}
		switch it.Symbol {
		case "IR_GOLD_18K":
			snap.Gold18k = q
		case "IR_GOLD_24K":
			snap.Gold24k = q
		case "IR_COIN_EMAMI":
			snap.CoinEmami = q
		case "IR_COIN_BAHAR":
			snap.CoinBahar = q
		case "USD":
			snap.USD = q
		case "EUR":
			snap.EUR = q
		}
	}
	return snap, nil
}
