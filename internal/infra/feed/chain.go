package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/infra"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Chain tries an ordered list of price providers and falls back to a
// hardcoded last-known-good constant when every provider fails. A provider
// failure is never fatal to the caller: degraded quality is reported through
// the source tag, not through an error.
type Chain struct {
	name      string
	providers []infra.ProviderConfig
	fallback  decimal.Decimal
	client    *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewChain creates a provider chain. fallback must be a usable positive
// constant; it is the emergency value of last resort.
func NewChain(name string, providers []infra.ProviderConfig, fallback decimal.Decimal, timeout time.Duration, limiter *rate.Limiter) *Chain {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &Chain{
		name:      name,
		providers: providers,
		fallback:  fallback,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter: limiter,
		logger:  slog.Default().With("feed", name),
	}
}

// Fetch returns the first healthy provider's value together with a source
// tag: primary for the first provider, fallback-N for later ones, emergency
// when the hardcoded constant had to be used.
func (c *Chain) Fetch(ctx context.Context) (decimal.Decimal, string) {
	for i, p := range c.providers {
		value, err := c.fetchOne(ctx, p)
		infra.GlobalMetrics.RecordUpstreamFetch(err != nil)
		if err != nil {
			c.logger.Warn("provider failed, falling through",
				slog.String("provider", p.Name),
				slog.Any("error", domain.NewUpstreamError(p.Name, err)),
			)
			continue
		}
		if i == 0 {
			return value, domain.SourcePrimary
		}
		return value, fmt.Sprintf("%s-%d", domain.SourceFallback, i)
	}

	c.logger.Error("all providers failed, using emergency constant",
		slog.String("value", c.fallback.String()),
	)
	return c.fallback, domain.SourceEmergency
}

func (c *Chain) fetchOne(ctx context.Context, p infra.ProviderConfig) (decimal.Decimal, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return decimal.Zero, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}

	value, err := parsePayload(p.Parser, body)
	if err != nil {
		return decimal.Zero, err
	}
	return value.Mul(p.Scale), nil
}

// Source joins the two independent chains the calculator needs: spot gold in
// USD per troy ounce and the USD to Toman rate. The two fetches do not
// depend on each other and run concurrently.
type Source struct {
	gold  *Chain
	toman *Chain
}

// NewSource wires the gold-spot and exchange-rate chains together.
func NewSource(gold, toman *Chain) *Source {
	return &Source{gold: gold, toman: toman}
}

// Snapshot fetches both values concurrently and reports the worse of the two
// source tags, so one degraded feed marks the whole bundle degraded.
func (s *Source) Snapshot(ctx context.Context) (spot, usdToman decimal.Decimal, source string) {
	var goldSrc, tomanSrc string
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		spot, goldSrc = s.gold.Fetch(ctx)
	}()
	go func() {
		defer wg.Done()
		usdToman, tomanSrc = s.toman.Fetch(ctx)
	}()
	wg.Wait()

	return spot, usdToman, worseSource(goldSrc, tomanSrc)
}

func sourceRank(tag string) int {
	switch {
	case tag == domain.SourcePrimary:
		return 0
	case tag == domain.SourceEmergency:
		return 2
	default:
		return 1
	}
}

func worseSource(a, b string) string {
	if sourceRank(b) > sourceRank(a) {
		return b
	}
	return a
}
