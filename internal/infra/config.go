package infra

import (
	"fmt"
	"os"

	"gold_go/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent identifies the storefront to upstream price APIs.
	DefaultUserAgent = "GoldTradingApp/1.0"
)

// ProviderConfig describes one upstream price endpoint. Providers are tried
// in the order they appear; parser selects the response contract.
type ProviderConfig struct {
	Name   string          `yaml:"name"`
	URL    string          `yaml:"url"`
	Parser string          `yaml:"parser"`
	Scale  decimal.Decimal `yaml:"scale"` // multiplier on the parsed value, 1 when omitted
}

// Config holds every externalized setting of the service. Secrets can be
// overridden through environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Port    int    `yaml:"port"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Feeds struct {
		RequestTimeoutSec int              `yaml:"request_timeout_sec"`
		RatePerSec        float64          `yaml:"rate_per_sec"`
		GoldUSD           []ProviderConfig `yaml:"gold_usd"`
		UsdToman          []ProviderConfig `yaml:"usd_toman"`
		FallbackSpotUSD   decimal.Decimal  `yaml:"fallback_spot_usd"`
		FallbackUsdToman  decimal.Decimal  `yaml:"fallback_usd_toman"`
		BrsAPI            struct {
			URL        string `yaml:"url"`
			Key        string `yaml:"key"`
			CacheTTLMS int    `yaml:"cache_ttl_ms"`
		} `yaml:"brsapi"`
	} `yaml:"feeds"`

	Pricing struct {
		MarketPremium   decimal.Decimal `yaml:"market_premium"`
		FluctuationBand decimal.Decimal `yaml:"fluctuation_band"`
		MinPrice18k     decimal.Decimal `yaml:"min_price_18k"`
		MaxPrice18k     decimal.Decimal `yaml:"max_price_18k"`
		UnitPriceTTLMS  int             `yaml:"unit_price_ttl_ms"`
		QuotesTTLMS     int             `yaml:"quotes_ttl_ms"`
	} `yaml:"pricing"`

	Trade struct {
		MaxGrams decimal.Decimal `yaml:"max_grams"`
	} `yaml:"trade"`

	Instruments []domain.Instrument `yaml:"instruments"`

	ZarinPal struct {
		MerchantID  string `yaml:"merchant_id"`
		Sandbox     bool   `yaml:"sandbox"`
		CallbackURL string `yaml:"callback_url"`
	} `yaml:"zarinpal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Feeds.RequestTimeoutSec <= 0 {
		c.Feeds.RequestTimeoutSec = 5
	}
	if c.Feeds.RatePerSec <= 0 {
		c.Feeds.RatePerSec = 2
	}
	if c.Pricing.UnitPriceTTLMS <= 0 {
		c.Pricing.UnitPriceTTLMS = 30_000
	}
	if c.Pricing.QuotesTTLMS <= 0 {
		c.Pricing.QuotesTTLMS = 5_000
	}
	if c.Pricing.MarketPremium.IsZero() {
		c.Pricing.MarketPremium = decimal.NewFromFloat(1.08)
	}
	if c.Trade.MaxGrams.IsZero() {
		c.Trade.MaxGrams = decimal.NewFromInt(1000)
	}
	for i := range c.Feeds.GoldUSD {
		if c.Feeds.GoldUSD[i].Scale.IsZero() {
			c.Feeds.GoldUSD[i].Scale = decimal.NewFromInt(1)
		}
	}
	for i := range c.Feeds.UsdToman {
		if c.Feeds.UsdToman[i].Scale.IsZero() {
			c.Feeds.UsdToman[i].Scale = decimal.NewFromInt(1)
		}
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Feeds.FallbackSpotUSD.IsZero() || c.Feeds.FallbackUsdToman.IsZero() {
		return fmt.Errorf("fallback spot price and rate are required")
	}
	if c.Pricing.FluctuationBand.IsNegative() {
		return fmt.Errorf("fluctuation band must not be negative")
	}
	if c.Pricing.MaxPrice18k.IsPositive() && c.Pricing.MinPrice18k.GreaterThan(c.Pricing.MaxPrice18k) {
		return fmt.Errorf("price clamp band is inverted")
	}
	if !c.Trade.MaxGrams.IsPositive() {
		return fmt.Errorf("trade max_grams must be positive")
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	seen := make(map[string]bool, len(c.Instruments))
	for _, inst := range c.Instruments {
		if err := inst.Validate(); err != nil {
			return err
		}
		if seen[inst.Key] {
			return fmt.Errorf("duplicate instrument key: %s", inst.Key)
		}
		seen[inst.Key] = true
	}
	return nil
}

// overrideWithEnv replaces secrets with environment values when present.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("GOLD_BRSAPI_KEY"); key != "" {
		cfg.Feeds.BrsAPI.Key = key
	}
	if id := os.Getenv("GOLD_ZARINPAL_MERCHANT_ID"); id != "" {
		cfg.ZarinPal.MerchantID = id
	}
	if url := os.Getenv("GOLD_BASE_URL"); url != "" {
		cfg.Server.BaseURL = url
	}
	if path := os.Getenv("GOLD_DB_PATH"); path != "" {
		cfg.Database.Path = path
	}
}
