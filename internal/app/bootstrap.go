package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/infra"
	"gold_go/internal/infra/feed"
	"gold_go/internal/infra/storage"
	"gold_go/internal/infra/zarinpal"
	"gold_go/internal/pricing"
	"gold_go/internal/server"
	"gold_go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Cache   *pricing.Cache
	Table   *pricing.Table
	Images  *infra.ImageCache
	Router  *gin.Engine
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, DB, feeds, routes)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Gold Go...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Database.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("path", cfg.Database.Path))

	if err := b.seedDemoData(); err != nil {
		return err
	}

	// 4. Price feeds and calculator
	feedTimeout := time.Duration(cfg.Feeds.RequestTimeoutSec) * time.Second
	limiter := rate.NewLimiter(rate.Limit(cfg.Feeds.RatePerSec), 1)
	goldChain := feed.NewChain("gold_usd", cfg.Feeds.GoldUSD, cfg.Feeds.FallbackSpotUSD, feedTimeout, limiter)
	tomanChain := feed.NewChain("usd_toman", cfg.Feeds.UsdToman, cfg.Feeds.FallbackUsdToman, feedTimeout, limiter)
	source := feed.NewSource(goldChain, tomanChain)

	fluct := pricing.NewFluctuator(cfg.Pricing.FluctuationBand)
	calc := pricing.NewCalculator(cfg.Pricing.MarketPremium, cfg.Pricing.MinPrice18k, cfg.Pricing.MaxPrice18k, fluct)

	b.Cache = pricing.NewCache(func(ctx context.Context) (domain.PriceBundle, error) {
		spot, usdToman, src := source.Snapshot(ctx)
		bundle := calc.Compute(spot, usdToman)
		bundle.Source = src
		return bundle, nil
	})

	table, err := pricing.NewTable(cfg.Instruments, fluct)
	if err != nil {
		return err
	}
	b.Table = table
	slog.Info("✅ Pricing ready", slog.Int("instruments", len(cfg.Instruments)))

	// 5. Image cache for the product gallery
	images, err := infra.NewImageCache("images")
	if err != nil {
		return err
	}
	b.Images = images

	// 6. Services and routes
	unitPriceTTL := time.Duration(cfg.Pricing.UnitPriceTTLMS) * time.Millisecond
	quotesTTL := time.Duration(cfg.Pricing.QuotesTTLMS) * time.Millisecond
	brs := feed.NewBrsClient(
		cfg.Feeds.BrsAPI.URL,
		cfg.Feeds.BrsAPI.Key,
		time.Duration(cfg.Feeds.BrsAPI.CacheTTLMS)*time.Millisecond,
		feedTimeout,
	)

	gateway := zarinpal.NewClient(cfg.ZarinPal.MerchantID, cfg.ZarinPal.Sandbox)
	callbackURL := cfg.ZarinPal.CallbackURL
	if callbackURL == "" {
		callbackURL = cfg.Server.BaseURL + "/api/payment/verify"
	}

	trades := service.NewTradeService(store, b.Cache, cfg.Trade.MaxGrams, unitPriceTTL)
	wallet := service.NewWalletService(store)
	payments := service.NewPaymentService(store, gateway, callbackURL)

	b.Router = server.NewRouter(&server.Handlers{
		Prices:   server.NewPriceHandler(b.Cache, b.Table, brs, unitPriceTTL, quotesTTL),
		Trades:   server.NewTradeHandler(trades),
		Wallet:   server.NewWalletHandler(wallet),
		Payment:  server.NewPaymentHandler(payments, store),
		Products: server.NewProductHandler(store),
		Ticker:   server.NewTickerHandler(b.Cache, b.Table, quotesTTL, logger),
	})
	slog.Info("✅ Routes registered")

	return nil
}

// seedDemoData creates a starter account and gallery items on first run so
// the storefront is usable before any registration flow exists.
func (b *Bootstrap) seedDemoData() error {
	count, err := b.Storage.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	user := &domain.User{
		Name:          "کاربر مهمان",
		Phone:         "09120000000",
		WalletBalance: decimal.Zero,
	}
	if err := b.Storage.CreateUser(user); err != nil {
		return err
	}
	slog.Info("✅ Seeded demo user", slog.Any("id", user.ID))

	products := []domain.Product{
		{
			Name:        "گردنبند طلا ۱۸ عیار",
			Description: "گردنبند ظریف با زنجیر ونیزی",
			Price:       decimal.NewFromInt(12_500_000),
			ImageURL:    "https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f",
			IsActive:    true,
		},
		{
			Name:        "دستبند طلا ۱۸ عیار",
			Description: "دستبند کارتیه کلاسیک",
			Price:       decimal.NewFromInt(18_900_000),
			ImageURL:    "https://images.unsplash.com/photo-1611652022419-a9419f74343d",
			IsActive:    true,
		},
	}
	for i := range products {
		if err := b.Storage.UpsertProduct(&products[i]); err != nil {
			return err
		}
	}
	return nil
}

// SyncProductImages downloads missing gallery thumbnails in the background.
func (b *Bootstrap) SyncProductImages(ctx context.Context) {
	products, err := b.Storage.ListActiveProducts()
	if err != nil {
		slog.Error("Failed to list products for image sync", slog.Any("error", err))
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for i := range products {
		p := products[i]
		if p.ImageURL == "" || p.ImagePath != "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			path, err := b.Images.Fetch(p.ID, p.ImageURL)
			if err != nil {
				slog.Warn("Failed to fetch product image", slog.Any("id", p.ID), slog.Any("error", err))
				return
			}
			p.ImagePath = path
			if err := b.Storage.UpsertProduct(&p); err != nil {
				slog.Error("Failed to store image path", slog.Any("id", p.ID), slog.Any("error", err))
			}
		}()
	}

	wg.Wait()
	slog.Info("✨ Product image sync completed")
}
