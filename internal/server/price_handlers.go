package server

import (
	"net/http"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/infra/feed"
	"gold_go/internal/pricing"

	"github.com/gin-gonic/gin"
)

// PriceHandler serves the pricing endpoints. It never bypasses the cache.
type PriceHandler struct {
	cache        *pricing.Cache
	table        *pricing.Table
	brs          *feed.BrsClient
	unitPriceTTL time.Duration
	quotesTTL    time.Duration
}

// NewPriceHandler creates the pricing handler with its per-endpoint TTLs.
func NewPriceHandler(cache *pricing.Cache, table *pricing.Table, brs *feed.BrsClient, unitPriceTTL, quotesTTL time.Duration) *PriceHandler {
	return &PriceHandler{
		cache:        cache,
		table:        table,
		brs:          brs,
		unitPriceTTL: unitPriceTTL,
		quotesTTL:    quotesTTL,
	}
}

// GetGoldPrice returns the current 18k gram trading price.
func (h *PriceHandler) GetGoldPrice(c *gin.Context) {
	res, err := h.cache.GetOrCompute(c.Request.Context(), h.unitPriceTTL)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "خطا در دریافت قیمت طلا",
		})
		return
	}

	note := "قیمت بر اساس داده‌های بازار جهانی"
	if res.Source == domain.SourceEmergency {
		note = "استفاده از قیمت پیش‌فرض به دلیل خطا در دریافت داده"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"unitPrice": res.Base18k,
			"source":    res.Source,
			"updatedAt": res.ComputedAt,
			"marketInfo": gin.H{
				"gold18k":       res.Base18k,
				"gold24k":       res.Base24k,
				"usdToToman":    res.UsdToToman,
				"spotUsdOz":     res.SpotUSDPerOunce,
				"marketPremium": res.MarketPremium,
				"note":          note,
			},
		},
		"cached":   res.Cached,
		"fallback": res.Stale,
	})
}

// GetGoldTypes returns quotes for every configured instrument. On a total
// pricing outage the table still answers from its hardcoded reference
// prices instead of failing the endpoint.
func (h *PriceHandler) GetGoldTypes(c *gin.Context) {
	var bundle domain.PriceBundle
	cached := false

	res, err := h.cache.GetOrCompute(c.Request.Context(), h.quotesTTL)
	if err == nil {
		bundle = res.PriceBundle
		cached = res.Cached
	}

	quotes := h.table.QuoteAll(bundle)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"basePrice": bundle.Base18k,
			"types":     quotes,
			"globalData": gin.H{
				"goldPriceUSD": bundle.SpotUSDPerOunce,
				"usdToToman":   bundle.UsdToToman,
				"source":       bundle.Source,
			},
			"updatedAt": time.Now(),
		},
		"cached": cached,
	})
}

// GetGoldType returns the quote for a single instrument key.
func (h *PriceHandler) GetGoldType(c *gin.Context) {
	var bundle domain.PriceBundle
	res, err := h.cache.GetOrCompute(c.Request.Context(), h.quotesTTL)
	if err == nil {
		bundle = res.PriceBundle
	}

	quote, err := h.table.QuoteOne(c.Param("key"), bundle)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "نوع طلای درخواستی یافت نشد",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": quote})
}

// GetIranianMarket returns the BrsApi market snapshot.
func (h *PriceHandler) GetIranianMarket(c *gin.Context) {
	snap, cached, err := h.brs.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "خطا در دریافت قیمت‌های طلای ایرانی",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snap,
		"cached":  cached,
	})
}
