package server

import (
	"net/http"

	"gold_go/internal/infra"

	"github.com/gin-gonic/gin"
)

// Handlers groups the route handlers the router wires up.
type Handlers struct {
	Prices   *PriceHandler
	Trades   *TradeHandler
	Wallet   *WalletHandler
	Payment  *PaymentHandler
	Products *ProductHandler
	Ticker   *TickerHandler
}

// NewRouter builds the gin engine with all storefront API routes.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.Default()

	api := router.Group("/api")
	{
		prices := api.Group("/prices")
		{
			prices.GET("/gold", h.Prices.GetGoldPrice)
			prices.GET("/gold/types", h.Prices.GetGoldTypes)
			prices.GET("/gold/types/:key", h.Prices.GetGoldType)
			prices.GET("/gold/iranian", h.Prices.GetIranianMarket)
		}

		products := api.Group("/products")
		{
			products.GET("", h.Products.List)
			products.GET("/:id", h.Products.Get)
		}

		trades := api.Group("/trades")
		{
			trades.POST("", h.Trades.Create)
			trades.GET("", h.Trades.List)
		}

		wallet := api.Group("/wallet")
		{
			wallet.GET("", h.Wallet.Get)
			wallet.POST("/deposit", h.Wallet.Deposit)
			wallet.POST("/withdraw", h.Wallet.Withdraw)
		}

		payment := api.Group("/payment")
		{
			payment.POST("/start", h.Payment.Start)
			payment.GET("/verify", h.Payment.Verify)
			payment.GET("/receipt", h.Payment.Receipt)
		}

		api.GET("/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data":    infra.GlobalMetrics.Snapshot(),
			})
		})
	}

	router.GET("/ws/ticker", h.Ticker.Stream)
	router.Static("/images", "images")

	return router
}
