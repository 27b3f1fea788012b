package server

import (
	"log/slog"
	"net/http"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	tickerInterval = 3 * time.Second
	writeTimeout   = 5 * time.Second
)

// TickerHandler streams live instrument quotes over a websocket.
type TickerHandler struct {
	cache    *pricing.Cache
	table    *pricing.Table
	priceTTL time.Duration
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewTickerHandler creates the websocket ticker handler.
func NewTickerHandler(cache *pricing.Cache, table *pricing.Table, priceTTL time.Duration, logger *slog.Logger) *TickerHandler {
	return &TickerHandler{
		cache:    cache,
		table:    table,
		priceTTL: priceTTL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

type tickerFrame struct {
	Type      string                            `json:"type"`
	UnitPrice string                            `json:"unitPrice"`
	Source    string                            `json:"source"`
	Quotes    map[string]domain.InstrumentQuote `json:"quotes"`
	Timestamp int64                             `json:"timestamp"`
}

// Stream upgrades the connection and pushes a quote frame on every tick
// until the client goes away.
func (h *TickerHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := c.Request.Context()
	ticker := time.NewTicker(tickerInterval)
	defer ticker.Stop()

	if err := h.push(c, conn); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.push(c, conn); err != nil {
				return
			}
		}
	}
}

func (h *TickerHandler) push(c *gin.Context, conn *websocket.Conn) error {
	result, err := h.cache.GetOrCompute(c.Request.Context(), h.priceTTL)
	if err != nil {
		h.logger.Warn("ticker price refresh failed", "error", err)
		result.PriceBundle = domain.PriceBundle{}
	}

	frame := tickerFrame{
		Type:      "quotes",
		UnitPrice: result.Base18k.String(),
		Source:    result.Source,
		Quotes:    h.table.QuoteAll(result.PriceBundle),
		Timestamp: time.Now().UnixMilli(),
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(frame); err != nil {
		h.logger.Debug("ticker client gone", "error", err)
		return err
	}
	return nil
}
