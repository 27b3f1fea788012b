package server

import (
	"errors"
	"net/http"
	"strconv"

	"gold_go/internal/domain"
	"gold_go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TradeHandler serves trade execution and history.
type TradeHandler struct {
	trades *service.TradeService
}

// NewTradeHandler creates the trade handler.
func NewTradeHandler(trades *service.TradeService) *TradeHandler {
	return &TradeHandler{trades: trades}
}

type createTradeRequest struct {
	Type  string  `json:"type" binding:"required,oneof=buy sell"`
	Grams float64 `json:"grams" binding:"required,gt=0"`
}

// Create executes one buy/sell trade for the authenticated user.
func (h *TradeHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "داده‌های ورودی نامعتبر است",
		})
		return
	}

	trade, err := h.trades.Execute(c.Request.Context(), userID, domain.TradeDirection(req.Type), decimal.NewFromFloat(req.Grams))
	if err != nil {
		status, message := tradeErrorResponse(err)
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	message := "معامله خرید با موفقیت انجام شد"
	if trade.Direction == domain.TradeSell {
		message = "معامله فروش با موفقیت انجام شد"
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    trade,
		"message": message,
	})
}

// List returns the user's recent trades.
func (h *TradeHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	trades, err := h.trades.History(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "خطا در دریافت معاملات",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": trades})
}

func tradeErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, "مقدار گرم نامعتبر است"
	case errors.Is(err, domain.ErrInvalidDirection):
		return http.StatusBadRequest, "نوع معامله نامعتبر است"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, "موجودی کیف پول کافی نیست"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "کاربر یافت نشد"
	case errors.Is(err, domain.ErrPriceUnavailable):
		return http.StatusServiceUnavailable, "خطا در دریافت قیمت طلا"
	default:
		return http.StatusInternalServerError, "خطا در ایجاد معامله"
	}
}

// currentUserID resolves the authenticated user. Authentication itself is
// out of scope here; the resolved id arrives on the X-User-ID header.
func currentUserID(c *gin.Context) (uint, bool) {
	raw := c.GetHeader("X-User-ID")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "کاربر یافت نشد",
		})
		return 0, false
	}
	return uint(id), true
}
