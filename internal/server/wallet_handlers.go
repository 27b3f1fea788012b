package server

import (
	"errors"
	"net/http"

	"gold_go/internal/domain"
	"gold_go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WalletHandler serves the wallet endpoints.
type WalletHandler struct {
	wallet *service.WalletService
}

// NewWalletHandler creates the wallet handler.
func NewWalletHandler(wallet *service.WalletService) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

type amountRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// Get returns the balance and recent ledger entries.
func (h *WalletHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := h.wallet.Summary(c.Request.Context(), userID)
	if err != nil {
		status, message := walletErrorResponse(err, "خطا در دریافت اطلاعات کیف پول")
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

// Deposit credits the wallet.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "داده‌های ورودی نامعتبر است",
		})
		return
	}

	balance, err := h.wallet.Deposit(c.Request.Context(), userID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		status, message := walletErrorResponse(err, "خطا در واریز مبلغ")
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "مبلغ با موفقیت به کیف پول اضافه شد",
		"data":    gin.H{"newBalance": balance},
	})
}

// Withdraw debits the wallet when the balance covers the amount.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "داده‌های ورودی نامعتبر است",
		})
		return
	}

	balance, err := h.wallet.Withdraw(c.Request.Context(), userID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		status, message := walletErrorResponse(err, "خطا در برداشت مبلغ")
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "مبلغ با موفقیت از کیف پول برداشت شد",
		"data":    gin.H{"newBalance": balance},
	})
}

func walletErrorResponse(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "مبلغ نامعتبر است"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, "موجودی کیف پول کافی نیست"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "کاربر یافت نشد"
	default:
		return http.StatusInternalServerError, fallback
	}
}
