package server

import (
	"errors"
	"net/http"

	"gold_go/internal/domain"
	"gold_go/internal/infra/storage"
	"gold_go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PaymentHandler serves the payment gateway flow.
type PaymentHandler struct {
	payments *service.PaymentService
	store    *storage.Storage
}

// NewPaymentHandler creates the payment handler.
func NewPaymentHandler(payments *service.PaymentService, store *storage.Storage) *PaymentHandler {
	return &PaymentHandler{payments: payments, store: store}
}

type startPaymentRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Kind        string  `json:"kind"` // "deposit" or "order", defaults to order
	Description string  `json:"description"`
	Mobile      string  `json:"mobile" binding:"required"`
	Email       string  `json:"email"`
}

// Start initiates a gateway payment and returns the redirect URL.
func (h *PaymentHandler) Start(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req startPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "داده‌های ورودی نامعتبر است",
		})
		return
	}

	kind := domain.TxOrder
	if req.Kind == string(domain.TxDeposit) {
		kind = domain.TxDeposit
	}

	description := req.Description
	if description == "" {
		description = "سفارش طلا"
	}

	result, err := h.payments.Start(c.Request.Context(), service.StartPaymentInput{
		UserID:      &userID,
		Kind:        kind,
		Amount:      decimal.NewFromFloat(req.Amount),
		Description: description,
		Mobile:      req.Mobile,
		Email:       req.Email,
	})
	if err != nil {
		status, message := paymentErrorResponse(err)
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
		"message": "درخواست پرداخت با موفقیت ایجاد شد",
	})
}

// Verify resolves the gateway callback. Retried callbacks are answered from
// the already-completed transaction without a second credit.
func (h *PaymentHandler) Verify(c *gin.Context) {
	authority := c.Query("Authority")
	if authority == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "شناسه پرداخت دریافت نشد",
		})
		return
	}

	result, err := h.payments.Verify(c.Request.Context(), authority)
	if err != nil {
		status, message := paymentErrorResponse(err)
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"refId":           result.RefID,
			"amount":          result.Transaction.Amount,
			"alreadyVerified": result.AlreadyVerified,
		},
		"message": "پرداخت با موفقیت تایید شد",
	})
}

// Receipt looks up a finished payment by its gateway reference id.
func (h *PaymentHandler) Receipt(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "شماره پیگیری دریافت نشد",
		})
		return
	}

	tx, err := h.store.FindTransactionByReference(ref)
	if err != nil {
		status, message := paymentErrorResponse(err)
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tx})
}

func paymentErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "مبلغ نامعتبر است"
	case errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound, "تراکنش یافت نشد"
	case errors.Is(err, domain.ErrGatewayRejected):
		return http.StatusBadGateway, "خطا در درگاه پرداخت"
	default:
		return http.StatusInternalServerError, "خطا در پردازش پرداخت"
	}
}
