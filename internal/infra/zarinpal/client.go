package zarinpal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ZarinPal v4 endpoints
const (
	BaseURLProduction = "https://payment.zarinpal.com/pg/v4/payment"
	BaseURLSandbox    = "https://sandbox.zarinpal.com/pg/v4/payment"

	GatewayURLProduction = "https://payment.zarinpal.com/pg/StartPay/"
	GatewayURLSandbox    = "https://sandbox.zarinpal.com/pg/StartPay/"
)

// Gateway result codes
const (
	StatusOK              = 100
	StatusAlreadyVerified = 101
)

// Client is the ZarinPal v4 REST client (boundary layer). All amounts are
// in Rial; the storefront's Toman→Rial conversion happens in the payment
// service, never here.
type Client struct {
	merchantID string
	baseURL    string
	gatewayURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a gateway client against production or sandbox.
func NewClient(merchantID string, sandbox bool) *Client {
	baseURL, gatewayURL := BaseURLProduction, GatewayURLProduction
	if sandbox {
		baseURL, gatewayURL = BaseURLSandbox, GatewayURLSandbox
	}
	return NewClientWithBaseURL(merchantID, baseURL, gatewayURL)
}

// NewClientWithBaseURL creates a client against a custom endpoint (tests).
func NewClientWithBaseURL(merchantID, baseURL, gatewayURL string) *Client {
	return &Client{
		merchantID: merchantID,
		baseURL:    baseURL,
		gatewayURL: gatewayURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		logger: slog.Default().With("module", "zarinpal"),
	}
}

// PaymentRequest describes a payment to initiate. Amount is in Rial.
type PaymentRequest struct {
	Amount      int64
	Description string
	CallbackURL string
	Mobile      string
	Email       string
}

// PaymentResponse carries the gateway's answer to a payment request.
type PaymentResponse struct {
	Status    int
	Authority string
	Message   string
}

// VerificationRequest describes a verification call. Amount must equal the
// amount of the original payment request, in Rial.
type VerificationRequest struct {
	Amount    int64
	Authority string
}

// VerificationResponse carries the gateway's verification answer.
type VerificationResponse struct {
	Status  int
	RefID   string
	Message string
}

type gatewayEnvelope struct {
	Data struct {
		Code      int         `json:"code"`
		Authority string      `json:"authority"`
		RefID     json.Number `json:"ref_id"`
		Message   string      `json:"message"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

type gatewayError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreatePaymentRequest asks the gateway for an authority token.
func (c *Client) CreatePaymentRequest(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	payload := map[string]any{
		"merchant_id":  c.merchantID,
		"amount":       req.Amount,
		"description":  req.Description,
		"callback_url": req.CallbackURL,
		"metadata": map[string]string{
			"mobile": req.Mobile,
			"email":  req.Email,
		},
	}

	env, err := c.post(ctx, "/request.json", payload)
	if err != nil {
		return nil, err
	}

	if env.Data.Code == StatusOK {
		return &PaymentResponse{Status: env.Data.Code, Authority: env.Data.Authority}, nil
	}
	return &PaymentResponse{
		Status:  env.Data.Code,
		Message: c.failureMessage(env),
	}, nil
}

// VerifyPayment confirms a payment after the gateway callback. Code 101
// means the payment was already verified; callers treat it as success.
func (c *Client) VerifyPayment(ctx context.Context, req VerificationRequest) (*VerificationResponse, error) {
	payload := map[string]any{
		"merchant_id": c.merchantID,
		"amount":      req.Amount,
		"authority":   req.Authority,
	}

	env, err := c.post(ctx, "/verify.json", payload)
	if err != nil {
		return nil, err
	}

	if env.Data.Code == StatusOK || env.Data.Code == StatusAlreadyVerified {
		return &VerificationResponse{Status: env.Data.Code, RefID: env.Data.RefID.String()}, nil
	}
	return &VerificationResponse{
		Status:  env.Data.Code,
		Message: c.failureMessage(env),
	}, nil
}

// PaymentURL returns the redirect target for an authority token.
func (c *Client) PaymentURL(authority string) string {
	return c.gatewayURL + authority
}

func (c *Client) post(ctx context.Context, path string, payload any) (*gatewayEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env gatewayEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("gateway response malformed: %w", err)
	}

	c.logger.Debug("gateway response",
		slog.String("path", path),
		slog.Int("code", env.Data.Code),
	)
	return &env, nil
}

func (c *Client) failureMessage(env *gatewayEnvelope) string {
	// The errors field is [] on success and an object on failure.
	var ge gatewayError
	if len(env.Errors) > 0 && json.Unmarshal(env.Errors, &ge) == nil && ge.Message != "" {
		return ge.Message
	}
	return ErrorMessage(env.Data.Code)
}

// ErrorMessage maps a gateway result code to its Persian user message.
func ErrorMessage(code int) string {
	messages := map[int]string{
		-1:  "اطلاعات ارسال شده ناقص است",
		-2:  "IP و یا مرچنت کد پذیرنده صحیح نیست",
		-3:  "با توجه به محدودیت های شاپرک امکان پرداخت با رقم درخواست شده میسر نمی باشد",
		-4:  "سطح تایید پذیرنده پایین تر از سطح نقره ای است",
		-11: "درخواست مورد نظر یافت نشد",
		-12: "امکان ویرایش درخواست میسر نمی باشد",
		-21: "هیچ نوع عملیات مالی برای این تراکنش یافت نشد",
		-22: "تراکنش ناموفق می باشد",
		-33: "رقم تراکنش با رقم پرداخت شده مطابقت ندارد",
		-34: "سقف تقسیم تراکنش از لحاظ تعداد یا رقم عبور نموده است",
		-40: "اجازه دسترسی به متد مربوطه وجود ندارد",
		-41: "اطلاعات ارسال شده مربوط به AdditionalData غیر معتبر می باشد",
		-42: "مدت زمان معتبر طول عمر شناسه پرداخت باید بین 30 دقیقه تا 45 روز می باشد",
		-54: "درخواست مورد نظر آرشیو شده است",
		100: "عملیات با موفقیت انجام گردیده است",
		101: "عملیات پرداخت قبلا با موفقیت انجام شده است",
	}
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fmt.Sprintf("خطای نامشخص (کد: %d)", code)
}
