package domain

import "errors"

// UpstreamError wraps a single price provider failure. The provider chain
// recovers from these locally by falling through to the next provider; they
// are logged but never surfaced to callers.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return "upstream " + e.Provider + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError wraps err with the provider that produced it.
func NewUpstreamError(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Err: err}
}

var (
	// ErrPriceUnavailable is returned when every provider failed and no
	// cached bundle exists to degrade to.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrInsufficientFunds is returned when a buy or withdrawal exceeds the
	// wallet balance. No mutation occurs; the user can deposit and retry.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// ErrInvalidQuantity is returned for grams outside (0, max] before any
	// pricing lookup happens.
	ErrInvalidQuantity = errors.New("invalid trade quantity")

	// ErrInvalidDirection is returned for a trade direction other than buy
	// or sell.
	ErrInvalidDirection = errors.New("invalid trade direction")

	// ErrInvalidAmount is returned for non-positive deposit or withdrawal
	// amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUserNotFound is returned when the resolved user id has no account.
	ErrUserNotFound = errors.New("user not found")

	// ErrInstrumentNotFound is returned for an unknown instrument key.
	ErrInstrumentNotFound = errors.New("instrument not found")

	// ErrTransactionNotFound is returned when a gateway callback references
	// an unknown authority token.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrGatewayRejected is returned when the payment gateway refuses a
	// request or verification.
	ErrGatewayRejected = errors.New("payment gateway rejected request")
)
