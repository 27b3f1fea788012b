package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gold_go/internal/domain"
	"gold_go/internal/infra"
	"gold_go/internal/infra/storage"
	"gold_go/internal/infra/zarinpal"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The gateway charges in Rial while the storefront displays Toman. This
// factor is a hard external contract and is applied on both the payment
// request and its verification.
var rialPerToman = decimal.NewFromInt(10)

// StartPaymentInput describes a payment to initiate. Amount is in Toman.
type StartPaymentInput struct {
	UserID      *uint
	Kind        domain.TransactionKind // TxDeposit for wallet top-ups, TxOrder for checkout
	Amount      decimal.Decimal
	Description string
	Mobile      string
	Email       string
}

// StartPaymentResult carries the redirect target and the pending ledger id.
type StartPaymentResult struct {
	PaymentURL    string          `json:"payment_url"`
	Authority     string          `json:"authority"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	AmountRial    int64           `json:"amount_rial"`
}

// VerifyResult reports a verification outcome. AlreadyVerified means a
// retried callback hit an already-completed transaction and nothing was
// credited again.
type VerifyResult struct {
	Transaction     *domain.Transaction `json:"transaction"`
	RefID           string              `json:"ref_id"`
	AlreadyVerified bool                `json:"already_verified"`
}

// PaymentService drives the ZarinPal flow: pending ledger entry on start,
// idempotent completion keyed by the gateway authority token on callback.
type PaymentService struct {
	store       *storage.Storage
	gateway     *zarinpal.Client
	callbackURL string
	logger      *slog.Logger
}

// NewPaymentService creates the payment service.
func NewPaymentService(store *storage.Storage, gateway *zarinpal.Client, callbackURL string) *PaymentService {
	return &PaymentService{
		store:       store,
		gateway:     gateway,
		callbackURL: callbackURL,
		logger:      slog.Default().With("module", "payment_service"),
	}
}

// Start asks the gateway for an authority token and records the pending
// transaction under it.
func (s *PaymentService) Start(ctx context.Context, in StartPaymentInput) (*StartPaymentResult, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if in.Kind == "" {
		in.Kind = domain.TxOrder
	}

	amountRial := in.Amount.Mul(rialPerToman).IntPart()

	resp, err := s.gateway.CreatePaymentRequest(ctx, zarinpal.PaymentRequest{
		Amount:      amountRial,
		Description: in.Description,
		CallbackURL: s.callbackURL,
		Mobile:      in.Mobile,
		Email:       in.Email,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status != zarinpal.StatusOK || resp.Authority == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrGatewayRejected, resp.Message)
	}

	tx := &domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Kind:        in.Kind,
		Amount:      in.Amount, // Toman, for display
		Ref:         resp.Authority,
		Authority:   resp.Authority,
		Description: in.Description,
		Status:      domain.TxStatusPending,
		Metadata: map[string]string{
			"amount_toman": in.Amount.String(),
			"amount_rial":  strconv.FormatInt(amountRial, 10),
		},
	}
	if err := s.store.InsertTransaction(tx); err != nil {
		return nil, fmt.Errorf("payment persistence failed: %w", err)
	}

	s.logger.Info("payment started",
		slog.String("transaction_id", tx.ID),
		slog.String("authority", resp.Authority),
		slog.String("amount_toman", in.Amount.String()),
	)

	return &StartPaymentResult{
		PaymentURL:    s.gateway.PaymentURL(resp.Authority),
		Authority:     resp.Authority,
		TransactionID: tx.ID,
		Amount:        in.Amount,
		AmountRial:    amountRial,
	}, nil
}

// Verify resolves a gateway callback. The transition pending→completed
// happens at most once per authority token: a repeated callback returns the
// prior result without crediting the wallet a second time.
func (s *PaymentService) Verify(ctx context.Context, authority string) (*VerifyResult, error) {
	tx, err := s.store.FindTransactionByAuthority(authority)
	if err != nil {
		return nil, err
	}

	if tx.Status == domain.TxStatusCompleted {
		return &VerifyResult{Transaction: tx, RefID: tx.Metadata["ref_id"], AlreadyVerified: true}, nil
	}
	if tx.Status == domain.TxStatusFailed {
		return &VerifyResult{Transaction: tx}, fmt.Errorf("%w: transaction already failed", domain.ErrGatewayRejected)
	}

	amountRial := tx.Amount.Mul(rialPerToman).IntPart()
	if raw, ok := tx.Metadata["amount_rial"]; ok {
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			amountRial = v
		}
	}

	resp, err := s.gateway.VerifyPayment(ctx, zarinpal.VerificationRequest{
		Amount:    amountRial,
		Authority: authority,
	})
	if err != nil {
		return nil, err
	}

	if resp.Status != zarinpal.StatusOK && resp.Status != zarinpal.StatusAlreadyVerified {
		meta := cloneMeta(tx.Metadata)
		meta["failure_reason"] = resp.Message
		meta["verification_status"] = strconv.Itoa(resp.Status)
		if _, terr := s.store.TransitionTransaction(tx.ID, domain.TxStatusFailed, "", meta); terr != nil {
			return nil, terr
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrGatewayRejected, resp.Message)
	}

	meta := cloneMeta(tx.Metadata)
	meta["ref_id"] = resp.RefID
	meta["verification_status"] = strconv.Itoa(resp.Status)
	meta["verified_at"] = time.Now().Format(time.RFC3339)

	changed, err := s.store.TransitionTransaction(tx.ID, domain.TxStatusCompleted, resp.RefID, meta)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Lost the race against a concurrent callback; the winner credited.
		fresh, ferr := s.store.GetTransaction(tx.ID)
		if ferr != nil {
			return nil, ferr
		}
		return &VerifyResult{Transaction: fresh, RefID: fresh.Metadata["ref_id"], AlreadyVerified: true}, nil
	}

	// Wallet top-ups credit the balance exactly once, on the winning
	// transition.
	if tx.Kind == domain.TxDeposit && tx.UserID != nil {
		if cerr := s.store.CreditWallet(*tx.UserID, tx.Amount); cerr != nil {
			// Reopen the entry so a retried callback can credit; a
			// completed-but-uncredited deposit must not stand.
			if rerr := s.store.ReopenTransaction(tx.ID); rerr != nil {
				s.logger.Error("deposit credit and reopen both failed, ledger diverged from wallet",
					slog.String("transaction_id", tx.ID),
					slog.Any("cause", cerr),
					slog.Any("error", rerr),
				)
			} else {
				s.logger.Error("deposit credit failed, transaction reopened for retry",
					slog.String("transaction_id", tx.ID),
					slog.Any("error", cerr),
				)
			}
			return nil, cerr
		}
	}

	infra.GlobalMetrics.RecordPaymentVerified()
	s.logger.Info("payment verified",
		slog.String("transaction_id", tx.ID),
		slog.String("ref_id", resp.RefID),
	)

	fresh, err := s.store.GetTransaction(tx.ID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Transaction: fresh, RefID: resp.RefID}, nil
}

func cloneMeta(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+3)
	for k, v := range in {
		out[k] = v
	}
	return out
}
