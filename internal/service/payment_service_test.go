package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gold_go/internal/domain"
	"gold_go/internal/infra/zarinpal"

	"github.com/shopspring/decimal"
)

// gatewayStub mimics the ZarinPal v4 endpoints. verifyCode controls the
// verification answer; verifyCalls counts how often the shop re-verifies.
type gatewayStub struct {
	verifyCode  int
	verifyCalls int
}

func (g *gatewayStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/request.json":
			json.NewEncoder(w).Encode(map[string]any{
				"data":   map[string]any{"code": 100, "authority": "A0000012345"},
				"errors": []any{},
			})
		case "/verify.json":
			g.verifyCalls++
			json.NewEncoder(w).Encode(map[string]any{
				"data":   map[string]any{"code": g.verifyCode, "ref_id": 201000777},
				"errors": []any{},
			})
		}
	}
}

func newPaymentFixture(t *testing.T, verifyCode int) (*PaymentService, *gatewayStub, *domain.User, func() decimal.Decimal) {
	t.Helper()
	store := newTestStorage(t)
	user := newTestUser(t, store, "0")

	stub := &gatewayStub{verifyCode: verifyCode}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	gateway := zarinpal.NewClientWithBaseURL("test-merchant", srv.URL, "https://gw.example/StartPay/")
	svc := NewPaymentService(store, gateway, "https://shop.example/api/payment/verify")

	balance := func() decimal.Decimal {
		b, err := store.GetBalance(user.ID)
		if err != nil {
			t.Fatalf("GetBalance failed: %v", err)
		}
		return b
	}
	return svc, stub, user, balance
}

func TestPaymentService_Start(t *testing.T) {
	ctx := context.Background()
	svc, _, user, _ := newPaymentFixture(t, 100)

	res, err := svc.Start(ctx, StartPaymentInput{
		UserID: &user.ID,
		Kind:   domain.TxDeposit,
		Amount: decimal.NewFromInt(5_000_000),
		Mobile: "09120000001",
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if res.Authority != "A0000012345" {
		t.Errorf("Expected gateway authority, got %s", res.Authority)
	}
	if res.AmountRial != 50_000_000 {
		t.Errorf("Toman to Rial conversion wrong: %d", res.AmountRial)
	}
	if res.PaymentURL != "https://gw.example/StartPay/A0000012345" {
		t.Errorf("Bad payment URL: %s", res.PaymentURL)
	}

	t.Run("Non Positive Amount", func(t *testing.T) {
		_, err := svc.Start(ctx, StartPaymentInput{Amount: decimal.Zero})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
	})
}

func TestPaymentService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("Deposit Credits Wallet Once", func(t *testing.T) {
		svc, stub, user, balance := newPaymentFixture(t, 100)

		res, err := svc.Start(ctx, StartPaymentInput{
			UserID: &user.ID,
			Kind:   domain.TxDeposit,
			Amount: decimal.NewFromInt(5_000_000),
		})
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		first, err := svc.Verify(ctx, res.Authority)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if first.AlreadyVerified {
			t.Error("First verification must not report already-verified")
		}
		if first.RefID != "201000777" {
			t.Errorf("Expected ref id, got %s", first.RefID)
		}
		if !balance().Equal(decimal.NewFromInt(5_000_000)) {
			t.Errorf("Wallet not credited: %s", balance())
		}

		// Retried callback: no second gateway call, no second credit.
		second, err := svc.Verify(ctx, res.Authority)
		if err != nil {
			t.Fatalf("Second verify failed: %v", err)
		}
		if !second.AlreadyVerified {
			t.Error("Retry must report already-verified")
		}
		if stub.verifyCalls != 1 {
			t.Errorf("Expected 1 gateway verification, got %d", stub.verifyCalls)
		}
		if !balance().Equal(decimal.NewFromInt(5_000_000)) {
			t.Errorf("Retry credited the wallet again: %s", balance())
		}
	})

	t.Run("Gateway Rejection Fails The Transaction", func(t *testing.T) {
		svc, _, user, balance := newPaymentFixture(t, -22)

		res, err := svc.Start(ctx, StartPaymentInput{
			UserID: &user.ID,
			Kind:   domain.TxDeposit,
			Amount: decimal.NewFromInt(5_000_000),
		})
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		_, err = svc.Verify(ctx, res.Authority)
		if !errors.Is(err, domain.ErrGatewayRejected) {
			t.Fatalf("Expected ErrGatewayRejected, got %v", err)
		}
		if !balance().IsZero() {
			t.Errorf("Failed payment must not credit: %s", balance())
		}

		// A later retry of the failed authority stays failed.
		_, err = svc.Verify(ctx, res.Authority)
		if !errors.Is(err, domain.ErrGatewayRejected) {
			t.Errorf("Failed transaction must stay failed, got %v", err)
		}
	})

	t.Run("Failed Credit Reopens The Transaction", func(t *testing.T) {
		store := newTestStorage(t)
		stub := &gatewayStub{verifyCode: 100}
		srv := httptest.NewServer(stub.handler())
		t.Cleanup(srv.Close)

		gateway := zarinpal.NewClientWithBaseURL("test-merchant", srv.URL, "https://gw.example/StartPay/")
		svc := NewPaymentService(store, gateway, "https://shop.example/api/payment/verify")

		// Deposit for an account that no longer exists: the credit after
		// the winning transition has to fail.
		ghost := uint(9999)
		res, err := svc.Start(ctx, StartPaymentInput{
			UserID: &ghost,
			Kind:   domain.TxDeposit,
			Amount: decimal.NewFromInt(5_000_000),
		})
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		if _, err := svc.Verify(ctx, res.Authority); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("Expected ErrUserNotFound, got %v", err)
		}

		tx, err := store.FindTransactionByAuthority(res.Authority)
		if err != nil {
			t.Fatalf("FindTransactionByAuthority failed: %v", err)
		}
		if tx.Status != domain.TxStatusPending {
			t.Errorf("Credit failure must reopen the entry for retry, got %s", tx.Status)
		}
	})

	t.Run("Unknown Authority", func(t *testing.T) {
		svc, _, _, _ := newPaymentFixture(t, 100)
		_, err := svc.Verify(ctx, "A-unknown")
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Errorf("Expected ErrTransactionNotFound, got %v", err)
		}
	})

	t.Run("Order Payment Does Not Touch Wallet", func(t *testing.T) {
		svc, _, user, balance := newPaymentFixture(t, 100)

		res, err := svc.Start(ctx, StartPaymentInput{
			UserID: &user.ID,
			Kind:   domain.TxOrder,
			Amount: decimal.NewFromInt(12_500_000),
		})
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		if _, err := svc.Verify(ctx, res.Authority); err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if !balance().IsZero() {
			t.Errorf("Order payments must not credit the wallet: %s", balance())
		}
	})
}
