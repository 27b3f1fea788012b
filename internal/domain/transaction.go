package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a wallet-affecting ledger entry.
type TransactionKind string

const (
	TxDeposit  TransactionKind = "deposit"
	TxWithdraw TransactionKind = "withdraw"
	TxAdjust   TransactionKind = "adjust"
	TxOrder    TransactionKind = "order"
)

// TransactionStatus is the settlement state of a ledger entry.
// Gateway-initiated entries start pending and transition exactly once;
// wallet-direct entries (deposit, withdraw) are created completed.
type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusFailed    TransactionStatus = "failed"
)

// Transaction is an append-only ledger entry. Amount is in Toman.
// Authority is the opaque token issued by the payment gateway; it is the
// idempotency key for payment verification.
type Transaction struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	UserID      *uint             `gorm:"index" json:"user_id,omitempty"`
	Kind        TransactionKind   `gorm:"size:16;index" json:"kind"`
	Amount      decimal.Decimal   `gorm:"type:numeric" json:"amount"`
	Ref         string            `gorm:"size:64;index" json:"ref,omitempty"`
	Authority   string            `gorm:"size:64;index" json:"authority,omitempty"`
	Description string            `json:"description,omitempty"`
	Status      TransactionStatus `gorm:"size:16;index" json:"status"`
	Metadata    map[string]string `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
