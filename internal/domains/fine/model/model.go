package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// FINE TYPE CONSTANTS
// =====================================================
const (
	TypeOverdue = "overdue"
	TypeDamage  = "damage"
	TypeLost    = "lost"
)

// =====================================================
// FINE STATUS CONSTANTS
// =====================================================
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Fine is a monetary obligation derived from a loan. The amount is
// append-only once created; corrections happen via new fine records.
// Only the payment fields ever change.
type Fine struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	LoanID     uuid.UUID       `json:"loan_id" db:"loan_id"`
	BorrowerID uuid.UUID       `json:"borrower_id" db:"borrower_id"`
	Type       string          `json:"type" db:"type"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Status     string          `json:"status" db:"status"`
	ReceiptID  *uuid.UUID      `json:"receipt_id,omitempty" db:"receipt_id"`
	PaidAt     *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// IsPending reports whether the fine still blocks new loans.
func (f *Fine) IsPending() bool {
	return f.Status == StatusPending
}

// PaymentReceipt is returned by a successful payment.
type PaymentReceipt struct {
	ReceiptID uuid.UUID       `json:"receipt_id"`
	FineID    uuid.UUID       `json:"fine_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
}
