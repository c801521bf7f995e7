package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	unitModel "library-backend/internal/domains/unit/model"
)

// =====================================================
// LOAN STATUS CONSTANTS
// =====================================================
const (
	StatusActive   = "active"
	StatusReturned = "returned"
	StatusOverdue  = "overdue"
)

// Loan is one borrow transaction. Loans are never deleted; they are the
// historical record of a unit's circulation.
//
// The stored status is a write-time snapshot. Reads must go through
// EffectiveStatus, which lazily derives overdue from the clock instead of
// relying on a background job to flip the column.
type Loan struct {
	ID         uuid.UUID `json:"id" db:"id"`
	BorrowerID uuid.UUID `json:"borrower_id" db:"borrower_id"`
	TitleID    uuid.UUID `json:"title_id" db:"title_id"`
	UnitID     uuid.UUID `json:"unit_id" db:"unit_id"`

	PeriodDays int        `json:"period_days" db:"period_days"`
	BorrowedAt time.Time  `json:"borrowed_at" db:"borrowed_at"`
	DueDate    time.Time  `json:"due_date" db:"due_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty" db:"returned_at"`

	Status            string              `json:"status" db:"status"`
	ConditionAtBorrow unitModel.Condition `json:"condition_at_borrow" db:"condition_at_borrow"`

	Renewals   int `json:"renewals" db:"renewals"`
	RenewalCap int `json:"renewal_cap" db:"renewal_cap"`

	// FineAmount snapshots the total fined at return time.
	FineAmount decimal.Decimal `json:"fine_amount" db:"fine_amount"`

	// Optimistic locking
	Version int `json:"version" db:"version"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus derives the loan's real status at the given instant.
// A stored active loan past its due date reads as overdue even though no
// write has touched it yet.
func (l *Loan) EffectiveStatus(now time.Time) string {
	if l.ReturnedAt != nil || l.Status == StatusReturned {
		return StatusReturned
	}
	if now.After(l.DueDate) {
		return StatusOverdue
	}
	return StatusActive
}

// IsOpen reports whether the loan still holds its unit.
func (l *Loan) IsOpen() bool {
	return l.ReturnedAt == nil && l.Status != StatusReturned
}

// CanRenew reports whether another renewal is within the cap.
func (l *Loan) CanRenew() bool {
	return l.Renewals < l.RenewalCap
}
