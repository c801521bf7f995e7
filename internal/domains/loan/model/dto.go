package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	fineModel "library-backend/internal/domains/fine/model"
)

// =====================================================
// BORROW REQUEST
// =====================================================
type BorrowRequest struct {
	BorrowerID uuid.UUID `json:"borrower_id"`
	TitleID    uuid.UUID `json:"title_id"`

	// PeriodDays overrides the title's loan period; zero means default.
	PeriodDays int `json:"period_days,omitempty"`
}

// Validate validates BorrowRequest
func (req BorrowRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.BorrowerID, validation.Required),
		validation.Field(&req.TitleID, validation.Required),
		validation.Field(&req.PeriodDays, validation.Min(0), validation.Max(365)),
	)
}

// =====================================================
// RESPONSES
// =====================================================

type RenewResponse struct {
	LoanID   uuid.UUID `json:"loan_id"`
	DueDate  time.Time `json:"due_date"`
	Renewals int       `json:"renewals"`
}

// ReturnResponse reports the outcome of a return: where the unit went and
// any fines created on the way.
type ReturnResponse struct {
	Loan       *Loan            `json:"loan"`
	UnitStatus string           `json:"unit_status"`
	Fines      []fineModel.Fine `json:"fines,omitempty"`
}
