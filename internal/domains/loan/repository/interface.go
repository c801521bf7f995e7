package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/loan/model"
)

// RepositoryInterface is the loan ledger store. Loans are append-and-update
// only; nothing here deletes.
type RepositoryInterface interface {
	Create(ctx context.Context, loan *model.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error)

	// Update persists renewal and return mutations with optimistic locking
	// on the loan's version.
	Update(ctx context.Context, loan *model.Loan) error

	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Loan, error)

	// ListOverdue returns open loans whose due date has passed at asOf.
	// Overdue is derived from the clock, not from the stored status column.
	ListOverdue(ctx context.Context, asOf time.Time) ([]model.Loan, error)

	HasOverdueLoans(ctx context.Context, borrowerID uuid.UUID, asOf time.Time) (bool, error)
	HasOpenLoanForTitle(ctx context.Context, borrowerID, titleID uuid.UUID) (bool, error)
}
