package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/loan/model"
	unitModel "library-backend/internal/domains/unit/model"
)

// ServiceInterface is the loan ledger: it records borrow transactions and
// drives the unit registry through them.
type ServiceInterface interface {
	// Borrow checks the borrower's eligibility, claims an available unit of
	// the title and records the loan. Unit reservation and loan creation are
	// one atomic unit of work: a failure on either side leaves no trace.
	Borrow(ctx context.Context, req model.BorrowRequest) (*model.Loan, error)

	// Renew extends the due date by the loan's period, up to the renewal
	// cap. Overdue loans cannot be renewed; they must come back first.
	Renew(ctx context.Context, loanID uuid.UUID) (*model.RenewResponse, error)

	// ReturnLoan closes the loan, releases the unit and creates any overdue
	// or damage fines in the same unit of work.
	ReturnLoan(ctx context.Context, loanID uuid.UUID, condition unitModel.Condition) (*model.ReturnResponse, error)

	GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Loan, error)
	ListOverdue(ctx context.Context) ([]model.Loan, error)
}
