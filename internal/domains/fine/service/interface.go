package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/fine/model"
)

// ServiceInterface is the fine ledger: payment handling and the pending-fine
// query the loan ledger uses for eligibility.
type ServiceInterface interface {
	// Pay settles a pending fine and returns the receipt. A second call for
	// the same fine fails with ErrFineAlreadyPaid; the amount is charged
	// exactly once.
	Pay(ctx context.Context, fineID uuid.UUID) (*model.PaymentReceipt, error)

	GetFine(ctx context.Context, id uuid.UUID) (*model.Fine, error)
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Fine, error)
	HasPendingFines(ctx context.Context, borrowerID uuid.UUID) (bool, error)
}
