package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/fine/model"
)

// RepositoryInterface is the fine ledger store.
type RepositoryInterface interface {
	Create(ctx context.Context, fine *model.Fine) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Fine, error)
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Fine, error)
	HasPending(ctx context.Context, borrowerID uuid.UUID) (bool, error)

	// MarkPaid transitions a pending fine to paid. Fails with
	// ErrFineAlreadyPaid when the fine is already settled, so double
	// payments surface instead of double-charging.
	MarkPaid(ctx context.Context, id uuid.UUID, receiptID uuid.UUID, paidAt time.Time) error
}
