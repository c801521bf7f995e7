package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/unit/model"
)

// RepositoryInterface is the unit store. Mutating methods join an enclosing
// unit of work when the context carries one (see pkg/database).
type RepositoryInterface interface {
	Create(ctx context.Context, unit *model.Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Unit, error)
	ListByTitle(ctx context.Context, titleID uuid.UUID) ([]model.Unit, error)
	CountByStatus(ctx context.Context, titleID uuid.UUID) (*model.StatusCounts, error)

	// ReserveAnyAvailable atomically claims one available unit of the title
	// for the borrower and flips it to borrowed. Two concurrent callers can
	// never claim the same unit.
	ReserveAnyAvailable(ctx context.Context, titleID, borrowerID uuid.UUID) (*model.Unit, error)

	// Release flips a borrowed unit back to available (or maintenance when
	// the return condition is below threshold) and clears the borrower.
	Release(ctx context.Context, unitID uuid.UUID, condition model.Condition) (*model.Unit, error)

	// SetStatus forces a unit into the given status and clears the borrower.
	// Used for the administrative maintenance/lost transitions; idempotent.
	SetStatus(ctx context.Context, unitID uuid.UUID, status string) error
}
