package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/unit/model"
)

// ServiceInterface is the unit registry: it owns the physical copies of a
// title and their status transitions.
type ServiceInterface interface {
	// AddUnit registers a new physical copy of a title.
	AddUnit(ctx context.Context, titleID uuid.UUID, condition model.Condition) (*model.Unit, error)

	GetUnit(ctx context.Context, id uuid.UUID) (*model.Unit, error)
	ListByTitle(ctx context.Context, titleID uuid.UUID) ([]model.Unit, error)
	CountByStatus(ctx context.Context, titleID uuid.UUID) (*model.StatusCounts, error)

	// ReserveAnyAvailable picks one available copy of the title and flips it
	// to borrowed. Serializable with respect to concurrent reservations.
	ReserveAnyAvailable(ctx context.Context, titleID, borrowerID uuid.UUID) (*model.Unit, error)

	// Release puts a borrowed copy back in circulation, routing it to
	// maintenance when the return condition is below threshold.
	Release(ctx context.Context, unitID uuid.UUID, condition model.Condition) (*model.Unit, error)

	// Administrative transitions, valid from any status, idempotent.
	MarkMaintenance(ctx context.Context, unitID uuid.UUID) error
	MarkLost(ctx context.Context, unitID uuid.UUID) error
}
