package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
)

// RepositoryInterface is the catalog read/admin surface. The allocation core
// only reads titles; Create exists for catalog management and seeding.
type RepositoryInterface interface {
	Create(ctx context.Context, title *model.Title) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Title, error)
	List(ctx context.Context) ([]model.Title, error)
}
