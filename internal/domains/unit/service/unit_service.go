package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	catalogRepo "library-backend/internal/domains/catalog/repository"
	"library-backend/internal/domains/unit/model"
	"library-backend/internal/domains/unit/repository"
	"library-backend/pkg/logger"
)

type unitService struct {
	repo        repository.RepositoryInterface
	catalogRepo catalogRepo.RepositoryInterface
	now         func() time.Time
}

// NewService creates a new unit registry service
func NewService(repo repository.RepositoryInterface, catalog catalogRepo.RepositoryInterface, now func() time.Time) ServiceInterface {
	return &unitService{
		repo:        repo,
		catalogRepo: catalog,
		now:         now,
	}
}

// AddUnit implements ServiceInterface.AddUnit
func (s *unitService) AddUnit(ctx context.Context, titleID uuid.UUID, condition model.Condition) (*model.Unit, error) {
	if !condition.Valid() {
		return nil, model.ErrInvalidCondition
	}

	// The owning title must exist; units are composition-owned by titles.
	if _, err := s.catalogRepo.GetByID(ctx, titleID); err != nil {
		return nil, err
	}

	now := s.now()
	unit := &model.Unit{
		ID:        uuid.New(),
		TitleID:   titleID,
		Status:    model.StatusAvailable,
		Condition: condition,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, unit); err != nil {
		return nil, err
	}

	logger.Info("unit added", map[string]interface{}{
		"unit_id":  unit.ID,
		"title_id": titleID,
	})

	return unit, nil
}

// GetUnit implements ServiceInterface.GetUnit
func (s *unitService) GetUnit(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByTitle implements ServiceInterface.ListByTitle
func (s *unitService) ListByTitle(ctx context.Context, titleID uuid.UUID) ([]model.Unit, error) {
	return s.repo.ListByTitle(ctx, titleID)
}

// CountByStatus implements ServiceInterface.CountByStatus
func (s *unitService) CountByStatus(ctx context.Context, titleID uuid.UUID) (*model.StatusCounts, error) {
	return s.repo.CountByStatus(ctx, titleID)
}

// ReserveAnyAvailable implements ServiceInterface.ReserveAnyAvailable
func (s *unitService) ReserveAnyAvailable(ctx context.Context, titleID, borrowerID uuid.UUID) (*model.Unit, error) {
	unit, err := s.repo.ReserveAnyAvailable(ctx, titleID, borrowerID)
	if err != nil {
		return nil, err
	}

	logger.Info("unit reserved", map[string]interface{}{
		"unit_id":     unit.ID,
		"title_id":    titleID,
		"borrower_id": borrowerID,
	})

	return unit, nil
}

// Release implements ServiceInterface.Release
func (s *unitService) Release(ctx context.Context, unitID uuid.UUID, condition model.Condition) (*model.Unit, error) {
	if !condition.Valid() {
		return nil, model.ErrInvalidCondition
	}

	unit, err := s.repo.Release(ctx, unitID, condition)
	if err != nil {
		return nil, err
	}

	logger.Info("unit released", map[string]interface{}{
		"unit_id": unit.ID,
		"status":  unit.Status,
	})

	return unit, nil
}

// MarkMaintenance implements ServiceInterface.MarkMaintenance
func (s *unitService) MarkMaintenance(ctx context.Context, unitID uuid.UUID) error {
	return s.repo.SetStatus(ctx, unitID, model.StatusMaintenance)
}

// MarkLost implements ServiceInterface.MarkLost
func (s *unitService) MarkLost(ctx context.Context, unitID uuid.UUID) error {
	return s.repo.SetStatus(ctx, unitID, model.StatusLost)
}
