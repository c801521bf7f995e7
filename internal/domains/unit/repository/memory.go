package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/unit/model"
)

// MemoryRepository is a mutex-guarded in-memory unit store. The mutex makes
// every method, including the reserve check-and-set, a serializable critical
// section.
type MemoryRepository struct {
	mu    sync.Mutex
	units map[uuid.UUID]model.Unit
	now   func() time.Time
}

// NewMemory creates an empty in-memory unit repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		units: make(map[uuid.UUID]model.Unit),
		now:   time.Now,
	}
}

func cloneUnit(u model.Unit) model.Unit {
	out := u
	if u.BorrowerID != nil {
		b := *u.BorrowerID
		out.BorrowerID = &b
	}
	return out
}

// Create implements RepositoryInterface.Create
func (r *MemoryRepository) Create(_ context.Context, unit *model.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.units[unit.ID] = cloneUnit(*unit)
	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.units[id]
	if !ok {
		return nil, model.NewUnitNotFoundError(id)
	}
	out := cloneUnit(u)
	return &out, nil
}

// ListByTitle implements RepositoryInterface.ListByTitle
func (r *MemoryRepository) ListByTitle(_ context.Context, titleID uuid.UUID) ([]model.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var units []model.Unit
	for _, u := range r.units {
		if u.TitleID == titleID {
			units = append(units, cloneUnit(u))
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].CreatedAt.Before(units[j].CreatedAt) })
	return units, nil
}

// CountByStatus implements RepositoryInterface.CountByStatus
func (r *MemoryRepository) CountByStatus(_ context.Context, titleID uuid.UUID) (*model.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var counts model.StatusCounts
	for _, u := range r.units {
		if u.TitleID != titleID {
			continue
		}
		counts.Total++
		switch u.Status {
		case model.StatusAvailable:
			counts.Available++
		case model.StatusBorrowed:
			counts.Borrowed++
		case model.StatusMaintenance:
			counts.Maintenance++
		case model.StatusLost:
			counts.Lost++
		}
	}
	return &counts, nil
}

// ReserveAnyAvailable implements RepositoryInterface.ReserveAnyAvailable
func (r *MemoryRepository) ReserveAnyAvailable(_ context.Context, titleID, borrowerID uuid.UUID) (*model.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Pick the oldest available copy for deterministic ordering.
	var pick *model.Unit
	for id := range r.units {
		u := r.units[id]
		if u.TitleID != titleID || u.Status != model.StatusAvailable {
			continue
		}
		if pick == nil || u.CreatedAt.Before(pick.CreatedAt) {
			candidate := u
			pick = &candidate
		}
	}
	if pick == nil {
		return nil, model.NewNoUnitsAvailableError(titleID)
	}

	b := borrowerID
	pick.Status = model.StatusBorrowed
	pick.BorrowerID = &b
	pick.Version++
	pick.UpdatedAt = r.now()
	r.units[pick.ID] = *pick

	out := cloneUnit(*pick)
	return &out, nil
}

// Release implements RepositoryInterface.Release
func (r *MemoryRepository) Release(_ context.Context, unitID uuid.UUID, condition model.Condition) (*model.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.units[unitID]
	if !ok {
		return nil, model.NewUnitNotFoundError(unitID)
	}
	if u.Status != model.StatusBorrowed {
		return nil, model.ErrUnitNotBorrowed
	}

	u.Status = model.ReturnStatus(condition)
	u.Condition = condition
	u.BorrowerID = nil
	u.Version++
	u.UpdatedAt = r.now()
	r.units[unitID] = u

	out := cloneUnit(u)
	return &out, nil
}

// SetStatus implements RepositoryInterface.SetStatus
func (r *MemoryRepository) SetStatus(_ context.Context, unitID uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.units[unitID]
	if !ok {
		return model.NewUnitNotFoundError(unitID)
	}

	u.Status = status
	u.BorrowerID = nil
	u.Version++
	u.UpdatedAt = r.now()
	r.units[unitID] = u
	return nil
}

// Snapshot implements database.Snapshotter.
func (r *MemoryRepository) Snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(map[uuid.UUID]model.Unit, len(r.units))
	for id, u := range r.units {
		snap[id] = cloneUnit(u)
	}
	return snap
}

// Restore implements database.Snapshotter.
func (r *MemoryRepository) Restore(snapshot any) {
	units, ok := snapshot.(map[uuid.UUID]model.Unit)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units = units
}
