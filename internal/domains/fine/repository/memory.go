package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/fine/model"
)

// MemoryRepository is a mutex-guarded in-memory fine ledger.
type MemoryRepository struct {
	mu    sync.Mutex
	fines map[uuid.UUID]model.Fine
}

// NewMemory creates an empty in-memory fine repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{fines: make(map[uuid.UUID]model.Fine)}
}

func cloneFine(f model.Fine) model.Fine {
	out := f
	if f.ReceiptID != nil {
		r := *f.ReceiptID
		out.ReceiptID = &r
	}
	if f.PaidAt != nil {
		p := *f.PaidAt
		out.PaidAt = &p
	}
	return out
}

// Create implements RepositoryInterface.Create
func (r *MemoryRepository) Create(_ context.Context, fine *model.Fine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fines[fine.ID] = cloneFine(*fine)
	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Fine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.fines[id]
	if !ok {
		return nil, model.NewFineNotFoundError(id)
	}
	out := cloneFine(f)
	return &out, nil
}

// ListByBorrower implements RepositoryInterface.ListByBorrower
func (r *MemoryRepository) ListByBorrower(_ context.Context, borrowerID uuid.UUID) ([]model.Fine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var fines []model.Fine
	for _, f := range r.fines {
		if f.BorrowerID == borrowerID {
			fines = append(fines, cloneFine(f))
		}
	}
	sort.Slice(fines, func(i, j int) bool { return fines[i].CreatedAt.After(fines[j].CreatedAt) })
	return fines, nil
}

// HasPending implements RepositoryInterface.HasPending
func (r *MemoryRepository) HasPending(_ context.Context, borrowerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.fines {
		if f.BorrowerID == borrowerID && f.Status == model.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

// MarkPaid implements RepositoryInterface.MarkPaid
func (r *MemoryRepository) MarkPaid(_ context.Context, id uuid.UUID, receiptID uuid.UUID, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.fines[id]
	if !ok {
		return model.NewFineNotFoundError(id)
	}
	if f.Status != model.StatusPending {
		return model.ErrFineAlreadyPaid
	}

	f.Status = model.StatusPaid
	f.ReceiptID = &receiptID
	f.PaidAt = &paidAt
	r.fines[id] = f
	return nil
}

// Snapshot implements database.Snapshotter.
func (r *MemoryRepository) Snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(map[uuid.UUID]model.Fine, len(r.fines))
	for id, f := range r.fines {
		snap[id] = cloneFine(f)
	}
	return snap
}

// Restore implements database.Snapshotter.
func (r *MemoryRepository) Restore(snapshot any) {
	fines, ok := snapshot.(map[uuid.UUID]model.Fine)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fines = fines
}
