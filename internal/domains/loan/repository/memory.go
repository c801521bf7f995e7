package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/loan/model"
)

// MemoryRepository is a mutex-guarded in-memory loan ledger.
type MemoryRepository struct {
	mu    sync.Mutex
	loans map[uuid.UUID]model.Loan
	now   func() time.Time
}

// NewMemory creates an empty in-memory loan repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		loans: make(map[uuid.UUID]model.Loan),
		now:   time.Now,
	}
}

func cloneLoan(l model.Loan) model.Loan {
	out := l
	if l.ReturnedAt != nil {
		r := *l.ReturnedAt
		out.ReturnedAt = &r
	}
	return out
}

// Create implements RepositoryInterface.Create. One open loan per borrower
// and title, mirroring the partial unique index on the loans table.
func (r *MemoryRepository) Create(_ context.Context, loan *model.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.loans {
		if l.BorrowerID == loan.BorrowerID && l.TitleID == loan.TitleID && l.ReturnedAt == nil {
			return model.ErrDuplicateTitleLoan
		}
	}

	r.loans[loan.ID] = cloneLoan(*loan)
	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.loans[id]
	if !ok {
		return nil, model.NewLoanNotFoundError(id)
	}
	out := cloneLoan(l)
	return &out, nil
}

// Update implements RepositoryInterface.Update
func (r *MemoryRepository) Update(_ context.Context, loan *model.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.loans[loan.ID]
	if !ok {
		return model.NewLoanNotFoundError(loan.ID)
	}
	if current.Version != loan.Version {
		return model.ErrOptimisticLockFailed
	}

	updated := cloneLoan(*loan)
	updated.Version++
	updated.UpdatedAt = r.now()
	r.loans[loan.ID] = updated

	loan.Version = updated.Version
	loan.UpdatedAt = updated.UpdatedAt
	return nil
}

// ListByBorrower implements RepositoryInterface.ListByBorrower
func (r *MemoryRepository) ListByBorrower(_ context.Context, borrowerID uuid.UUID) ([]model.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var loans []model.Loan
	for _, l := range r.loans {
		if l.BorrowerID == borrowerID {
			loans = append(loans, cloneLoan(l))
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].BorrowedAt.After(loans[j].BorrowedAt) })
	return loans, nil
}

// ListOverdue implements RepositoryInterface.ListOverdue
func (r *MemoryRepository) ListOverdue(_ context.Context, asOf time.Time) ([]model.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var loans []model.Loan
	for _, l := range r.loans {
		if l.ReturnedAt == nil && l.DueDate.Before(asOf) {
			loans = append(loans, cloneLoan(l))
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].DueDate.Before(loans[j].DueDate) })
	return loans, nil
}

// HasOverdueLoans implements RepositoryInterface.HasOverdueLoans
func (r *MemoryRepository) HasOverdueLoans(_ context.Context, borrowerID uuid.UUID, asOf time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.loans {
		if l.BorrowerID == borrowerID && l.ReturnedAt == nil && l.DueDate.Before(asOf) {
			return true, nil
		}
	}
	return false, nil
}

// HasOpenLoanForTitle implements RepositoryInterface.HasOpenLoanForTitle
func (r *MemoryRepository) HasOpenLoanForTitle(_ context.Context, borrowerID, titleID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.loans {
		if l.BorrowerID == borrowerID && l.TitleID == titleID && l.ReturnedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

// Snapshot implements database.Snapshotter.
func (r *MemoryRepository) Snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(map[uuid.UUID]model.Loan, len(r.loans))
	for id, l := range r.loans {
		snap[id] = cloneLoan(l)
	}
	return snap
}

// Restore implements database.Snapshotter.
func (r *MemoryRepository) Restore(snapshot any) {
	loans, ok := snapshot.(map[uuid.UUID]model.Loan)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans = loans
}
