package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
)

// MemoryRepository is a mutex-guarded in-memory catalog store. Used by the
// test suite and by embedded deployments without PostgreSQL.
type MemoryRepository struct {
	mu     sync.RWMutex
	titles map[uuid.UUID]model.Title
}

// NewMemory creates an empty in-memory catalog repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{titles: make(map[uuid.UUID]model.Title)}
}

func cloneTitle(t model.Title) model.Title {
	out := t
	if t.DamageFees != nil {
		out.DamageFees = make(model.DamageSchedule, len(t.DamageFees))
		for k, v := range t.DamageFees {
			out.DamageFees[k] = v
		}
	}
	return out
}

// Create implements RepositoryInterface.Create
func (r *MemoryRepository) Create(_ context.Context, title *model.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.titles[title.ID]; ok {
		return model.ErrTitleAlreadyExists
	}
	r.titles[title.ID] = cloneTitle(*title)
	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Title, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	title, ok := r.titles[id]
	if !ok {
		return nil, model.NewTitleNotFoundError(id)
	}
	out := cloneTitle(title)
	return &out, nil
}

// List implements RepositoryInterface.List
func (r *MemoryRepository) List(_ context.Context) ([]model.Title, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	titles := make([]model.Title, 0, len(r.titles))
	for _, t := range r.titles {
		titles = append(titles, cloneTitle(t))
	}
	sort.Slice(titles, func(i, j int) bool { return titles[i].Name < titles[j].Name })
	return titles, nil
}

// Snapshot implements database.Snapshotter.
func (r *MemoryRepository) Snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[uuid.UUID]model.Title, len(r.titles))
	for id, t := range r.titles {
		snap[id] = cloneTitle(t)
	}
	return snap
}

// Restore implements database.Snapshotter.
func (r *MemoryRepository) Restore(snapshot any) {
	titles, ok := snapshot.(map[uuid.UUID]model.Title)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = titles
}
