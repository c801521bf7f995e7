package database

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxManager runs a function as a single all-or-nothing unit of work.
// Services use it to make multi-aggregate updates (loan + unit,
// room + booking) atomic without knowing the storage engine.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// =====================================================
// PGX TX MANAGER
// =====================================================

type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewPgxTxManager creates a TxManager backed by a pgx connection pool.
func NewPgxTxManager(pool *pgxpool.Pool) TxManager {
	return &pgxTxManager{pool: pool}
}

func (m *pgxTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, m.pool, func(tx pgx.Tx) error {
		return fn(ContextWithTx(ctx, tx))
	})
}

// =====================================================
// MEMORY TX MANAGER
// =====================================================

// Snapshotter is implemented by in-memory repositories so the memory
// TxManager can restore their state when a unit of work fails midway.
type Snapshotter interface {
	Snapshot() any
	Restore(snapshot any)
}

type memoryTxManager struct {
	mu     sync.Mutex
	stores []Snapshotter
}

// NewMemoryTxManager creates a TxManager over in-memory repositories.
// All units of work are serialized through a single mutex, which is the
// memory equivalent of a serializable transaction.
func NewMemoryTxManager(stores ...Snapshotter) TxManager {
	return &memoryTxManager{stores: stores}
}

func (m *memoryTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshots := make([]any, len(m.stores))
	for i, s := range m.stores {
		snapshots[i] = s.Snapshot()
	}

	if err := fn(ctx); err != nil {
		for i, s := range m.stores {
			s.Restore(snapshots[i])
		}
		return err
	}

	return nil
}
