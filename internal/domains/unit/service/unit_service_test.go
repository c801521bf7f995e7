package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/clock"
	catalogModel "library-backend/internal/domains/catalog/model"
	catalogRepo "library-backend/internal/domains/catalog/repository"
	"library-backend/internal/domains/unit/model"
	"library-backend/internal/domains/unit/repository"
)

type fixture struct {
	clk     *clock.Fake
	catalog *catalogRepo.MemoryRepository
	units   *repository.MemoryRepository
	svc     ServiceInterface
	titleID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	catalog := catalogRepo.NewMemory()
	units := repository.NewMemory()

	title := &catalogModel.Title{
		ID:     uuid.New(),
		Name:   "The Go Programming Language",
		Author: "Donovan & Kernighan",
	}
	require.NoError(t, catalog.Create(context.Background(), title))

	return &fixture{
		clk:     clk,
		catalog: catalog,
		units:   units,
		svc:     NewService(units, catalog, clk.Now),
		titleID: title.ID,
	}
}

func (f *fixture) addUnits(t *testing.T, n int) []uuid.UUID {
	t.Helper()

	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		u, err := f.svc.AddUnit(context.Background(), f.titleID, model.ConditionGood)
		require.NoError(t, err)
		ids = append(ids, u.ID)
		f.clk.Advance(time.Second)
	}
	return ids
}

func TestAddUnit(t *testing.T) {
	ctx := context.Background()

	t.Run("new unit starts available", func(t *testing.T) {
		f := newFixture(t)

		u, err := f.svc.AddUnit(ctx, f.titleID, model.ConditionNew)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAvailable, u.Status)
		assert.Equal(t, model.ConditionNew, u.Condition)
		assert.Nil(t, u.BorrowerID)
	})

	t.Run("unknown title is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AddUnit(ctx, uuid.New(), model.ConditionGood)
		assert.ErrorIs(t, err, catalogModel.ErrTitleNotFound)
	})

	t.Run("invalid condition is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AddUnit(ctx, f.titleID, model.Condition(42))
		assert.ErrorIs(t, err, model.ErrInvalidCondition)
	})
}

func TestReserveAnyAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("claims a unit and sets the borrower", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1)
		borrower := uuid.New()

		u, err := f.svc.ReserveAnyAvailable(ctx, f.titleID, borrower)
		require.NoError(t, err)
		assert.Equal(t, model.StatusBorrowed, u.Status)
		require.NotNil(t, u.BorrowerID)
		assert.Equal(t, borrower, *u.BorrowerID)
	})

	t.Run("exhausted title reports no units available", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1)

		_, err := f.svc.ReserveAnyAvailable(ctx, f.titleID, uuid.New())
		require.NoError(t, err)

		_, err = f.svc.ReserveAnyAvailable(ctx, f.titleID, uuid.New())
		assert.ErrorIs(t, err, model.ErrNoUnitsAvailable)
		assert.True(t, model.IsResourceUnavailableError(err))
	})

	t.Run("concurrent reservations never hand out the same unit", func(t *testing.T) {
		const available = 3
		const callers = 8

		f := newFixture(t)
		f.addUnits(t, available)

		var wg sync.WaitGroup
		results := make(chan *model.Unit, callers)
		failures := make(chan error, callers)

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				u, err := f.svc.ReserveAnyAvailable(ctx, f.titleID, uuid.New())
				if err != nil {
					failures <- err
					return
				}
				results <- u
			}()
		}
		wg.Wait()
		close(results)
		close(failures)

		seen := make(map[uuid.UUID]bool)
		for u := range results {
			assert.False(t, seen[u.ID], "unit %s handed out twice", u.ID)
			seen[u.ID] = true
		}
		assert.Len(t, seen, available)

		var failed int
		for err := range failures {
			assert.ErrorIs(t, err, model.ErrNoUnitsAvailable)
			failed++
		}
		assert.Equal(t, callers-available, failed)
	})
}

func TestRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("good condition goes back to the shelf", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1)

		u, err := f.svc.ReserveAnyAvailable(ctx, f.titleID, uuid.New())
		require.NoError(t, err)

		released, err := f.svc.Release(ctx, u.ID, model.ConditionGood)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAvailable, released.Status)
		assert.Nil(t, released.BorrowerID)
	})

	t.Run("poor condition routes to maintenance", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1)

		u, err := f.svc.ReserveAnyAvailable(ctx, f.titleID, uuid.New())
		require.NoError(t, err)

		released, err := f.svc.Release(ctx, u.ID, model.ConditionPoor)
		require.NoError(t, err)
		assert.Equal(t, model.StatusMaintenance, released.Status)
	})

	t.Run("releasing a shelved unit is an invalid state", func(t *testing.T) {
		f := newFixture(t)
		ids := f.addUnits(t, 1)

		_, err := f.svc.Release(ctx, ids[0], model.ConditionGood)
		assert.ErrorIs(t, err, model.ErrUnitNotBorrowed)
		assert.True(t, model.IsInvalidStateError(err))
	})
}

func TestAdministrativeTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := f.addUnits(t, 1)

	require.NoError(t, f.svc.MarkLost(ctx, ids[0]))

	u, err := f.svc.GetUnit(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, model.StatusLost, u.Status)

	// Idempotent: marking again is a no-op, not an error.
	require.NoError(t, f.svc.MarkLost(ctx, ids[0]))

	require.NoError(t, f.svc.MarkMaintenance(ctx, ids[0]))
	u, err = f.svc.GetUnit(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, u.Status)
}

func TestCountByStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUnits(t, 4)

	u, err := f.svc.ReserveAnyAvailable(ctx, f.titleID, uuid.New())
	require.NoError(t, err)
	_, err = f.svc.Release(ctx, u.ID, model.ConditionPoor)
	require.NoError(t, err)

	_, err = f.svc.ReserveAnyAvailable(ctx, f.titleID, uuid.New())
	require.NoError(t, err)

	counts, err := f.svc.CountByStatus(ctx, f.titleID)
	require.NoError(t, err)
	assert.Equal(t, 4, counts.Total)
	assert.Equal(t, 2, counts.Available)
	assert.Equal(t, 1, counts.Borrowed)
	assert.Equal(t, 1, counts.Maintenance)
	assert.Equal(t, 0, counts.Lost)
}
