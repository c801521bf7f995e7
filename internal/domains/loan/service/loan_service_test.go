package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/clock"
	"library-backend/internal/config"
	catalogModel "library-backend/internal/domains/catalog/model"
	catalogRepo "library-backend/internal/domains/catalog/repository"
	fineModel "library-backend/internal/domains/fine/model"
	fineRepo "library-backend/internal/domains/fine/repository"
	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/repository"
	unitModel "library-backend/internal/domains/unit/model"
	unitRepo "library-backend/internal/domains/unit/repository"
	"library-backend/pkg/database"
)

type fixture struct {
	clk     *clock.Fake
	catalog *catalogRepo.MemoryRepository
	units   *unitRepo.MemoryRepository
	loans   *repository.MemoryRepository
	fines   *fineRepo.MemoryRepository
	svc     ServiceInterface
	titleID uuid.UUID
}

func testLoanConfig() config.LoanConfig {
	return config.LoanConfig{
		DefaultPeriodDays: 14,
		RenewalCap:        2,
		DefaultFinePerDay: decimal.NewFromInt(5),
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clk:     clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		catalog: catalogRepo.NewMemory(),
		units:   unitRepo.NewMemory(),
		loans:   repository.NewMemory(),
		fines:   fineRepo.NewMemory(),
	}

	title := &catalogModel.Title{
		ID:         uuid.New(),
		Name:       "A Wizard of Earthsea",
		Author:     "Ursula K. Le Guin",
		FinePerDay: decimal.NewFromInt(5),
		DamageFees: catalogModel.DamageSchedule{
			1: decimal.NewFromInt(50),
			2: decimal.NewFromInt(100),
		},
	}
	require.NoError(t, f.catalog.Create(context.Background(), title))
	f.titleID = title.ID

	txm := database.NewMemoryTxManager(f.units, f.loans, f.fines)
	f.svc = NewService(f.loans, f.units, f.fines, f.catalog, txm, testLoanConfig(), f.clk.Now)
	return f
}

func (f *fixture) addUnits(t *testing.T, n int, cond unitModel.Condition) {
	t.Helper()

	for i := 0; i < n; i++ {
		u := &unitModel.Unit{
			ID:        uuid.New(),
			TitleID:   f.titleID,
			Status:    unitModel.StatusAvailable,
			Condition: cond,
			Version:   1,
			CreatedAt: f.clk.Now().Add(time.Duration(i) * time.Second),
			UpdatedAt: f.clk.Now(),
		}
		require.NoError(t, f.units.Create(context.Background(), u))
	}
}

func (f *fixture) addTitle(t *testing.T) uuid.UUID {
	t.Helper()

	title := &catalogModel.Title{
		ID:     uuid.New(),
		Name:   "The Dispossessed",
		Author: "Ursula K. Le Guin",
	}
	require.NoError(t, f.catalog.Create(context.Background(), title))
	return title.ID
}

func TestBorrow(t *testing.T) {
	ctx := context.Background()
	borrower := uuid.New()

	t.Run("borrow claims a unit and opens a loan", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1, unitModel.ConditionGood)

		loan, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
		require.NoError(t, err)

		assert.Equal(t, model.StatusActive, loan.Status)
		assert.Equal(t, 14, loan.PeriodDays)
		assert.Equal(t, f.clk.Now().AddDate(0, 0, 14), loan.DueDate)
		assert.Equal(t, unitModel.ConditionGood, loan.ConditionAtBorrow)

		unit, err := f.units.GetByID(ctx, loan.UnitID)
		require.NoError(t, err)
		assert.Equal(t, unitModel.StatusBorrowed, unit.Status)
		require.NotNil(t, unit.BorrowerID)
		assert.Equal(t, borrower, *unit.BorrowerID)
	})

	t.Run("requested period overrides the default", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1, unitModel.ConditionGood)
		req := model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID, PeriodDays: 7}

		loan, err := f.svc.Borrow(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 7, loan.PeriodDays)
		assert.Equal(t, f.clk.Now().AddDate(0, 0, 7), loan.DueDate)
	})

	t.Run("exhausted title leaves nothing behind", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1, unitModel.ConditionGood)

		_, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: uuid.New(), TitleID: f.titleID})
		require.NoError(t, err)

		_, err = f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
		assert.ErrorIs(t, err, unitModel.ErrNoUnitsAvailable)

		loans, err := f.loans.ListByBorrower(ctx, borrower)
		require.NoError(t, err)
		assert.Empty(t, loans)
	})

	t.Run("overdue loan blocks new borrowing", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1, unitModel.ConditionGood)
		other := f.addTitle(t)

		_, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
		require.NoError(t, err)

		f.clk.Advance(15 * 24 * time.Hour)

		_, err = f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: other})
		assert.ErrorIs(t, err, model.ErrBorrowerHasOverdueLoans)
		assert.True(t, model.IsPolicyViolationError(err))
	})

	t.Run("pending fine blocks new borrowing", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1, unitModel.ConditionGood)

		require.NoError(t, f.fines.Create(ctx, &fineModel.Fine{
			ID:         uuid.New(),
			LoanID:     uuid.New(),
			BorrowerID: borrower,
			Type:       fineModel.TypeOverdue,
			Amount:     decimal.NewFromInt(10),
			Status:     fineModel.StatusPending,
			CreatedAt:  f.clk.Now(),
		}))

		_, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
		assert.ErrorIs(t, err, model.ErrBorrowerHasPendingFines)
	})

	t.Run("second open loan on the same title is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 2, unitModel.ConditionGood)

		_, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
		require.NoError(t, err)

		_, err = f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
		assert.ErrorIs(t, err, model.ErrDuplicateTitleLoan)
	})

	t.Run("unknown title is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: uuid.New()})
		assert.ErrorIs(t, err, catalogModel.ErrTitleNotFound)
	})

	t.Run("at most N concurrent borrows succeed for N units", func(t *testing.T) {
		const available = 2
		const callers = 5

		f := newFixture(t)
		f.addUnits(t, available, unitModel.ConditionGood)

		var wg sync.WaitGroup
		errs := make(chan error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: uuid.New(), TitleID: f.titleID})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var ok, unavailable int
		for err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, unitModel.ErrNoUnitsAvailable):
				unavailable++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, available, ok)
		assert.Equal(t, callers-available, unavailable)
	})

	t.Run("one borrower racing itself on one title opens a single loan", func(t *testing.T) {
		const callers = 8

		f := newFixture(t)
		// Units are not the scarce resource here: every caller could claim
		// one, so only the duplicate-title gate stands between them.
		f.addUnits(t, callers, unitModel.ConditionGood)

		var wg sync.WaitGroup
		errs := make(chan error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var ok, duplicate int
		for err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, model.ErrDuplicateTitleLoan):
				duplicate++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, callers-1, duplicate)

		loans, err := f.loans.ListByBorrower(ctx, borrower)
		require.NoError(t, err)
		require.Len(t, loans, 1)

		// Exactly one unit left the shelf.
		counts, err := f.units.CountByStatus(ctx, f.titleID)
		require.NoError(t, err)
		assert.Equal(t, 1, counts.Borrowed)
		assert.Equal(t, callers-1, counts.Available)
	})
}

// failingLoanRepo makes loan inserts fail so the unit claim must roll back.
type failingLoanRepo struct {
	repository.RepositoryInterface
}

func (f *failingLoanRepo) Create(context.Context, *model.Loan) error {
	return errors.New("ledger write failed")
}

func TestBorrowAtomicity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUnits(t, 1, unitModel.ConditionGood)

	txm := database.NewMemoryTxManager(f.units, f.loans, f.fines)
	svc := NewService(
		&failingLoanRepo{RepositoryInterface: f.loans},
		f.units, f.fines, f.catalog, txm, testLoanConfig(), f.clk.Now,
	)

	_, err := svc.Borrow(ctx, model.BorrowRequest{BorrowerID: uuid.New(), TitleID: f.titleID})
	require.Error(t, err)

	// The claimed unit must be back on the shelf.
	counts, err := f.units.CountByStatus(ctx, f.titleID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Available)
	assert.Equal(t, 0, counts.Borrowed)
}

func TestRenew(t *testing.T) {
	ctx := context.Background()
	borrower := uuid.New()

	borrow := func(t *testing.T, f *fixture) *model.Loan {
		t.Helper()
		f.addUnits(t, 1, unitModel.ConditionGood)
		loan, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
		require.NoError(t, err)
		return loan
	}

	t.Run("renewal extends the due date by the loan period", func(t *testing.T) {
		f := newFixture(t)
		loan := borrow(t, f)

		resp, err := f.svc.Renew(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Renewals)
		assert.Equal(t, loan.DueDate.AddDate(0, 0, loan.PeriodDays), resp.DueDate)
	})

	t.Run("renewals stop at the cap", func(t *testing.T) {
		f := newFixture(t)
		loan := borrow(t, f)

		_, err := f.svc.Renew(ctx, loan.ID)
		require.NoError(t, err)
		_, err = f.svc.Renew(ctx, loan.ID)
		require.NoError(t, err)

		_, err = f.svc.Renew(ctx, loan.ID)
		assert.ErrorIs(t, err, model.ErrRenewalLimitReached)
	})

	t.Run("overdue loan cannot be renewed", func(t *testing.T) {
		f := newFixture(t)
		loan := borrow(t, f)

		f.clk.Advance(15 * 24 * time.Hour)

		_, err := f.svc.Renew(ctx, loan.ID)
		assert.ErrorIs(t, err, model.ErrLoanOverdue)
	})

	t.Run("returned loan cannot be renewed", func(t *testing.T) {
		f := newFixture(t)
		loan := borrow(t, f)

		_, err := f.svc.ReturnLoan(ctx, loan.ID, unitModel.ConditionGood)
		require.NoError(t, err)

		_, err = f.svc.Renew(ctx, loan.ID)
		assert.ErrorIs(t, err, model.ErrLoanNotActive)
	})
}

func TestReturnLoan(t *testing.T) {
	ctx := context.Background()
	borrower := uuid.New()

	t.Run("on-time return in good condition creates no fines", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1, unitModel.ConditionGood)
		loan, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
		require.NoError(t, err)

		f.clk.Advance(7 * 24 * time.Hour)

		resp, err := f.svc.ReturnLoan(ctx, loan.ID, unitModel.ConditionGood)
		require.NoError(t, err)
		assert.Empty(t, resp.Fines)
		assert.Equal(t, unitModel.StatusAvailable, resp.UnitStatus)
		assert.True(t, resp.Loan.FineAmount.IsZero())
		require.NotNil(t, resp.Loan.ReturnedAt)
	})

	t.Run("late damaged return creates both fines and routes to maintenance", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1, unitModel.ConditionGood)
		loan, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
		require.NoError(t, err)

		// 20 days into a 14-day loan: 6 days late at 5/day = 30.
		// Good -> poor is a two-grade drop: damage fee 100.
		f.clk.Advance(20 * 24 * time.Hour)

		resp, err := f.svc.ReturnLoan(ctx, loan.ID, unitModel.ConditionPoor)
		require.NoError(t, err)
		assert.Equal(t, unitModel.StatusMaintenance, resp.UnitStatus)
		require.Len(t, resp.Fines, 2)

		byType := map[string]decimal.Decimal{}
		for _, fi := range resp.Fines {
			assert.Equal(t, fineModel.StatusPending, fi.Status)
			byType[fi.Type] = fi.Amount
		}
		assert.True(t, byType[fineModel.TypeOverdue].Equal(decimal.NewFromInt(30)), "overdue %s", byType[fineModel.TypeOverdue])
		assert.True(t, byType[fineModel.TypeDamage].Equal(decimal.NewFromInt(100)), "damage %s", byType[fineModel.TypeDamage])
		assert.True(t, resp.Loan.FineAmount.Equal(decimal.NewFromInt(130)))

		pending, err := f.fines.HasPending(ctx, borrower)
		require.NoError(t, err)
		assert.True(t, pending)
	})

	t.Run("double return is an invalid state", func(t *testing.T) {
		f := newFixture(t)
		f.addUnits(t, 1, unitModel.ConditionGood)
		loan, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
		require.NoError(t, err)

		_, err = f.svc.ReturnLoan(ctx, loan.ID, unitModel.ConditionGood)
		require.NoError(t, err)

		_, err = f.svc.ReturnLoan(ctx, loan.ID, unitModel.ConditionGood)
		assert.ErrorIs(t, err, model.ErrLoanNotActive)
	})

	t.Run("invalid condition is rejected up front", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ReturnLoan(ctx, uuid.New(), unitModel.Condition(0))
		assert.ErrorIs(t, err, unitModel.ErrInvalidCondition)
	})
}

func TestLazyOverdueStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUnits(t, 1, unitModel.ConditionGood)
	borrower := uuid.New()

	loan, err := f.svc.Borrow(ctx, model.BorrowRequest{BorrowerID: borrower, TitleID: f.titleID})
	require.NoError(t, err)

	f.clk.Advance(15 * 24 * time.Hour)

	// The read derives overdue from the clock...
	got, err := f.svc.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOverdue, got.Status)

	// ...while the stored record is untouched; no background job flipped it.
	stored, err := f.loans.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, stored.Status)

	overdue, err := f.svc.ListOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, loan.ID, overdue[0].ID)
}
