package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/clock"
	"library-backend/internal/domains/fine/model"
	"library-backend/internal/domains/fine/repository"
)

func seedPendingFine(t *testing.T, repo *repository.MemoryRepository, borrowerID uuid.UUID) *model.Fine {
	t.Helper()

	fine := &model.Fine{
		ID:         uuid.New(),
		LoanID:     uuid.New(),
		BorrowerID: borrowerID,
		Type:       model.TypeOverdue,
		Amount:     decimal.NewFromInt(30),
		Status:     model.StatusPending,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), fine))
	return fine
}

func TestPay(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 3, 21, 10, 0, 0, 0, time.UTC))

	t.Run("payment stamps receipt and time", func(t *testing.T) {
		repo := repository.NewMemory()
		svc := NewService(repo, clk.Now)
		fine := seedPendingFine(t, repo, uuid.New())

		receipt, err := svc.Pay(ctx, fine.ID)
		require.NoError(t, err)
		assert.Equal(t, fine.ID, receipt.FineID)
		assert.NotEqual(t, uuid.Nil, receipt.ReceiptID)
		assert.True(t, receipt.Amount.Equal(fine.Amount))
		assert.Equal(t, clk.Now(), receipt.PaidAt)

		stored, err := repo.GetByID(ctx, fine.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, stored.Status)
		require.NotNil(t, stored.ReceiptID)
		assert.Equal(t, receipt.ReceiptID, *stored.ReceiptID)
	})

	t.Run("second payment errors without charging twice", func(t *testing.T) {
		repo := repository.NewMemory()
		svc := NewService(repo, clk.Now)
		fine := seedPendingFine(t, repo, uuid.New())

		first, err := svc.Pay(ctx, fine.ID)
		require.NoError(t, err)

		_, err = svc.Pay(ctx, fine.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrFineAlreadyPaid)
		assert.True(t, model.IsAlreadySettledError(err))

		// The first payment's receipt is untouched.
		stored, err := repo.GetByID(ctx, fine.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.ReceiptID)
		assert.Equal(t, first.ReceiptID, *stored.ReceiptID)
	})

	t.Run("paying an unknown fine is not found", func(t *testing.T) {
		repo := repository.NewMemory()
		svc := NewService(repo, clk.Now)

		_, err := svc.Pay(ctx, uuid.New())
		assert.ErrorIs(t, err, model.ErrFineNotFound)
	})
}

func TestHasPendingFines(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 3, 21, 10, 0, 0, 0, time.UTC))
	repo := repository.NewMemory()
	svc := NewService(repo, clk.Now)

	borrower := uuid.New()

	pending, err := svc.HasPendingFines(ctx, borrower)
	require.NoError(t, err)
	assert.False(t, pending)

	fine := seedPendingFine(t, repo, borrower)

	pending, err = svc.HasPendingFines(ctx, borrower)
	require.NoError(t, err)
	assert.True(t, pending)

	_, err = svc.Pay(ctx, fine.ID)
	require.NoError(t, err)

	pending, err = svc.HasPendingFines(ctx, borrower)
	require.NoError(t, err)
	assert.False(t, pending)
}
