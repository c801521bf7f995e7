package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/fine/model"
	"library-backend/internal/domains/fine/repository"
	"library-backend/pkg/logger"
)

type fineService struct {
	repo repository.RepositoryInterface
	now  func() time.Time
}

// NewService creates a new fine service
func NewService(repo repository.RepositoryInterface, now func() time.Time) ServiceInterface {
	return &fineService{
		repo: repo,
		now:  now,
	}
}

// Pay implements ServiceInterface.Pay
func (s *fineService) Pay(ctx context.Context, fineID uuid.UUID) (*model.PaymentReceipt, error) {
	fine, err := s.repo.GetByID(ctx, fineID)
	if err != nil {
		return nil, err
	}

	receiptID := uuid.New()
	paidAt := s.now()

	// The repository enforces the pending -> paid guard atomically, so a
	// concurrent double payment loses here rather than charging twice.
	if err := s.repo.MarkPaid(ctx, fineID, receiptID, paidAt); err != nil {
		return nil, err
	}

	logger.Info("fine paid", map[string]interface{}{
		"fine_id":    fineID,
		"receipt_id": receiptID,
		"amount":     fine.Amount,
	})

	return &model.PaymentReceipt{
		ReceiptID: receiptID,
		FineID:    fineID,
		Amount:    fine.Amount,
		PaidAt:    paidAt,
	}, nil
}

// GetFine implements ServiceInterface.GetFine
func (s *fineService) GetFine(ctx context.Context, id uuid.UUID) (*model.Fine, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByBorrower implements ServiceInterface.ListByBorrower
func (s *fineService) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Fine, error) {
	return s.repo.ListByBorrower(ctx, borrowerID)
}

// HasPendingFines implements ServiceInterface.HasPendingFines
func (s *fineService) HasPendingFines(ctx context.Context, borrowerID uuid.UUID) (bool, error) {
	return s.repo.HasPending(ctx, borrowerID)
}
