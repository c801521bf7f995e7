package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/config"
	catalogModel "library-backend/internal/domains/catalog/model"
	catalogRepo "library-backend/internal/domains/catalog/repository"
	fineModel "library-backend/internal/domains/fine/model"
	fineRepo "library-backend/internal/domains/fine/repository"
	fineService "library-backend/internal/domains/fine/service"
	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/repository"
	unitModel "library-backend/internal/domains/unit/model"
	unitRepo "library-backend/internal/domains/unit/repository"
	"library-backend/pkg/database"
	"library-backend/pkg/logger"
)

type loanService struct {
	loanRepo    repository.RepositoryInterface
	unitRepo    unitRepo.RepositoryInterface
	fineRepo    fineRepo.RepositoryInterface
	catalogRepo catalogRepo.RepositoryInterface
	txManager   database.TxManager
	cfg         config.LoanConfig
	now         func() time.Time
}

// NewService creates a new loan ledger service
func NewService(
	loans repository.RepositoryInterface,
	units unitRepo.RepositoryInterface,
	fines fineRepo.RepositoryInterface,
	catalog catalogRepo.RepositoryInterface,
	txManager database.TxManager,
	cfg config.LoanConfig,
	now func() time.Time,
) ServiceInterface {
	return &loanService{
		loanRepo:    loans,
		unitRepo:    units,
		fineRepo:    fines,
		catalogRepo: catalog,
		txManager:   txManager,
		cfg:         cfg,
		now:         now,
	}
}

// Borrow implements ServiceInterface.Borrow
func (s *loanService) Borrow(ctx context.Context, req model.BorrowRequest) (*model.Loan, error) {
	// Step 1: validate request shape
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: the title must exist; it also supplies the loan period
	title, err := s.catalogRepo.GetByID(ctx, req.TitleID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	periodDays := s.loanPeriod(req.PeriodDays, title)

	// Step 3: eligibility, the claim and the insert run as one unit of
	// work, so two racing borrows cannot both pass the checks before
	// either records its loan. If anything fails, nothing is left behind.
	var loan *model.Loan
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		// Eligibility, checked in policy order.
		overdue, err := s.loanRepo.HasOverdueLoans(ctx, req.BorrowerID, now)
		if err != nil {
			return err
		}
		if overdue {
			return model.ErrBorrowerHasOverdueLoans
		}

		pending, err := s.fineRepo.HasPending(ctx, req.BorrowerID)
		if err != nil {
			return err
		}
		if pending {
			return model.ErrBorrowerHasPendingFines
		}

		duplicate, err := s.loanRepo.HasOpenLoanForTitle(ctx, req.BorrowerID, req.TitleID)
		if err != nil {
			return err
		}
		if duplicate {
			return model.ErrDuplicateTitleLoan
		}

		unit, err := s.unitRepo.ReserveAnyAvailable(ctx, req.TitleID, req.BorrowerID)
		if err != nil {
			return err
		}

		loan = &model.Loan{
			ID:                uuid.New(),
			BorrowerID:        req.BorrowerID,
			TitleID:           req.TitleID,
			UnitID:            unit.ID,
			PeriodDays:        periodDays,
			BorrowedAt:        now,
			DueDate:           now.AddDate(0, 0, periodDays),
			Status:            model.StatusActive,
			ConditionAtBorrow: unit.Condition,
			RenewalCap:        s.cfg.RenewalCap,
			FineAmount:        decimal.Zero,
			Version:           1,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		return s.loanRepo.Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("loan created", map[string]interface{}{
		"loan_id":     loan.ID,
		"borrower_id": loan.BorrowerID,
		"title_id":    loan.TitleID,
		"unit_id":     loan.UnitID,
		"due_date":    loan.DueDate,
	})

	return loan, nil
}

// Renew implements ServiceInterface.Renew
func (s *loanService) Renew(ctx context.Context, loanID uuid.UUID) (*model.RenewResponse, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch loan.EffectiveStatus(now) {
	case model.StatusReturned:
		return nil, model.ErrLoanNotActive
	case model.StatusOverdue:
		return nil, model.ErrLoanOverdue
	}

	if !loan.CanRenew() {
		return nil, model.ErrRenewalLimitReached
	}

	loan.DueDate = loan.DueDate.AddDate(0, 0, loan.PeriodDays)
	loan.Renewals++

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}

	logger.Info("loan renewed", map[string]interface{}{
		"loan_id":  loan.ID,
		"renewals": loan.Renewals,
		"due_date": loan.DueDate,
	})

	return &model.RenewResponse{
		LoanID:   loan.ID,
		DueDate:  loan.DueDate,
		Renewals: loan.Renewals,
	}, nil
}

// ReturnLoan implements ServiceInterface.ReturnLoan
func (s *loanService) ReturnLoan(ctx context.Context, loanID uuid.UUID, condition unitModel.Condition) (*model.ReturnResponse, error) {
	if !condition.Valid() {
		return nil, unitModel.ErrInvalidCondition
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsOpen() {
		return nil, model.ErrLoanNotActive
	}

	title, err := s.catalogRepo.GetByID(ctx, loan.TitleID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	// Release the unit, accrue fines and close the loan in one unit of
	// work: a failure midway leaves the loan open and the unit borrowed.
	var resp *model.ReturnResponse
	err = s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		unit, err := s.unitRepo.Release(ctx, loan.UnitID, condition)
		if err != nil {
			return err
		}

		fines, err := s.accrueFines(ctx, loan, title, condition, now)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, f := range fines {
			total = total.Add(f.Amount)
		}

		returnedAt := now
		loan.ReturnedAt = &returnedAt
		loan.Status = model.StatusReturned
		loan.FineAmount = total

		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return err
		}

		resp = &model.ReturnResponse{
			Loan:       loan,
			UnitStatus: unit.Status,
			Fines:      fines,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("loan returned", map[string]interface{}{
		"loan_id":     loan.ID,
		"unit_status": resp.UnitStatus,
		"fine_amount": loan.FineAmount,
	})

	return resp, nil
}

// accrueFines creates the overdue and damage fines a return triggers.
func (s *loanService) accrueFines(
	ctx context.Context,
	loan *model.Loan,
	title *catalogModel.Title,
	condition unitModel.Condition,
	now time.Time,
) ([]fineModel.Fine, error) {
	var fines []fineModel.Fine

	perDay := title.FinePerDay
	if perDay.IsZero() {
		perDay = s.cfg.DefaultFinePerDay
	}

	if amount := fineService.ComputeOverdueFine(loan.DueDate, now, perDay); amount.IsPositive() {
		fines = append(fines, fineModel.Fine{
			ID:         uuid.New(),
			LoanID:     loan.ID,
			BorrowerID: loan.BorrowerID,
			Type:       fineModel.TypeOverdue,
			Amount:     amount,
			Status:     fineModel.StatusPending,
			CreatedAt:  now,
		})
	}

	if amount := fineService.ComputeDamageFine(loan.ConditionAtBorrow, condition, title.DamageFees); amount.IsPositive() {
		fines = append(fines, fineModel.Fine{
			ID:         uuid.New(),
			LoanID:     loan.ID,
			BorrowerID: loan.BorrowerID,
			Type:       fineModel.TypeDamage,
			Amount:     amount,
			Status:     fineModel.StatusPending,
			CreatedAt:  now,
		})
	}

	for i := range fines {
		if err := s.fineRepo.Create(ctx, &fines[i]); err != nil {
			return nil, err
		}
	}

	return fines, nil
}

// GetLoan implements ServiceInterface.GetLoan. The returned loan's status is
// the effective one, derived against the clock.
func (s *loanService) GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.Status = loan.EffectiveStatus(s.now())
	return loan, nil
}

// ListByBorrower implements ServiceInterface.ListByBorrower
func (s *loanService) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Loan, error) {
	loans, err := s.loanRepo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range loans {
		loans[i].Status = loans[i].EffectiveStatus(now)
	}
	return loans, nil
}

// ListOverdue implements ServiceInterface.ListOverdue
func (s *loanService) ListOverdue(ctx context.Context) ([]model.Loan, error) {
	loans, err := s.loanRepo.ListOverdue(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range loans {
		loans[i].Status = model.StatusOverdue
	}
	return loans, nil
}

// loanPeriod picks the effective loan period: explicit request, then the
// title's default, then the configured fallback.
func (s *loanService) loanPeriod(requested int, title *catalogModel.Title) int {
	if requested > 0 {
		return requested
	}
	if title.LoanPeriodDays > 0 {
		return title.LoanPeriodDays
	}
	return s.cfg.DefaultPeriodDays
}
