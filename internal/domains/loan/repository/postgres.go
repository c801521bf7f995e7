package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/loan/model"
	"library-backend/pkg/database"
)

// postgresRepository implements RepositoryInterface over PostgreSQL.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL loan repository
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const loanColumns = `
	id, borrower_id, title_id, unit_id, period_days, borrowed_at, due_date,
	returned_at, status, condition_at_borrow, renewals, renewal_cap,
	fine_amount, version, created_at, updated_at`

func scanLoan(row pgx.Row) (*model.Loan, error) {
	var l model.Loan
	err := row.Scan(
		&l.ID,
		&l.BorrowerID,
		&l.TitleID,
		&l.UnitID,
		&l.PeriodDays,
		&l.BorrowedAt,
		&l.DueDate,
		&l.ReturnedAt,
		&l.Status,
		&l.ConditionAtBorrow,
		&l.Renewals,
		&l.RenewalCap,
		&l.FineAmount,
		&l.Version,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, loan *model.Loan) error {
	query := `
		INSERT INTO loans (
			id, borrower_id, title_id, unit_id, period_days, borrowed_at, due_date,
			returned_at, status, condition_at_borrow, renewals, renewal_cap,
			fine_amount, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	q := database.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, query,
		loan.ID,
		loan.BorrowerID,
		loan.TitleID,
		loan.UnitID,
		loan.PeriodDays,
		loan.BorrowedAt,
		loan.DueDate,
		loan.ReturnedAt,
		loan.Status,
		loan.ConditionAtBorrow,
		loan.Renewals,
		loan.RenewalCap,
		loan.FineAmount,
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	if err != nil {
		// loans_open_borrower_title_idx is a partial unique index on
		// (borrower_id, title_id) WHERE returned_at IS NULL: the database
		// enforces one open loan per borrower and title even when two
		// transactions pass the service-level check concurrently.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.ErrDuplicateTitleLoan
		}
		return fmt.Errorf("failed to insert loan: %w", err)
	}

	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	q := database.QuerierFrom(ctx, r.pool)
	loan, err := scanLoan(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewLoanNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get loan by id: %w", err)
	}

	return loan, nil
}

// Update implements RepositoryInterface.Update with optimistic locking
func (r *postgresRepository) Update(ctx context.Context, loan *model.Loan) error {
	query := `
		UPDATE loans
		SET
			due_date = $2,
			returned_at = $3,
			status = $4,
			renewals = $5,
			fine_amount = $6,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $7
		RETURNING version, updated_at
	`

	q := database.QuerierFrom(ctx, r.pool)
	err := q.QueryRow(ctx, query,
		loan.ID,
		loan.DueDate,
		loan.ReturnedAt,
		loan.Status,
		loan.Renewals,
		loan.FineAmount,
		loan.Version,
	).Scan(&loan.Version, &loan.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			checkErr := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM loans WHERE id = $1)", loan.ID).Scan(&exists)
			if checkErr != nil {
				return fmt.Errorf("failed to check loan existence: %w", checkErr)
			}
			if !exists {
				return model.NewLoanNotFoundError(loan.ID)
			}
			return model.ErrOptimisticLockFailed
		}
		return fmt.Errorf("failed to update loan: %w", err)
	}

	return nil
}

// ListByBorrower implements RepositoryInterface.ListByBorrower
func (r *postgresRepository) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE borrower_id = $1 ORDER BY borrowed_at DESC`

	q := database.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans by borrower: %w", err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

// ListOverdue implements RepositoryInterface.ListOverdue
func (r *postgresRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]model.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE returned_at IS NULL AND due_date < $1
		ORDER BY due_date ASC
	`

	q := database.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue loans: %w", err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

// HasOverdueLoans implements RepositoryInterface.HasOverdueLoans
func (r *postgresRepository) HasOverdueLoans(ctx context.Context, borrowerID uuid.UUID, asOf time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM loans
			WHERE borrower_id = $1 AND returned_at IS NULL AND due_date < $2
		)
	`

	q := database.QuerierFrom(ctx, r.pool)

	var exists bool
	if err := q.QueryRow(ctx, query, borrowerID, asOf).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overdue loans: %w", err)
	}

	return exists, nil
}

// HasOpenLoanForTitle implements RepositoryInterface.HasOpenLoanForTitle
func (r *postgresRepository) HasOpenLoanForTitle(ctx context.Context, borrowerID, titleID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM loans
			WHERE borrower_id = $1 AND title_id = $2 AND returned_at IS NULL
		)
	`

	q := database.QuerierFrom(ctx, r.pool)

	var exists bool
	if err := q.QueryRow(ctx, query, borrowerID, titleID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check open loan for title: %w", err)
	}

	return exists, nil
}

func collectLoans(rows pgx.Rows) ([]model.Loan, error) {
	var loans []model.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, *l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loan rows: %w", err)
	}

	return loans, nil
}
