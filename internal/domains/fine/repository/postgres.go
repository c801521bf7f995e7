package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/fine/model"
	"library-backend/pkg/database"
)

// postgresRepository implements RepositoryInterface over PostgreSQL.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL fine repository
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const fineColumns = `id, loan_id, borrower_id, type, amount, status, receipt_id, paid_at, created_at`

func scanFine(row pgx.Row) (*model.Fine, error) {
	var f model.Fine
	err := row.Scan(
		&f.ID,
		&f.LoanID,
		&f.BorrowerID,
		&f.Type,
		&f.Amount,
		&f.Status,
		&f.ReceiptID,
		&f.PaidAt,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, fine *model.Fine) error {
	query := `
		INSERT INTO fines (
			id, loan_id, borrower_id, type, amount, status, receipt_id, paid_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	q := database.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, query,
		fine.ID,
		fine.LoanID,
		fine.BorrowerID,
		fine.Type,
		fine.Amount,
		fine.Status,
		fine.ReceiptID,
		fine.PaidAt,
		fine.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert fine: %w", err)
	}

	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE id = $1`

	q := database.QuerierFrom(ctx, r.pool)
	fine, err := scanFine(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewFineNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get fine by id: %w", err)
	}

	return fine, nil
}

// ListByBorrower implements RepositoryInterface.ListByBorrower
func (r *postgresRepository) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE borrower_id = $1 ORDER BY created_at DESC`

	q := database.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fines by borrower: %w", err)
	}
	defer rows.Close()

	var fines []model.Fine
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fine row: %w", err)
		}
		fines = append(fines, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fine rows: %w", err)
	}

	return fines, nil
}

// HasPending implements RepositoryInterface.HasPending
func (r *postgresRepository) HasPending(ctx context.Context, borrowerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM fines WHERE borrower_id = $1 AND status = 'pending')`

	q := database.QuerierFrom(ctx, r.pool)

	var exists bool
	if err := q.QueryRow(ctx, query, borrowerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending fines: %w", err)
	}

	return exists, nil
}

// MarkPaid implements RepositoryInterface.MarkPaid. The status guard in the
// WHERE clause makes the transition atomic: of two concurrent payments only
// one can flip pending to paid.
func (r *postgresRepository) MarkPaid(ctx context.Context, id uuid.UUID, receiptID uuid.UUID, paidAt time.Time) error {
	query := `
		UPDATE fines
		SET status = 'paid', receipt_id = $2, paid_at = $3
		WHERE id = $1 AND status = 'pending'
	`

	q := database.QuerierFrom(ctx, r.pool)
	result, err := q.Exec(ctx, query, id, receiptID, paidAt)
	if err != nil {
		return fmt.Errorf("failed to mark fine paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		checkErr := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM fines WHERE id = $1)", id).Scan(&exists)
		if checkErr != nil {
			return fmt.Errorf("failed to check fine existence: %w", checkErr)
		}
		if !exists {
			return model.NewFineNotFoundError(id)
		}
		return model.ErrFineAlreadyPaid
	}

	return nil
}
