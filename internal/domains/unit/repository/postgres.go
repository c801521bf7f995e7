package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/unit/model"
	"library-backend/pkg/database"
)

// postgresRepository implements RepositoryInterface over PostgreSQL.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL unit repository
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const unitColumns = `id, title_id, status, condition, borrower_id, version, created_at, updated_at`

func scanUnit(row pgx.Row) (*model.Unit, error) {
	var u model.Unit
	err := row.Scan(
		&u.ID,
		&u.TitleID,
		&u.Status,
		&u.Condition,
		&u.BorrowerID,
		&u.Version,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, unit *model.Unit) error {
	query := `
		INSERT INTO units (
			id, title_id, status, condition, borrower_id, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	q := database.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, query,
		unit.ID,
		unit.TitleID,
		unit.Status,
		unit.Condition,
		unit.BorrowerID,
		unit.Version,
		unit.CreatedAt,
		unit.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert unit: %w", err)
	}

	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1`

	q := database.QuerierFrom(ctx, r.pool)
	unit, err := scanUnit(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewUnitNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get unit by id: %w", err)
	}

	return unit, nil
}

// ListByTitle implements RepositoryInterface.ListByTitle
func (r *postgresRepository) ListByTitle(ctx context.Context, titleID uuid.UUID) ([]model.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE title_id = $1 ORDER BY created_at ASC`

	q := database.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query, titleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units by title: %w", err)
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit row: %w", err)
		}
		units = append(units, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unit rows: %w", err)
	}

	return units, nil
}

// CountByStatus implements RepositoryInterface.CountByStatus
func (r *postgresRepository) CountByStatus(ctx context.Context, titleID uuid.UUID) (*model.StatusCounts, error) {
	query := `
		SELECT
			COUNT(*) as total,
			COUNT(*) FILTER (WHERE status = 'available') as available,
			COUNT(*) FILTER (WHERE status = 'borrowed') as borrowed,
			COUNT(*) FILTER (WHERE status = 'maintenance') as maintenance,
			COUNT(*) FILTER (WHERE status = 'lost') as lost
		FROM units
		WHERE title_id = $1
	`

	q := database.QuerierFrom(ctx, r.pool)

	var counts model.StatusCounts
	err := q.QueryRow(ctx, query, titleID).Scan(
		&counts.Total,
		&counts.Available,
		&counts.Borrowed,
		&counts.Maintenance,
		&counts.Lost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count units by status: %w", err)
	}

	return &counts, nil
}

// ReserveAnyAvailable implements RepositoryInterface.ReserveAnyAvailable.
// Single atomic statement: the inner SELECT locks one available row, skipping
// rows already locked by concurrent reservations, so no two callers can claim
// the same unit.
func (r *postgresRepository) ReserveAnyAvailable(ctx context.Context, titleID, borrowerID uuid.UUID) (*model.Unit, error) {
	query := `
		UPDATE units
		SET
			status = 'borrowed',
			borrower_id = $2,
			version = version + 1,
			updated_at = NOW()
		WHERE id = (
			SELECT id FROM units
			WHERE title_id = $1 AND status = 'available'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + unitColumns

	q := database.QuerierFrom(ctx, r.pool)
	unit, err := scanUnit(q.QueryRow(ctx, query, titleID, borrowerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewNoUnitsAvailableError(titleID)
		}
		return nil, fmt.Errorf("failed to reserve unit: %w", err)
	}

	return unit, nil
}

// Release implements RepositoryInterface.Release
func (r *postgresRepository) Release(ctx context.Context, unitID uuid.UUID, condition model.Condition) (*model.Unit, error) {
	query := `
		UPDATE units
		SET
			status = $2,
			condition = $3,
			borrower_id = NULL,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND status = 'borrowed'
		RETURNING ` + unitColumns

	q := database.QuerierFrom(ctx, r.pool)
	unit, err := scanUnit(q.QueryRow(ctx, query, unitID, model.ReturnStatus(condition), condition))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the unit does not exist or it is not out on loan.
			var exists bool
			checkErr := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM units WHERE id = $1)", unitID).Scan(&exists)
			if checkErr != nil {
				return nil, fmt.Errorf("failed to check unit existence: %w", checkErr)
			}
			if !exists {
				return nil, model.NewUnitNotFoundError(unitID)
			}
			return nil, model.ErrUnitNotBorrowed
		}
		return nil, fmt.Errorf("failed to release unit: %w", err)
	}

	return unit, nil
}

// SetStatus implements RepositoryInterface.SetStatus
func (r *postgresRepository) SetStatus(ctx context.Context, unitID uuid.UUID, status string) error {
	query := `
		UPDATE units
		SET
			status = $2,
			borrower_id = NULL,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1
	`

	q := database.QuerierFrom(ctx, r.pool)
	result, err := q.Exec(ctx, query, unitID, status)
	if err != nil {
		return fmt.Errorf("failed to set unit status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.NewUnitNotFoundError(unitID)
	}

	return nil
}
