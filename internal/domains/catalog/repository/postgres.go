package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/catalog/model"
	"library-backend/pkg/database"
)

// postgresRepository implements RepositoryInterface over PostgreSQL.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL catalog repository
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, title *model.Title) error {
	fees, err := json.Marshal(title.DamageFees)
	if err != nil {
		return fmt.Errorf("failed to marshal damage schedule: %w", err)
	}

	query := `
		INSERT INTO titles (
			id, name, author, loan_period_days, fine_per_day, damage_fees, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	q := database.QuerierFrom(ctx, r.pool)
	_, err = q.Exec(ctx, query,
		title.ID,
		title.Name,
		title.Author,
		title.LoanPeriodDays,
		title.FinePerDay,
		fees,
		title.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.ErrTitleAlreadyExists
		}
		return fmt.Errorf("failed to insert title: %w", err)
	}

	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Title, error) {
	query := `
		SELECT id, name, author, loan_period_days, fine_per_day, damage_fees, created_at
		FROM titles
		WHERE id = $1
	`

	q := database.QuerierFrom(ctx, r.pool)

	var title model.Title
	var fees []byte
	err := q.QueryRow(ctx, query, id).Scan(
		&title.ID,
		&title.Name,
		&title.Author,
		&title.LoanPeriodDays,
		&title.FinePerDay,
		&fees,
		&title.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewTitleNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get title by id: %w", err)
	}

	if len(fees) > 0 {
		if err := json.Unmarshal(fees, &title.DamageFees); err != nil {
			return nil, fmt.Errorf("failed to unmarshal damage schedule: %w", err)
		}
	}

	return &title, nil
}

// List implements RepositoryInterface.List
func (r *postgresRepository) List(ctx context.Context) ([]model.Title, error) {
	query := `
		SELECT id, name, author, loan_period_days, fine_per_day, damage_fees, created_at
		FROM titles
		ORDER BY name ASC
	`

	q := database.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}
	defer rows.Close()

	var titles []model.Title
	for rows.Next() {
		var title model.Title
		var fees []byte
		err := rows.Scan(
			&title.ID,
			&title.Name,
			&title.Author,
			&title.LoanPeriodDays,
			&title.FinePerDay,
			&fees,
			&title.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan title row: %w", err)
		}
		if len(fees) > 0 {
			if err := json.Unmarshal(fees, &title.DamageFees); err != nil {
				return nil, fmt.Errorf("failed to unmarshal damage schedule: %w", err)
			}
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating title rows: %w", err)
	}

	return titles, nil
}
