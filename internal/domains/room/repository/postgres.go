package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/room/model"
	"library-backend/pkg/database"
)

// postgresRepository implements RepositoryInterface over PostgreSQL.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL room repository
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const roomColumns = `id, name, capacity, features, status, version, created_at, updated_at`

const bookingColumns = `
	id, room_id, borrower_id, start_time, end_time, party_size, purpose,
	status, created_at, updated_at`

func scanRoom(row pgx.Row) (*model.Room, error) {
	var r model.Room
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Capacity,
		&r.Features,
		&r.Status,
		&r.Version,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.BorrowerID,
		&b.StartTime,
		&b.EndTime,
		&b.PartySize,
		&b.Purpose,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateRoom implements RepositoryInterface.CreateRoom
func (r *postgresRepository) CreateRoom(ctx context.Context, room *model.Room) error {
	query := `
		INSERT INTO rooms (id, name, capacity, features, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	q := database.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, query,
		room.ID,
		room.Name,
		room.Capacity,
		room.Features,
		room.Status,
		room.Version,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}

	return nil
}

// GetRoom implements RepositoryInterface.GetRoom
func (r *postgresRepository) GetRoom(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	q := database.QuerierFrom(ctx, r.pool)
	room, err := scanRoom(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewRoomNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	return room, nil
}

// GetRoomForUpdate implements RepositoryInterface.GetRoomForUpdate
func (r *postgresRepository) GetRoomForUpdate(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 FOR UPDATE`

	q := database.QuerierFrom(ctx, r.pool)
	room, err := scanRoom(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewRoomNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}

	return room, nil
}

// ListRooms implements RepositoryInterface.ListRooms
func (r *postgresRepository) ListRooms(ctx context.Context) ([]model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY name ASC`

	q := database.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room row: %w", err)
		}
		rooms = append(rooms, *room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating room rows: %w", err)
	}

	return rooms, nil
}

// UpdateRoomStatus implements RepositoryInterface.UpdateRoomStatus
func (r *postgresRepository) UpdateRoomStatus(ctx context.Context, id uuid.UUID, status model.RoomStatus, version int) error {
	query := `
		UPDATE rooms
		SET status = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $3
	`

	q := database.QuerierFrom(ctx, r.pool)
	tag, err := q.Exec(ctx, query, id, status, version)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		checkErr := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1)", id).Scan(&exists)
		if checkErr != nil {
			return fmt.Errorf("failed to check room existence: %w", checkErr)
		}
		if !exists {
			return model.NewRoomNotFoundError(id)
		}
		return model.ErrOptimisticLockFailed
	}

	return nil
}

// CreateBooking implements RepositoryInterface.CreateBooking
func (r *postgresRepository) CreateBooking(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, room_id, borrower_id, start_time, end_time, party_size, purpose,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	q := database.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, query,
		booking.ID,
		booking.RoomID,
		booking.BorrowerID,
		booking.StartTime,
		booking.EndTime,
		booking.PartySize,
		booking.Purpose,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

// GetActiveBooking implements RepositoryInterface.GetActiveBooking
func (r *postgresRepository) GetActiveBooking(ctx context.Context, roomID uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE room_id = $1 AND status = 'active'
		ORDER BY start_time DESC
		LIMIT 1
	`

	q := database.QuerierFrom(ctx, r.pool)
	booking, err := scanBooking(q.QueryRow(ctx, query, roomID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoActiveBooking
		}
		return nil, fmt.Errorf("failed to get active booking: %w", err)
	}

	return booking, nil
}

// ListLiveBookings implements RepositoryInterface.ListLiveBookings
func (r *postgresRepository) ListLiveBookings(ctx context.Context, roomID uuid.UUID) ([]model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE room_id = $1 AND status = 'active'
		ORDER BY start_time ASC
	`

	q := database.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list live bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListBookings implements RepositoryInterface.ListBookings
func (r *postgresRepository) ListBookings(ctx context.Context, roomID uuid.UUID) ([]model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE room_id = $1
		ORDER BY start_time DESC
	`

	q := database.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// FinalizeBooking implements RepositoryInterface.FinalizeBooking
func (r *postgresRepository) FinalizeBooking(ctx context.Context, bookingID uuid.UUID, from, to model.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	q := database.QuerierFrom(ctx, r.pool)
	tag, err := q.Exec(ctx, query, bookingID, from, to)
	if err != nil {
		return fmt.Errorf("failed to finalize booking: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%s status=%s", model.ErrBookingNotFound, bookingID, from)
	}

	return nil
}

func collectBookings(rows pgx.Rows) ([]model.Booking, error) {
	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}

	return bookings, nil
}
