package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/room/model"
)

// RepositoryInterface stores rooms and their bookings. Bookings are owned by
// their room; there is no standalone booking aggregate.
type RepositoryInterface interface {
	CreateRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id uuid.UUID) (*model.Room, error)

	// GetRoomForUpdate loads the room and locks its row until the enclosing
	// transaction finishes. Serializes concurrent booking attempts on the
	// same room.
	GetRoomForUpdate(ctx context.Context, id uuid.UUID) (*model.Room, error)

	ListRooms(ctx context.Context) ([]model.Room, error)

	// UpdateRoomStatus flips the room's status, guarded by the version read
	// earlier in the same transaction.
	UpdateRoomStatus(ctx context.Context, id uuid.UUID, status model.RoomStatus, version int) error

	CreateBooking(ctx context.Context, booking *model.Booking) error

	// GetActiveBooking returns the room's single live booking, or
	// ErrNoActiveBooking when there is none.
	GetActiveBooking(ctx context.Context, roomID uuid.UUID) (*model.Booking, error)

	// ListLiveBookings returns every non-terminal booking for the room. The
	// overlap check iterates these rather than assuming a single holder.
	ListLiveBookings(ctx context.Context, roomID uuid.UUID) ([]model.Booking, error)

	// ListBookings returns the room's full booking history, newest first.
	ListBookings(ctx context.Context, roomID uuid.UUID) ([]model.Booking, error)

	// FinalizeBooking moves a booking from `from` into a terminal status.
	// Returns ErrBookingNotFound if the booking is missing or already left
	// the `from` state; terminal bookings are immutable history.
	FinalizeBooking(ctx context.Context, bookingID uuid.UUID, from, to model.BookingStatus) error
}
