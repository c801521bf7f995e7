package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/room/model"
)

// ServiceInterface is the study-room booking resolver. It admits one live
// booking per room and rejects overlapping or policy-violating intervals.
type ServiceInterface interface {
	AddRoom(ctx context.Context, req model.AddRoomRequest) (*model.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*model.Room, error)
	ListRooms(ctx context.Context) ([]model.Room, error)

	// Book reserves the room for the request interval. Validations run in a
	// fixed order: room status, interval sanity, advance window, closing
	// time, party size, then overlap against every live booking. An expired
	// booking found along the way is finalized before the checks run.
	Book(ctx context.Context, req model.BookRoomRequest) (*model.Booking, error)

	// EndEarly gives the room back before the interval runs out. Only the
	// booking's own borrower may do this.
	EndEarly(ctx context.Context, roomID, borrowerID uuid.UUID) error

	// Cancel drops the booking with terminal status cancelled. Same access
	// control as EndEarly.
	Cancel(ctx context.Context, roomID, borrowerID uuid.UUID) error

	// CurrentBooking returns the room's live booking, finalizing it as
	// completed first if its interval has already passed.
	CurrentBooking(ctx context.Context, roomID uuid.UUID) (*model.Booking, error)

	// History returns all bookings ever made on the room, newest first.
	History(ctx context.Context, roomID uuid.UUID) ([]model.Booking, error)
}
