package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/room/model"
)

// MemoryRepository is a mutex-guarded in-memory room and booking store.
type MemoryRepository struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]model.Room
	bookings map[uuid.UUID]model.Booking
	now      func() time.Time
}

// NewMemory creates an empty in-memory room repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		rooms:    make(map[uuid.UUID]model.Room),
		bookings: make(map[uuid.UUID]model.Booking),
		now:      time.Now,
	}
}

func cloneRoom(r model.Room) model.Room {
	out := r
	out.Features = append([]string(nil), r.Features...)
	return out
}

// CreateRoom implements RepositoryInterface.CreateRoom
func (r *MemoryRepository) CreateRoom(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[room.ID] = cloneRoom(*room)
	return nil
}

// GetRoom implements RepositoryInterface.GetRoom
func (r *MemoryRepository) GetRoom(_ context.Context, id uuid.UUID) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.getRoomLocked(id)
}

// GetRoomForUpdate implements RepositoryInterface.GetRoomForUpdate. The
// memory store serializes through the transaction manager's mutex, so this
// is a plain read.
func (r *MemoryRepository) GetRoomForUpdate(_ context.Context, id uuid.UUID) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.getRoomLocked(id)
}

func (r *MemoryRepository) getRoomLocked(id uuid.UUID) (*model.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, model.NewRoomNotFoundError(id)
	}
	out := cloneRoom(room)
	return &out, nil
}

// ListRooms implements RepositoryInterface.ListRooms
func (r *MemoryRepository) ListRooms(_ context.Context) ([]model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rooms []model.Room
	for _, room := range r.rooms {
		rooms = append(rooms, cloneRoom(room))
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

// UpdateRoomStatus implements RepositoryInterface.UpdateRoomStatus
func (r *MemoryRepository) UpdateRoomStatus(_ context.Context, id uuid.UUID, status model.RoomStatus, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return model.NewRoomNotFoundError(id)
	}
	if room.Version != version {
		return model.ErrOptimisticLockFailed
	}

	room.Status = status
	room.Version++
	room.UpdatedAt = r.now()
	r.rooms[id] = room
	return nil
}

// CreateBooking implements RepositoryInterface.CreateBooking
func (r *MemoryRepository) CreateBooking(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings[booking.ID] = *booking
	return nil
}

// GetActiveBooking implements RepositoryInterface.GetActiveBooking
func (r *MemoryRepository) GetActiveBooking(_ context.Context, roomID uuid.UUID) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *model.Booking
	for _, b := range r.bookings {
		if b.RoomID != roomID || b.Status != model.BookingStatusActive {
			continue
		}
		if latest == nil || b.StartTime.After(latest.StartTime) {
			candidate := b
			latest = &candidate
		}
	}
	if latest == nil {
		return nil, model.ErrNoActiveBooking
	}
	return latest, nil
}

// ListLiveBookings implements RepositoryInterface.ListLiveBookings
func (r *MemoryRepository) ListLiveBookings(_ context.Context, roomID uuid.UUID) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var bookings []model.Booking
	for _, b := range r.bookings {
		if b.RoomID == roomID && b.Status == model.BookingStatusActive {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].StartTime.Before(bookings[j].StartTime) })
	return bookings, nil
}

// ListBookings implements RepositoryInterface.ListBookings
func (r *MemoryRepository) ListBookings(_ context.Context, roomID uuid.UUID) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var bookings []model.Booking
	for _, b := range r.bookings {
		if b.RoomID == roomID {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].StartTime.After(bookings[j].StartTime) })
	return bookings, nil
}

// FinalizeBooking implements RepositoryInterface.FinalizeBooking
func (r *MemoryRepository) FinalizeBooking(_ context.Context, bookingID uuid.UUID, from, to model.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[bookingID]
	if !ok || booking.Status != from {
		return fmt.Errorf("%w: id=%s status=%s", model.ErrBookingNotFound, bookingID, from)
	}

	booking.Status = to
	booking.UpdatedAt = r.now()
	r.bookings[bookingID] = booking
	return nil
}

type memorySnapshot struct {
	rooms    map[uuid.UUID]model.Room
	bookings map[uuid.UUID]model.Booking
}

// Snapshot implements database.Snapshotter.
func (r *MemoryRepository) Snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := memorySnapshot{
		rooms:    make(map[uuid.UUID]model.Room, len(r.rooms)),
		bookings: make(map[uuid.UUID]model.Booking, len(r.bookings)),
	}
	for id, room := range r.rooms {
		snap.rooms[id] = cloneRoom(room)
	}
	for id, b := range r.bookings {
		snap.bookings[id] = b
	}
	return snap
}

// Restore implements database.Snapshotter.
func (r *MemoryRepository) Restore(snapshot any) {
	snap, ok := snapshot.(memorySnapshot)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = snap.rooms
	r.bookings = snap.bookings
}
