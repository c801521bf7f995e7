package model

import (
	"time"

	"github.com/google/uuid"
)

// ===================================
// ROOM STATUS
// ===================================

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

// Valid reports whether the status is a known one.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomStatusAvailable, RoomStatusOccupied, RoomStatusMaintenance:
		return true
	}
	return false
}

// ===================================
// BOOKING STATUS
// ===================================

type BookingStatus string

const (
	// BookingStatusActive is the only live state; everything else is
	// immutable history.
	BookingStatusActive BookingStatus = "active"

	// BookingStatusCompleted means the interval ran out on its own.
	BookingStatusCompleted BookingStatus = "completed"

	// BookingStatusEnded means the holder gave the room back early.
	BookingStatusEnded BookingStatus = "ended"

	BookingStatusCancelled BookingStatus = "cancelled"
)

// Terminal reports whether the booking can no longer change.
func (s BookingStatus) Terminal() bool {
	return s != BookingStatusActive
}

// ===================================
// ENTITIES
// ===================================

// Room is a bookable study space. It owns at most one active booking at a
// time plus the history of past ones.
type Room struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Capacity  int        `json:"capacity" db:"capacity"`
	Features  []string   `json:"features" db:"features"`
	Status    RoomStatus `json:"status" db:"status"`
	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Booking is a reserved half-open interval [StartTime, EndTime) on a room.
type Booking struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	RoomID     uuid.UUID     `json:"room_id" db:"room_id"`
	BorrowerID uuid.UUID     `json:"borrower_id" db:"borrower_id"`
	StartTime  time.Time     `json:"start_time" db:"start_time"`
	EndTime    time.Time     `json:"end_time" db:"end_time"`
	PartySize  int           `json:"party_size" db:"party_size"`
	Purpose    string        `json:"purpose" db:"purpose"`
	Status     BookingStatus `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// Expired reports whether an active booking's interval has already run out.
// The end bound is exclusive, so end == now counts as expired.
func (b *Booking) Expired(now time.Time) bool {
	return b.Status == BookingStatusActive && !now.Before(b.EndTime)
}

// Overlaps is the half-open interval intersection test:
// two bookings collide iff aStart < bEnd && bStart < aEnd. Back-to-back
// intervals sharing a boundary instant do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapsInterval tests the candidate interval against this booking.
func (b *Booking) OverlapsInterval(start, end time.Time) bool {
	return Overlaps(start, end, b.StartTime, b.EndTime)
}
