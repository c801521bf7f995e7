package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ===================================
// DOMAIN ERRORS
// ===================================

var (
	// ErrRoomNotFound is returned when a room does not exist
	ErrRoomNotFound = errors.New("room not found")

	// ErrBookingNotFound is returned when a booking does not exist
	ErrBookingNotFound = errors.New("booking not found")

	// ErrRoomNotAvailable is returned when the room is occupied or in maintenance
	ErrRoomNotAvailable = errors.New("room is not available")

	// ErrInvalidInterval is returned for a past start or an empty/negative interval
	ErrInvalidInterval = errors.New("invalid booking interval")

	// ErrTooFarAhead is returned when the start exceeds the advance window
	ErrTooFarAhead = errors.New("booking starts too far ahead")

	// ErrPastClosingTime is returned when the interval runs past closing
	ErrPastClosingTime = errors.New("booking ends past closing time")

	// ErrCapacityExceeded is returned when the party does not fit the room policy
	ErrCapacityExceeded = errors.New("party size outside room capacity limits")

	// ErrBookingOverlap is returned when the interval collides with a live booking
	ErrBookingOverlap = errors.New("interval overlaps an existing booking")

	// ErrNotCurrentHolder is returned when someone else's booking is targeted
	ErrNotCurrentHolder = errors.New("booking belongs to another borrower")

	// ErrNoActiveBooking is returned when the room has nothing to end or cancel
	ErrNoActiveBooking = errors.New("room has no active booking")

	// ErrOptimisticLockFailed is returned when a concurrent update won the race
	ErrOptimisticLockFailed = errors.New("optimistic lock failed: room was modified by another transaction")
)

// ===================================
// ERROR HELPERS
// ===================================

// NewRoomNotFoundError creates a detailed not found error
func NewRoomNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrRoomNotFound, id)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrBookingNotFound)
}

// IsResourceUnavailableError checks if error means the room slot could not be claimed
func IsResourceUnavailableError(err error) bool {
	return errors.Is(err, ErrRoomNotAvailable) || errors.Is(err, ErrBookingOverlap)
}

// IsPolicyViolationError checks if error is a booking policy rejection
func IsPolicyViolationError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrTooFarAhead) ||
		errors.Is(err, ErrPastClosingTime) ||
		errors.Is(err, ErrCapacityExceeded)
}

// IsInvalidStateError checks if error is an end/cancel state violation
func IsInvalidStateError(err error) bool {
	return errors.Is(err, ErrNoActiveBooking) || errors.Is(err, ErrNotCurrentHolder)
}
