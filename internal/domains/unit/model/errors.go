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
	// ErrUnitNotFound is returned when a unit does not exist
	ErrUnitNotFound = errors.New("unit not found")

	// ErrNoUnitsAvailable is returned when a title has no available copies
	ErrNoUnitsAvailable = errors.New("no units available for this title")

	// ErrUnitNotBorrowed is returned when releasing a unit that is not out on loan
	ErrUnitNotBorrowed = errors.New("unit is not borrowed")

	// ErrInvalidCondition is returned for an unknown condition grade
	ErrInvalidCondition = errors.New("invalid condition grade")

	// ErrInvalidStatus is returned for an unknown unit status
	ErrInvalidStatus = errors.New("invalid unit status")

	// ErrOptimisticLockFailed is returned when a concurrent update won the race
	ErrOptimisticLockFailed = errors.New("optimistic lock failed: unit was modified by another transaction")
)

// ===================================
// ERROR HELPERS
// ===================================

// NewUnitNotFoundError creates a detailed not found error
func NewUnitNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrUnitNotFound, id)
}

// NewNoUnitsAvailableError creates a detailed no-units error
func NewNoUnitsAvailableError(titleID uuid.UUID) error {
	return fmt.Errorf("%w: title_id=%s", ErrNoUnitsAvailable, titleID)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUnitNotFound)
}

// IsResourceUnavailableError checks if error means no copy could be claimed
func IsResourceUnavailableError(err error) bool {
	return errors.Is(err, ErrNoUnitsAvailable)
}

// IsInvalidStateError checks if error is a lifecycle-state violation
func IsInvalidStateError(err error) bool {
	return errors.Is(err, ErrUnitNotBorrowed)
}
