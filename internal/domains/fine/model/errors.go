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
	// ErrFineNotFound is returned when a fine does not exist
	ErrFineNotFound = errors.New("fine not found")

	// ErrFineAlreadyPaid is returned on a second payment attempt
	ErrFineAlreadyPaid = errors.New("fine already paid")
)

// NewFineNotFoundError creates a detailed not found error
func NewFineNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrFineNotFound, id)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrFineNotFound)
}

// IsAlreadySettledError checks if error is a double-payment rejection
func IsAlreadySettledError(err error) bool {
	return errors.Is(err, ErrFineAlreadyPaid)
}
