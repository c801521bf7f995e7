package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrTitleNotFound is returned when a catalog title does not exist
	ErrTitleNotFound = errors.New("title not found")

	// ErrTitleAlreadyExists is returned on duplicate title creation
	ErrTitleAlreadyExists = errors.New("title already exists")
)

// NewTitleNotFoundError creates a detailed not found error
func NewTitleNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrTitleNotFound, id)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTitleNotFound)
}
