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
	// ErrLoanNotFound is returned when a loan does not exist
	ErrLoanNotFound = errors.New("loan not found")

	// ErrLoanNotActive is returned when renewing or returning a closed loan
	ErrLoanNotActive = errors.New("loan is not active")

	// ErrLoanOverdue is returned when renewing an overdue loan; overdue
	// loans must be returned and fined before anything else
	ErrLoanOverdue = errors.New("loan is overdue and cannot be renewed")

	// ErrRenewalLimitReached is returned when the renewal cap is exhausted
	ErrRenewalLimitReached = errors.New("renewal limit reached")

	// ErrBorrowerHasOverdueLoans blocks borrowing while any loan is overdue
	ErrBorrowerHasOverdueLoans = errors.New("borrower has overdue loans")

	// ErrBorrowerHasPendingFines blocks borrowing while any fine is unpaid
	ErrBorrowerHasPendingFines = errors.New("borrower has pending fines")

	// ErrDuplicateTitleLoan blocks a second concurrent loan of the same title
	ErrDuplicateTitleLoan = errors.New("borrower already holds a loan for this title")

	// ErrOptimisticLockFailed is returned when a concurrent update won the race
	ErrOptimisticLockFailed = errors.New("optimistic lock failed: loan was modified by another transaction")
)

// ===================================
// ERROR HELPERS
// ===================================

// NewLoanNotFoundError creates a detailed not found error
func NewLoanNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrLoanNotFound, id)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrLoanNotFound)
}

// IsPolicyViolationError checks if error is a lending-policy rejection
func IsPolicyViolationError(err error) bool {
	return errors.Is(err, ErrBorrowerHasOverdueLoans) ||
		errors.Is(err, ErrBorrowerHasPendingFines) ||
		errors.Is(err, ErrDuplicateTitleLoan) ||
		errors.Is(err, ErrRenewalLimitReached) ||
		errors.Is(err, ErrLoanOverdue)
}

// IsInvalidStateError checks if error is a lifecycle-state violation
func IsInvalidStateError(err error) bool {
	return errors.Is(err, ErrLoanNotActive)
}
