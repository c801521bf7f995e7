package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// UNIT STATUS CONSTANTS
// =====================================================
const (
	StatusAvailable   = "available"
	StatusBorrowed    = "borrowed"
	StatusMaintenance = "maintenance"
	StatusLost        = "lost"
)

// Condition is the physical grade of a unit, ordered worst to best.
type Condition int

const (
	ConditionPoor Condition = iota + 1
	ConditionWorn
	ConditionGood
	ConditionNew
)

var conditionNames = map[Condition]string{
	ConditionPoor: "poor",
	ConditionWorn: "worn",
	ConditionGood: "good",
	ConditionNew:  "new",
}

func (c Condition) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether c is a known grade.
func (c Condition) Valid() bool {
	_, ok := conditionNames[c]
	return ok
}

// GradeDrop returns how many grades were lost between borrow and return.
// Negative drops (the unit somehow improved) clamp to zero.
func GradeDrop(before, after Condition) int {
	drop := int(before) - int(after)
	if drop < 0 {
		return 0
	}
	return drop
}

// Unit is one physical copy of a catalog title.
//
// Invariant: Status == borrowed exactly when BorrowerID is set, and exactly
// one open loan references the unit. The loan ledger maintains the loan half
// of the invariant; the registry maintains the status/borrower half.
type Unit struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TitleID    uuid.UUID  `json:"title_id" db:"title_id"`
	Status     string     `json:"status" db:"status"`
	Condition  Condition  `json:"condition" db:"condition"`
	BorrowerID *uuid.UUID `json:"borrower_id,omitempty" db:"borrower_id"`

	// Optimistic locking
	Version int `json:"version" db:"version"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsBorrowed reports whether the unit is currently out on loan.
func (u *Unit) IsBorrowed() bool {
	return u.Status == StatusBorrowed
}

// ReturnStatus decides where a unit goes after release: back to the shelf,
// or to maintenance when the reported condition is below threshold.
func ReturnStatus(cond Condition) string {
	if cond <= ConditionPoor {
		return StatusMaintenance
	}
	return StatusAvailable
}

// StatusCounts is the per-title breakdown the availability projector folds.
type StatusCounts struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Borrowed    int `json:"borrowed"`
	Maintenance int `json:"maintenance"`
	Lost        int `json:"lost"`
}
