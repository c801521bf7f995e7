package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Title is a catalog entry for a book. Metadata only; physical copies are
// tracked as units in the unit domain. Titles are created by catalog
// management and are read-only to the allocation core.
type Title struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Author         string          `json:"author" db:"author"`
	LoanPeriodDays int             `json:"loan_period_days" db:"loan_period_days"`
	FinePerDay     decimal.Decimal `json:"fine_per_day" db:"fine_per_day"`
	DamageFees     DamageSchedule  `json:"damage_fees" db:"damage_fees"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// DamageSchedule maps a condition-grade drop (grades lost between borrow and
// return) to a fixed damage fee. A drop with no configured entry falls back
// to the largest configured drop at or below it.
type DamageSchedule map[int]decimal.Decimal

// FeeFor returns the damage fee for a grade drop. Zero when the drop is
// below one grade or the schedule is empty.
func (s DamageSchedule) FeeFor(gradeDrop int) decimal.Decimal {
	if gradeDrop < 1 || len(s) == 0 {
		return decimal.Zero
	}
	if fee, ok := s[gradeDrop]; ok {
		return fee
	}
	// Fall back to the closest configured drop below.
	for d := gradeDrop - 1; d >= 1; d-- {
		if fee, ok := s[d]; ok {
			return fee
		}
	}
	return decimal.Zero
}
