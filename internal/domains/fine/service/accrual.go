package service

import (
	"time"

	"github.com/shopspring/decimal"

	catalogModel "library-backend/internal/domains/catalog/model"
	unitModel "library-backend/internal/domains/unit/model"
)

// ComputeOverdueFine returns the overdue charge for a loan returned at
// returnedAt against dueDate. Any partial day of lateness counts as a full
// day; returning exactly on the due date is free. The result is
// non-decreasing in the lateness.
func ComputeOverdueFine(dueDate, returnedAt time.Time, perDayRate decimal.Decimal) decimal.Decimal {
	late := returnedAt.Sub(dueDate)
	if late <= 0 {
		return decimal.Zero
	}

	days := int64(late / (24 * time.Hour))
	if late%(24*time.Hour) > 0 {
		days++
	}

	return perDayRate.Mul(decimal.NewFromInt(days))
}

// ComputeDamageFine returns the damage charge for a unit that came back in a
// worse condition than it left. A drop below one full grade is free; larger
// drops are looked up in the title's damage schedule.
func ComputeDamageFine(before, after unitModel.Condition, schedule catalogModel.DamageSchedule) decimal.Decimal {
	return schedule.FeeFor(unitModel.GradeDrop(before, after))
}
