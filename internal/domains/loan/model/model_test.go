package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	due := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

	t.Run("before the due date the loan is active", func(t *testing.T) {
		l := Loan{Status: StatusActive, DueDate: due}
		assert.Equal(t, StatusActive, l.EffectiveStatus(due.Add(-time.Hour)))
	})

	t.Run("exactly at the due date the loan is still active", func(t *testing.T) {
		l := Loan{Status: StatusActive, DueDate: due}
		assert.Equal(t, StatusActive, l.EffectiveStatus(due))
	})

	t.Run("a stored active loan past due reads overdue", func(t *testing.T) {
		l := Loan{Status: StatusActive, DueDate: due}
		assert.Equal(t, StatusOverdue, l.EffectiveStatus(due.Add(time.Minute)))
	})

	t.Run("a returned loan never reads overdue", func(t *testing.T) {
		returned := due.Add(48 * time.Hour)
		l := Loan{Status: StatusReturned, DueDate: due, ReturnedAt: &returned}
		assert.Equal(t, StatusReturned, l.EffectiveStatus(due.Add(72*time.Hour)))
	})
}

func TestCanRenew(t *testing.T) {
	l := Loan{Renewals: 0, RenewalCap: 2}
	assert.True(t, l.CanRenew())

	l.Renewals = 2
	assert.False(t, l.CanRenew())
}
