package services

import (
	"time"

	"biblio-circulate/internal/core/domain"
)

// FinePolicy holds the role-based fine rules. All functions are pure: the
// caller supplies now explicitly, and a quote and its settlement within one
// request must reuse the same instant.
type FinePolicy struct {
	RatePerDay       int64
	TeacherGraceDays int
	DefaultGraceDays int
}

// DefaultFinePolicy returns the current library policy
func DefaultFinePolicy() FinePolicy {
	return FinePolicy{
		RatePerDay:       10,
		TeacherGraceDays: 2,
		DefaultGraceDays: 1,
	}
}

// GraceDays returns the grace period for a borrower role
func (p FinePolicy) GraceDays(role domain.Role) int {
	if role == domain.RoleTeacher {
		return p.TeacherGraceDays
	}
	return p.DefaultGraceDays
}

// DaysLate returns how many whole-or-partial days have passed since the due
// date, zero when the loan is not yet overdue. A partial day counts as a full
// day (ceiling).
func DaysLate(dueDate, now time.Time) int {
	late := now.Sub(dueDate)
	if late <= 0 {
		return 0
	}
	days := int(late / (24 * time.Hour))
	if late%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// Fine computes the fine owed on a loan: days late minus the role's grace
// period, floored at zero, times the per-day rate. Never negative; an early
// return earns no credit.
func (p FinePolicy) Fine(dueDate time.Time, role domain.Role, now time.Time) int64 {
	days := DaysLate(dueDate, now)
	chargeable := days - p.GraceDays(role)
	if chargeable <= 0 {
		return 0
	}
	return int64(chargeable) * p.RatePerDay
}
