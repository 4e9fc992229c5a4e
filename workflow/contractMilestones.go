package workflow

import (
	"time"

	"github.com/davide122/energy-sub000/utils"
)

const (
	MinDurationMonths = 1
	MaxDurationMonths = 60
)

// Milestones are the three lifecycle dates derived from a contract's start
// date, duration and penalty-free offset. Always recomputed as a set.
type Milestones struct {
	PenaltyFreeDate time.Time
	RecommendedDate time.Time
	ExpiryDate      time.Time
}

// ComputeMilestones derives the lifecycle dates:
//
//	penaltyFree = start + penaltyFreeAfterMonths months
//	recommended = start + max(penaltyFreeAfterMonths, durationMonths-2) months
//	expiry      = start + durationMonths months
//
// The recommended rule is the single reconciled formula: two months before
// expiry, but never earlier than the penalty-free date.
//
// Pure date arithmetic (y/m/d in UTC); no clock, no side effects. Inputs are
// re-validated here even though callers validate first.
func ComputeMilestones(startDate time.Time, durationMonths, penaltyFreeAfterMonths int) (Milestones, error) {
	if startDate.IsZero() {
		return Milestones{}, utils.NewValidationError("start_date", "is required")
	}
	if durationMonths < MinDurationMonths || durationMonths > MaxDurationMonths {
		return Milestones{}, utils.NewValidationError("duration_months", "must be between 1 and 60")
	}
	if penaltyFreeAfterMonths < 1 || penaltyFreeAfterMonths >= durationMonths {
		return Milestones{}, utils.NewValidationError("penalty_free_after_months", "must be at least 1 and shorter than the duration")
	}

	start := utils.TruncateToDate(startDate)
	recommendedMonths := durationMonths - 2
	if penaltyFreeAfterMonths > recommendedMonths {
		recommendedMonths = penaltyFreeAfterMonths
	}

	return Milestones{
		PenaltyFreeDate: AddCalendarMonths(start, penaltyFreeAfterMonths),
		RecommendedDate: AddCalendarMonths(start, recommendedMonths),
		ExpiryDate:      AddCalendarMonths(start, durationMonths),
	}, nil
}

// AddCalendarMonths advances the month field and clamps the day-of-month to
// the last valid day of the target month (Jan 31 + 1 month = Feb 28/29).
// time.Time.AddDate would normalize Jan 31 + 1m into Mar 2/3 instead.
func AddCalendarMonths(d time.Time, months int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, time.Month(int(m)+months), 1, 0, 0, 0, 0, time.UTC)
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
