package workflow

import (
	"testing"
	"time"

	"github.com/davide122/energy-sub000/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeMilestones_StandardContract(t *testing.T) {
	// 12-month contract starting mid-month, penalty-free after 6.
	ms, err := ComputeMilestones(date(2024, time.January, 15), 12, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := ms.PenaltyFreeDate, date(2024, time.July, 15); !got.Equal(want) {
		t.Errorf("penalty-free date = %s, want %s", got, want)
	}
	if got, want := ms.RecommendedDate, date(2024, time.November, 15); !got.Equal(want) {
		t.Errorf("recommended date = %s, want %s", got, want)
	}
	if got, want := ms.ExpiryDate, date(2025, time.January, 15); !got.Equal(want) {
		t.Errorf("expiry date = %s, want %s", got, want)
	}
}

func TestComputeMilestones_Ordering(t *testing.T) {
	// penaltyFree <= recommended <= expiry must hold for every valid input.
	starts := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 31),
		date(2023, time.February, 28),
		date(2024, time.December, 31),
	}
	for _, start := range starts {
		for duration := MinDurationMonths + 1; duration <= MaxDurationMonths; duration += 7 {
			for pf := 1; pf < duration; pf += 3 {
				ms, err := ComputeMilestones(start, duration, pf)
				if err != nil {
					t.Fatalf("start=%s duration=%d pf=%d: %v", start, duration, pf, err)
				}
				if ms.PenaltyFreeDate.After(ms.RecommendedDate) {
					t.Errorf("start=%s duration=%d pf=%d: penalty-free %s after recommended %s",
						start, duration, pf, ms.PenaltyFreeDate, ms.RecommendedDate)
				}
				if ms.RecommendedDate.After(ms.ExpiryDate) {
					t.Errorf("start=%s duration=%d pf=%d: recommended %s after expiry %s",
						start, duration, pf, ms.RecommendedDate, ms.ExpiryDate)
				}
			}
		}
	}
}

func TestComputeMilestones_RecommendedNeverBeforePenaltyFree(t *testing.T) {
	// A short contract where duration-2 < penaltyFreeAfterMonths: the
	// reconciled rule pins recommended to the penalty-free date.
	ms, err := ComputeMilestones(date(2024, time.March, 1), 4, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ms.RecommendedDate.Equal(ms.PenaltyFreeDate) {
		t.Errorf("recommended = %s, want pinned to penalty-free %s", ms.RecommendedDate, ms.PenaltyFreeDate)
	}
	if got, want := ms.RecommendedDate, date(2024, time.June, 1); !got.Equal(want) {
		t.Errorf("recommended = %s, want %s", got, want)
	}
}

func TestComputeMilestones_Deterministic(t *testing.T) {
	first, err := ComputeMilestones(date(2024, time.May, 31), 18, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := ComputeMilestones(date(2024, time.May, 31), 18, 9)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("run %d differed: %+v vs %+v", i, again, first)
		}
	}
}

func TestComputeMilestones_Validation(t *testing.T) {
	cases := []struct {
		name     string
		start    time.Time
		duration int
		pf       int
	}{
		{"zero start", time.Time{}, 12, 6},
		{"duration too small", date(2024, time.January, 1), 0, 1},
		{"duration too large", date(2024, time.January, 1), 61, 6},
		{"pf zero", date(2024, time.January, 1), 12, 0},
		{"pf equals duration", date(2024, time.January, 1), 12, 12},
		{"pf beyond duration", date(2024, time.January, 1), 12, 18},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeMilestones(tc.start, tc.duration, tc.pf)
			if err == nil {
				t.Fatal("expected a validation error, got nil")
			}
			if !utils.IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestAddCalendarMonths_ClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"Jan 31 + 1 into leap Feb", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"Jan 31 + 1 into non-leap Feb", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"Mar 31 + 1 into Apr", date(2024, time.March, 31), 1, date(2024, time.April, 30)},
		{"mid-month unchanged", date(2024, time.June, 15), 3, date(2024, time.September, 15)},
		{"year rollover", date(2024, time.November, 30), 3, date(2025, time.February, 28)},
		{"whole years keep the day", date(2024, time.February, 29), 12, date(2025, time.February, 28)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddCalendarMonths(tc.start, tc.months)
			if !got.Equal(tc.want) {
				t.Errorf("AddCalendarMonths(%s, %d) = %s, want %s", tc.start, tc.months, got, tc.want)
			}
		})
	}
}

func TestComputeMilestones_MonthEndStart(t *testing.T) {
	// Start on Jan 31: each derived date clamps independently.
	ms, err := ComputeMilestones(date(2024, time.January, 31), 12, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := ms.PenaltyFreeDate, date(2024, time.February, 29); !got.Equal(want) {
		t.Errorf("penalty-free = %s, want %s", got, want)
	}
	if got, want := ms.RecommendedDate, date(2024, time.November, 30); !got.Equal(want) {
		t.Errorf("recommended = %s, want %s", got, want)
	}
	if got, want := ms.ExpiryDate, date(2025, time.January, 31); !got.Equal(want) {
		t.Errorf("expiry = %s, want %s", got, want)
	}
}

func TestComputeMilestones_IgnoresTimeOfDay(t *testing.T) {
	midnight, err := ComputeMilestones(date(2024, time.April, 10), 24, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	evening, err := ComputeMilestones(time.Date(2024, time.April, 10, 23, 45, 12, 0, time.UTC), 24, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if midnight != evening {
		t.Fatalf("time of day changed the result: %+v vs %+v", midnight, evening)
	}
}
