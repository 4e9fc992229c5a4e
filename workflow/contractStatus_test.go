package workflow

import (
	"testing"
	"time"

	"github.com/davide122/energy-sub000/models"
)

func milestonesFor(t *testing.T, start time.Time, duration, pf int) Milestones {
	t.Helper()
	ms, err := ComputeMilestones(start, duration, pf)
	if err != nil {
		t.Fatalf("ComputeMilestones: %v", err)
	}
	return ms
}

func TestClassifyStatus_LifecyclePhases(t *testing.T) {
	// 12-month contract from 2024-01-15, penalty-free after 6:
	// penaltyFree=2024-07-15 recommended=2024-11-15 expiry=2025-01-15.
	ms := milestonesFor(t, date(2024, time.January, 15), 12, 6)

	cases := []struct {
		name string
		now  time.Time
		want models.ContractStatus
	}{
		{"before penalty-free", date(2024, time.March, 1), models.ContractStatusActive},
		{"day before penalty-free", date(2024, time.July, 14), models.ContractStatusActive},
		{"on penalty-free date", date(2024, time.July, 15), models.ContractStatusPenaltyFree},
		{"inside penalty-free window", date(2024, time.September, 1), models.ContractStatusPenaltyFree},
		{"on recommended date", date(2024, time.November, 15), models.ContractStatusRecommendedChange},
		{"recommended window", date(2024, time.November, 20), models.ContractStatusRecommendedChange},
		{"31 days before expiry", date(2024, time.December, 15), models.ContractStatusRecommendedChange},
		{"30 days before expiry", date(2024, time.December, 16), models.ContractStatusExpiringSoon},
		{"week before expiry", date(2025, time.January, 8), models.ContractStatusExpiringSoon},
		{"expiry day", date(2025, time.January, 15), models.ContractStatusExpiringSoon},
		{"day after expiry", date(2025, time.January, 16), models.ContractStatusExpired},
		{"long expired", date(2026, time.June, 1), models.ContractStatusExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyStatus(tc.now, ms); got != tc.want {
				t.Errorf("ClassifyStatus(%s) = %s, want %s", tc.now.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestClassifyStatus_MissingExpiryIsInvalid(t *testing.T) {
	ms := Milestones{
		PenaltyFreeDate: date(2024, time.July, 15),
		RecommendedDate: date(2024, time.November, 15),
	}
	if got := ClassifyStatus(date(2024, time.August, 1), ms); got != models.ContractStatusInvalidDate {
		t.Errorf("got %s, want %s", got, models.ContractStatusInvalidDate)
	}
}

func TestClassifyStatus_ExpiryUrgencyDominates(t *testing.T) {
	// Even while past the recommended date, the expiry window wins.
	ms := milestonesFor(t, date(2024, time.January, 1), 3, 1)
	now := date(2024, time.March, 20)
	if got := ClassifyStatus(now, ms); got != models.ContractStatusExpiringSoon {
		t.Errorf("got %s, want %s", got, models.ContractStatusExpiringSoon)
	}
}

func TestClassifyStatus_TruncatesTimeOfDay(t *testing.T) {
	ms := milestonesFor(t, date(2024, time.January, 15), 12, 6)
	lateOnExpiry := time.Date(2025, time.January, 15, 23, 30, 0, 0, time.UTC)
	if got := ClassifyStatus(lateOnExpiry, ms); got != models.ContractStatusExpiringSoon {
		t.Errorf("expiry day at 23:30 = %s, want %s", got, models.ContractStatusExpiringSoon)
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		from, to time.Time
		want     int
	}{
		{date(2024, time.December, 16), date(2025, time.January, 15), 30},
		{date(2025, time.January, 15), date(2025, time.January, 15), 0},
		{date(2025, time.January, 16), date(2025, time.January, 15), -1},
		{time.Date(2024, time.December, 16, 18, 0, 0, 0, time.UTC), date(2025, time.January, 15), 30},
	}
	for _, tc := range cases {
		if got := DaysBetween(tc.from, tc.to); got != tc.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestMilestonesOf(t *testing.T) {
	pf := date(2024, time.July, 15)
	expiry := date(2025, time.January, 15)
	contract := &models.Contract{PenaltyFreeDate: &pf, ExpiryDate: &expiry}

	ms := MilestonesOf(contract)
	if !ms.PenaltyFreeDate.Equal(pf) {
		t.Errorf("penalty-free = %s, want %s", ms.PenaltyFreeDate, pf)
	}
	if !ms.RecommendedDate.IsZero() {
		t.Errorf("missing recommended should be zero, got %s", ms.RecommendedDate)
	}
	if !ms.ExpiryDate.Equal(expiry) {
		t.Errorf("expiry = %s, want %s", ms.ExpiryDate, expiry)
	}
}

func TestModifiableFlags(t *testing.T) {
	start := date(2024, time.January, 15)

	// 5 calendar months in: under the fixed 6-month threshold, but past a
	// 3-month penalty-free period.
	now := date(2024, time.June, 15)
	contract := &models.Contract{StartDate: start, PenaltyFreeAfterMonths: 3}
	flags := ModifiableOf(now, contract)
	if flags.Legacy {
		t.Error("legacy flag should be false at 5 months")
	}
	if !flags.PerContract {
		t.Error("per-contract flag should be true past a 3-month penalty-free period")
	}
	if !flags.Discrepancy {
		t.Error("discrepancy should be flagged when the two answers differ")
	}

	// 7 months in with a 6-month penalty-free period: both agree.
	now = date(2024, time.August, 20)
	contract = &models.Contract{StartDate: start, PenaltyFreeAfterMonths: 6}
	flags = ModifiableOf(now, contract)
	if !flags.Legacy || !flags.PerContract {
		t.Errorf("both flags should be true at 7 months, got %+v", flags)
	}
	if flags.Discrepancy {
		t.Error("no discrepancy expected when the answers agree")
	}
}

func TestIsModifiable_AverageMonthBoundary(t *testing.T) {
	start := date(2024, time.January, 1)
	// 6 * 30.44 = 182.64 days: day 182 is under, day 183 is over.
	if IsModifiable(start.AddDate(0, 0, 182), start) {
		t.Error("182 days should not reach six average months")
	}
	if !IsModifiable(start.AddDate(0, 0, 183), start) {
		t.Error("183 days should reach six average months")
	}
}
