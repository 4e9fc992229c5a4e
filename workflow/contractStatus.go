package workflow

import (
	"time"

	"github.com/davide122/energy-sub000/models"
	"github.com/davide122/energy-sub000/utils"
)

// ExpiringSoonDays is the "≤ N days remaining" window for EXPIRING_SOON.
const ExpiringSoonDays = 30

// averageDaysPerMonth is used only by the legacy "modifiable" flag, which
// measures elapsed months as elapsed-days / 30.44 rather than by calendar.
const averageDaysPerMonth = 30.44

// legacyModifiableMonths is the fixed 6-month threshold the modifiable flag
// has always used, independent of each contract's own penalty-free period.
const legacyModifiableMonths = 6

// ClassifyStatus derives the display/alerting status for "now". Priority,
// first match wins: INVALID_DATE, EXPIRED, EXPIRING_SOON,
// RECOMMENDED_CHANGE, PENALTY_FREE, ACTIVE. Expiry urgency always dominates;
// among the rest, recommended-change outranks the broader penalty-free
// window it sits inside.
func ClassifyStatus(now time.Time, ms Milestones) models.ContractStatus {
	if ms.ExpiryDate.IsZero() {
		return models.ContractStatusInvalidDate
	}

	today := utils.TruncateToDate(now)
	expiry := utils.TruncateToDate(ms.ExpiryDate)

	if today.After(expiry) {
		return models.ContractStatusExpired
	}
	if DaysBetween(today, expiry) <= ExpiringSoonDays {
		return models.ContractStatusExpiringSoon
	}
	if !ms.RecommendedDate.IsZero() && !today.Before(utils.TruncateToDate(ms.RecommendedDate)) {
		return models.ContractStatusRecommendedChange
	}
	if !ms.PenaltyFreeDate.IsZero() && !today.Before(utils.TruncateToDate(ms.PenaltyFreeDate)) {
		return models.ContractStatusPenaltyFree
	}
	return models.ContractStatusActive
}

// DaysBetween counts whole calendar days from one date to another.
// Both inputs are truncated first, so partial days round up the way
// ceil((to - now) / 1 day) does for a mid-day "now". Negative when to < from.
func DaysBetween(from, to time.Time) int {
	f := utils.TruncateToDate(from)
	t := utils.TruncateToDate(to)
	return int(t.Sub(f) / (24 * time.Hour))
}

// MilestonesOf reads the persisted derived dates off a contract. Zero values
// stand in for missing dates; ClassifyStatus maps a missing expiry to
// INVALID_DATE.
func MilestonesOf(contract *models.Contract) Milestones {
	var ms Milestones
	if contract.PenaltyFreeDate != nil {
		ms.PenaltyFreeDate = *contract.PenaltyFreeDate
	}
	if contract.RecommendedDate != nil {
		ms.RecommendedDate = *contract.RecommendedDate
	}
	if contract.ExpiryDate != nil {
		ms.ExpiryDate = *contract.ExpiryDate
	}
	return ms
}

// IsModifiable is the legacy listing-page flag: six average months elapsed
// since start. Kept as a convenience alongside ContractStatus, not a
// replacement for it.
func IsModifiable(now, startDate time.Time) bool {
	elapsed := utils.TruncateToDate(now).Sub(utils.TruncateToDate(startDate))
	months := elapsed.Hours() / 24 / averageDaysPerMonth
	return months >= legacyModifiableMonths
}

// IsModifiablePerContract answers the same question using the contract's own
// penalty-free period instead of the fixed six months.
func IsModifiablePerContract(now, startDate time.Time, penaltyFreeAfterMonths int) bool {
	elapsed := utils.TruncateToDate(now).Sub(utils.TruncateToDate(startDate))
	months := elapsed.Hours() / 24 / averageDaysPerMonth
	return months >= float64(penaltyFreeAfterMonths)
}

// ModifiableFlags pairs the two modifiable answers so callers can surface
// the discrepancy when a contract's penalty-free period differs from six
// months, instead of silently picking one.
type ModifiableFlags struct {
	Legacy      bool `json:"legacy"`
	PerContract bool `json:"per_contract"`
	Discrepancy bool `json:"discrepancy"`
}

func ModifiableOf(now time.Time, contract *models.Contract) ModifiableFlags {
	legacy := IsModifiable(now, contract.StartDate)
	perContract := IsModifiablePerContract(now, contract.StartDate, contract.PenaltyFreeAfterMonths)
	return ModifiableFlags{
		Legacy:      legacy,
		PerContract: perContract,
		Discrepancy: legacy != perContract,
	}
}
