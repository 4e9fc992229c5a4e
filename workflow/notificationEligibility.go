package workflow

import (
	"time"

	"github.com/davide122/energy-sub000/config"
	"github.com/davide122/energy-sub000/models"
	"github.com/davide122/energy-sub000/utils"
)

// CheckpointConfig lists the discrete days at which each reminder window
// fires. Reminders go out only at checkpoints, not every day a contract sits
// in a window, so a contract that stays penalty-free for months produces
// three notifications, not ninety.
type CheckpointConfig struct {
	// Expiry: days-to-expiry values inside the 30-day expiry window.
	Expiry []int
	// Recommended: days-to-expiry values inside the recommended window.
	Recommended []int
	// PenaltyFree: days elapsed since the penalty-free date.
	PenaltyFree []int
}

func DefaultCheckpoints() CheckpointConfig {
	return CheckpointConfig{
		Expiry:      []int{30, 15, 7, 1, 0},
		Recommended: []int{60, 45, 30},
		PenaltyFree: []int{0, 30, 60},
	}
}

// CheckpointsFromEnv applies EXPIRY_CHECKPOINTS / RECOMMENDED_CHECKPOINTS /
// PENALTY_FREE_CHECKPOINTS overrides on top of the defaults.
func CheckpointsFromEnv() CheckpointConfig {
	cfg := DefaultCheckpoints()
	if v := config.CheckpointOverride("EXPIRY_CHECKPOINTS"); v != nil {
		cfg.Expiry = v
	}
	if v := config.CheckpointOverride("RECOMMENDED_CHECKPOINTS"); v != nil {
		cfg.Recommended = v
	}
	if v := config.CheckpointOverride("PENALTY_FREE_CHECKPOINTS"); v != nil {
		cfg.PenaltyFree = v
	}
	return cfg
}

// NotificationDecision says which notification is due today and where to
// send it. A DASHBOARD channel means record-only: the caller still writes a
// record for history, but attempts no external send.
type NotificationDecision struct {
	Type                models.NotificationType
	Channel             models.NotificationChannel
	Recipient           string
	DaysToExpiry        int
	DaysFromPenaltyFree int
}

// DecideNotification evaluates one contract for "now": picks the candidate
// window (most urgent first), gates it on the window's checkpoints, then
// drops it if a record for the same (contract, type) already exists today.
// Returns nil when nothing is due. Never fails: a contract with unusable
// dates is simply not due (the caller logs it as a data-quality skip).
func DecideNotification(now time.Time, contract *models.Contract, ms Milestones, todaysRecords []models.NotificationRecord, cfg CheckpointConfig) *NotificationDecision {
	if ms.ExpiryDate.IsZero() || ms.PenaltyFreeDate.IsZero() || ms.RecommendedDate.IsZero() {
		return nil
	}

	today := utils.TruncateToDate(now)
	expiry := utils.TruncateToDate(ms.ExpiryDate)
	recommended := utils.TruncateToDate(ms.RecommendedDate)
	penaltyFree := utils.TruncateToDate(ms.PenaltyFreeDate)

	daysToExpiry := DaysBetween(today, expiry)
	daysFromPenaltyFree := DaysBetween(penaltyFree, today)

	var candidate models.NotificationType
	switch {
	case daysToExpiry >= 0 && daysToExpiry <= ExpiringSoonDays:
		if !containsDay(cfg.Expiry, daysToExpiry) {
			return nil
		}
		candidate = models.NotificationTypeExpiry
	case !today.Before(recommended) && daysToExpiry > ExpiringSoonDays:
		if !containsDay(cfg.Recommended, daysToExpiry) {
			return nil
		}
		candidate = models.NotificationTypeRecommended
	case !today.Before(penaltyFree) && today.Before(recommended):
		if !containsDay(cfg.PenaltyFree, daysFromPenaltyFree) {
			return nil
		}
		candidate = models.NotificationTypePenaltyFree
	default:
		return nil
	}

	// Same-calendar-day dedup. The lookup the caller passes in is already
	// scoped to today; the type check here keeps the contract safe against a
	// wider lookup too.
	for _, record := range todaysRecords {
		if record.Type == candidate && utils.TruncateToDate(record.ScheduledDate).Equal(today) {
			return nil
		}
	}

	channel, recipient := channelHint(contract.Client)

	return &NotificationDecision{
		Type:                candidate,
		Channel:             channel,
		Recipient:           recipient,
		DaysToExpiry:        daysToExpiry,
		DaysFromPenaltyFree: daysFromPenaltyFree,
	}
}

// channelHint picks the outbound channel. The client's preferred channel
// wins when it is actually contactable; otherwise email when on file;
// otherwise DASHBOARD, so the cycle can still record the event for history.
func channelHint(client *models.Client) (models.NotificationChannel, string) {
	if client == nil {
		return models.NotificationChannelDashboard, ""
	}
	switch client.PreferredChannel {
	case models.NotificationChannelSms, models.NotificationChannelWhatsapp:
		if client.Phone != "" {
			return client.PreferredChannel, client.Phone
		}
	}
	if client.Email != "" {
		return models.NotificationChannelEmail, client.Email
	}
	return models.NotificationChannelDashboard, ""
}

func containsDay(days []int, d int) bool {
	for _, v := range days {
		if v == d {
			return true
		}
	}
	return false
}
