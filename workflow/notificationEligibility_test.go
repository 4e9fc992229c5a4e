package workflow

import (
	"testing"
	"time"

	"github.com/davide122/energy-sub000/models"
)

// The reference contract for these tests: 12 months from 2024-01-15 with a
// 6-month penalty-free period, so penaltyFree=2024-07-15,
// recommended=2024-11-15, expiry=2025-01-15.
func eligibilityFixture(t *testing.T) (*models.Contract, Milestones) {
	t.Helper()
	ms := milestonesFor(t, date(2024, time.January, 15), 12, 6)
	contract := &models.Contract{
		ID: 7,
		Client: &models.Client{
			Name:             "Mario Rossi",
			Email:            "mario.rossi@example.com",
			PreferredChannel: models.NotificationChannelEmail,
		},
		StartDate:              date(2024, time.January, 15),
		DurationMonths:         12,
		PenaltyFreeAfterMonths: 6,
	}
	return contract, ms
}

func TestDecideNotification_ExpiryCheckpoints(t *testing.T) {
	contract, ms := eligibilityFixture(t)
	cfg := DefaultCheckpoints()

	cases := []struct {
		name    string
		now     time.Time
		wantDue bool
		days    int
	}{
		{"30 days out", date(2024, time.December, 16), true, 30},
		{"15 days out", date(2024, time.December, 31), true, 15},
		{"7 days out", date(2025, time.January, 8), true, 7},
		{"1 day out", date(2025, time.January, 14), true, 1},
		{"expiry day", date(2025, time.January, 15), true, 0},
		{"20 days out is not a checkpoint", date(2024, time.December, 26), false, 20},
		{"already expired", date(2025, time.January, 16), false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := DecideNotification(tc.now, contract, ms, nil, cfg)
			if !tc.wantDue {
				if decision != nil {
					t.Fatalf("expected nothing due, got %+v", decision)
				}
				return
			}
			if decision == nil {
				t.Fatal("expected a decision, got nil")
			}
			if decision.Type != models.NotificationTypeExpiry {
				t.Errorf("type = %s, want %s", decision.Type, models.NotificationTypeExpiry)
			}
			if decision.DaysToExpiry != tc.days {
				t.Errorf("days to expiry = %d, want %d", decision.DaysToExpiry, tc.days)
			}
		})
	}
}

func TestDecideNotification_RecommendedWindow(t *testing.T) {
	contract, ms := eligibilityFixture(t)
	cfg := DefaultCheckpoints()

	// 2024-11-16 is 60 days to expiry, inside the recommended window and on a
	// checkpoint.
	decision := DecideNotification(date(2024, time.November, 16), contract, ms, nil, cfg)
	if decision == nil {
		t.Fatal("expected a decision at the 60-day checkpoint")
	}
	if decision.Type != models.NotificationTypeRecommended {
		t.Errorf("type = %s, want %s", decision.Type, models.NotificationTypeRecommended)
	}

	// Between checkpoints nothing fires even though the window is open.
	if d := DecideNotification(date(2024, time.November, 20), contract, ms, nil, cfg); d != nil {
		t.Errorf("expected nothing due between checkpoints, got %+v", d)
	}
}

func TestDecideNotification_PenaltyFreeWindow(t *testing.T) {
	contract, ms := eligibilityFixture(t)
	cfg := DefaultCheckpoints()

	cases := []struct {
		name    string
		now     time.Time
		wantDue bool
		elapsed int
	}{
		{"penalty-free day", date(2024, time.July, 15), true, 0},
		{"30 days in", date(2024, time.August, 14), true, 30},
		{"60 days in", date(2024, time.September, 13), true, 60},
		{"45 days in is not a checkpoint", date(2024, time.August, 29), false, 45},
		{"day before the window", date(2024, time.July, 14), false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := DecideNotification(tc.now, contract, ms, nil, cfg)
			if !tc.wantDue {
				if decision != nil {
					t.Fatalf("expected nothing due, got %+v", decision)
				}
				return
			}
			if decision == nil {
				t.Fatal("expected a decision, got nil")
			}
			if decision.Type != models.NotificationTypePenaltyFree {
				t.Errorf("type = %s, want %s", decision.Type, models.NotificationTypePenaltyFree)
			}
			if decision.DaysFromPenaltyFree != tc.elapsed {
				t.Errorf("days from penalty-free = %d, want %d", decision.DaysFromPenaltyFree, tc.elapsed)
			}
		})
	}
}

func TestDecideNotification_SameDayDedup(t *testing.T) {
	contract, ms := eligibilityFixture(t)
	cfg := DefaultCheckpoints()
	now := date(2024, time.December, 16)

	today := []models.NotificationRecord{{
		ContractId:    contract.ID,
		Type:          models.NotificationTypeExpiry,
		ScheduledDate: now,
	}}
	if d := DecideNotification(now, contract, ms, today, cfg); d != nil {
		t.Errorf("expected dedup against today's record, got %+v", d)
	}

	// A record of a different type today does not block.
	other := []models.NotificationRecord{{
		ContractId:    contract.ID,
		Type:          models.NotificationTypePenaltyFree,
		ScheduledDate: now,
	}}
	if d := DecideNotification(now, contract, ms, other, cfg); d == nil {
		t.Error("a different type today should not suppress the expiry notification")
	}

	// Yesterday's record of the same type does not block today's checkpoint.
	yesterday := []models.NotificationRecord{{
		ContractId:    contract.ID,
		Type:          models.NotificationTypeExpiry,
		ScheduledDate: now.AddDate(0, 0, -1),
	}}
	if d := DecideNotification(now, contract, ms, yesterday, cfg); d == nil {
		t.Error("yesterday's record should not suppress today's notification")
	}
}

func TestDecideNotification_MissingMilestones(t *testing.T) {
	contract, ms := eligibilityFixture(t)
	ms.RecommendedDate = time.Time{}
	if d := DecideNotification(date(2024, time.December, 16), contract, ms, nil, DefaultCheckpoints()); d != nil {
		t.Errorf("missing milestone should yield nothing due, got %+v", d)
	}
}

func TestDecideNotification_CheckpointOverrides(t *testing.T) {
	contract, ms := eligibilityFixture(t)
	cfg := DefaultCheckpoints()
	cfg.Expiry = []int{20}

	if d := DecideNotification(date(2024, time.December, 16), contract, ms, nil, cfg); d != nil {
		t.Errorf("30 days out should not fire with overridden checkpoints, got %+v", d)
	}
	if d := DecideNotification(date(2024, time.December, 26), contract, ms, nil, cfg); d == nil {
		t.Error("20 days out should fire with overridden checkpoints")
	}
}

func TestChannelHint(t *testing.T) {
	cases := []struct {
		name          string
		client        *models.Client
		wantChannel   models.NotificationChannel
		wantRecipient string
	}{
		{
			"nil client falls back to dashboard",
			nil,
			models.NotificationChannelDashboard, "",
		},
		{
			"preferred sms with phone",
			&models.Client{PreferredChannel: models.NotificationChannelSms, Phone: "+393331234567", Email: "a@b.it"},
			models.NotificationChannelSms, "+393331234567",
		},
		{
			"preferred whatsapp with phone",
			&models.Client{PreferredChannel: models.NotificationChannelWhatsapp, Phone: "+393331234567"},
			models.NotificationChannelWhatsapp, "+393331234567",
		},
		{
			"preferred sms without phone falls back to email",
			&models.Client{PreferredChannel: models.NotificationChannelSms, Email: "a@b.it"},
			models.NotificationChannelEmail, "a@b.it",
		},
		{
			"no contact details at all",
			&models.Client{PreferredChannel: models.NotificationChannelSms},
			models.NotificationChannelDashboard, "",
		},
		{
			"preferred email",
			&models.Client{PreferredChannel: models.NotificationChannelEmail, Email: "a@b.it", Phone: "+393331234567"},
			models.NotificationChannelEmail, "a@b.it",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			channel, recipient := channelHint(tc.client)
			if channel != tc.wantChannel || recipient != tc.wantRecipient {
				t.Errorf("channelHint = (%s, %q), want (%s, %q)", channel, recipient, tc.wantChannel, tc.wantRecipient)
			}
		})
	}
}

func TestCheckpointsFromEnv_Overrides(t *testing.T) {
	t.Setenv("EXPIRY_CHECKPOINTS", "10,5,0")
	t.Setenv("PENALTY_FREE_CHECKPOINTS", "0")

	cfg := CheckpointsFromEnv()
	if got, want := len(cfg.Expiry), 3; got != want {
		t.Fatalf("expiry checkpoints = %v, want 3 entries", cfg.Expiry)
	}
	if cfg.Expiry[0] != 10 || cfg.Expiry[1] != 5 || cfg.Expiry[2] != 0 {
		t.Errorf("expiry checkpoints = %v, want [10 5 0]", cfg.Expiry)
	}
	if len(cfg.PenaltyFree) != 1 || cfg.PenaltyFree[0] != 0 {
		t.Errorf("penalty-free checkpoints = %v, want [0]", cfg.PenaltyFree)
	}
	// Untouched windows keep the defaults.
	if got, want := len(cfg.Recommended), len(DefaultCheckpoints().Recommended); got != want {
		t.Errorf("recommended checkpoints = %v, want defaults", cfg.Recommended)
	}
}
