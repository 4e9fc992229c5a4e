package config

import (
	"os"
	"strconv"
	"strings"
)

// NotificationRunnerEnabled controls the in-process daily cycle runner.
//
// Set via env:
// - NOTIFICATION_DIRECT_RUNNER=true|false
//
// Default: run. Deployments that trigger cycles through the cron endpoint
// (external scheduler + CRON_SECRET) should set this to false to avoid an
// extra in-process pass; the calendar-day dedup key makes an overlap safe
// either way.
func NotificationRunnerEnabled() bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv("NOTIFICATION_DIRECT_RUNNER")))
	if val == "false" {
		return false
	}
	if val == "true" {
		return true
	}
	return true
}

// CronSecret authorizes scheduled invocations of the notification cycle
// endpoint. Empty means the endpoint is disabled.
func CronSecret() string {
	return strings.TrimSpace(os.Getenv("CRON_SECRET"))
}

// AdminEmail receives the per-cycle digest. Empty disables the digest.
func AdminEmail() string {
	return strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
}

// CheckpointOverride parses a comma-separated day list from env, e.g.
// EXPIRY_CHECKPOINTS="30,15,7,1,0". Returns nil (use defaults) when unset
// or malformed.
func CheckpointOverride(envKey string) []int {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil
		}
		days = append(days, n)
	}
	return days
}
