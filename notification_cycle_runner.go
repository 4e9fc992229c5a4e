package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/davide122/energy-sub000/config"
	"github.com/davide122/energy-sub000/models"
	"github.com/davide122/energy-sub000/notify"
	"github.com/davide122/energy-sub000/workflow"
	"github.com/sirupsen/logrus"
)

// NotificationCycleRunner runs the notification cycle in-process for
// deployments without an external cron. Ticks are much more frequent than
// the daily cadence on purpose: the (contract, type, day) dedup makes extra
// runs no-ops, so a restarted pod still covers the day.
type NotificationCycleRunner struct {
	Logger     *logrus.Logger
	Dispatcher *notify.Dispatcher
	Interval   time.Duration
	// PendingMaxAge is how old a PENDING record must be before the sweep
	// declares the original send dead.
	PendingMaxAge time.Duration
}

func NewNotificationCycleRunner(logger *logrus.Logger, dispatcher *notify.Dispatcher) *NotificationCycleRunner {
	interval := time.Hour
	if raw := strings.TrimSpace(os.Getenv("NOTIFICATION_RUNNER_INTERVAL_MINUTES")); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			interval = time.Duration(minutes) * time.Minute
		}
	}
	return &NotificationCycleRunner{
		Logger:        logger,
		Dispatcher:    dispatcher,
		Interval:      interval,
		PendingMaxAge: 30 * time.Minute,
	}
}

func (r *NotificationCycleRunner) Run(ctx context.Context) {
	if r == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		r.processOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.Interval):
		}
	}
}

func (r *NotificationCycleRunner) processOnce(ctx context.Context) {
	lock, err := workflow.AcquireCycleLock(ctx)
	if err != nil {
		if errors.Is(err, workflow.ErrCycleAlreadyRunning) {
			return
		}
		config.LogError(r.Logger, "notification_cycle_runner.go", "processOnce", "AcquireCycleLock", nil, err)
		return
	}
	defer workflow.ReleaseCycleLock(ctx, lock)

	if swept, err := models.SweepStalePendingNotifications(ctx, r.PendingMaxAge); err != nil {
		config.LogError(r.Logger, "notification_cycle_runner.go", "processOnce", "SweepStalePendingNotifications", nil, err)
	} else if swept > 0 && r.Logger != nil {
		r.Logger.WithFields(logrus.Fields{
			"field": "NotificationCycleRunner",
			"swept": swept,
		}).Warn("marked stale PENDING notifications as FAILED")
	}

	contracts, err := models.GetActiveContracts(ctx)
	if err != nil {
		config.LogError(r.Logger, "notification_cycle_runner.go", "processOnce", "models.GetActiveContracts", nil, err)
		return
	}

	summary := workflow.RunCycle(ctx, time.Now().UTC(), contracts, workflow.DefaultCycleDeps(r.Dispatcher, r.Logger, false))

	if r.Logger != nil {
		r.Logger.WithFields(logrus.Fields{
			"field":       "NotificationCycleRunner",
			"evaluated":   summary.Evaluated,
			"nothing_due": summary.NothingDue,
			"sent":        summary.Sent,
			"failed":      summary.Failed,
			"skipped":     summary.Skipped,
		}).Info("notification cycle complete")
	}

	if len(summary.Outcomes) > 0 {
		sendRunnerDigest(r.Logger, r.Dispatcher, summary)
	}
}

func sendRunnerDigest(logger *logrus.Logger, dispatcher *notify.Dispatcher, summary workflow.CycleSummary) {
	adminEmail := config.AdminEmail()
	if adminEmail == "" {
		return
	}
	subject, body := notify.RenderDigest(summary)
	if err := dispatcher.SendRaw(adminEmail, subject, body); err != nil {
		config.LogError(logger, "notification_cycle_runner.go", "sendRunnerDigest", "SendRaw", adminEmail, err)
	}
}
