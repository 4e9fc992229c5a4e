package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/davide122/energy-sub000/config"
	"github.com/davide122/energy-sub000/models"
	"github.com/davide122/energy-sub000/notify"
	"github.com/davide122/energy-sub000/utils"
	"github.com/davide122/energy-sub000/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// runNotificationCycle loads the active portfolio and runs one dispatch
// cycle under the Redis lock. Shared by the cron endpoint, the operator
// test-run, and the in-process runner.
func runNotificationCycle(c *gin.Context, dispatcher *notify.Dispatcher, simulate bool) {
	ctx, span := tracer.Start(c.Request.Context(), "notificationCycle")
	defer span.End()

	logger := config.GetLogger()

	lock, err := workflow.AcquireCycleLock(ctx)
	if err != nil {
		if errors.Is(err, workflow.ErrCycleAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		writeError(c, err)
		return
	}
	defer workflow.ReleaseCycleLock(ctx, lock)

	contracts, err := models.GetActiveContracts(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	summary := workflow.RunCycle(ctx, time.Now().UTC(), contracts, workflow.DefaultCycleDeps(dispatcher, logger, simulate))

	if !simulate {
		sendRunnerDigest(logger, dispatcher, summary)
		invalidateDashboardCache()
	}

	c.JSON(http.StatusOK, summary)
}

// cronNotificationsHandler is the scheduled trigger. It authenticates with a
// shared secret header instead of an operator session so a plain cron job
// can call it.
func cronNotificationsHandler(dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := config.CronSecret()
		if secret == "" || c.GetHeader("x-cron-secret") != secret {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		runNotificationCycle(c, dispatcher, false)
	}
}

// testRunNotificationsHandler runs the same cycle in simulate mode: full
// decisions, no writes, no sends.
func testRunNotificationsHandler(dispatcher *notify.Dispatcher) gin.HandlerFunc {
	logger := config.GetLogger()

	return func(c *gin.Context) {
		fields := logrus.Fields{"field": "notifications"}
		if name, ok := utils.GetUserNameFromContext(c.Request.Context()); ok {
			fields["user_name"] = name
		}
		if role, ok := utils.GetUserRoleFromContext(c.Request.Context()); ok {
			fields["user_role"] = models.UserRole(role).Display()
		}
		logger.WithFields(fields).Info("simulated notification cycle requested")

		runNotificationCycle(c, dispatcher, true)
	}
}
