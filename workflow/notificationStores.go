package workflow

import (
	"context"
	"time"

	"github.com/davide122/energy-sub000/models"
	"github.com/sirupsen/logrus"
)

// gorm-backed collaborators for RunCycle. Thin adapters over the models
// store functions; tests use fakes instead.

type gormContractStore struct{}

func (gormContractStore) UpdateMilestones(ctx context.Context, contractId int, ms Milestones) error {
	return models.UpdateContractMilestones(ctx, contractId, ms.PenaltyFreeDate, ms.RecommendedDate, ms.ExpiryDate)
}

type gormNotificationHistory struct{}

func (gormNotificationHistory) FindForDay(ctx context.Context, contractId int, notificationType models.NotificationType, day time.Time) ([]models.NotificationRecord, error) {
	return models.FindNotificationsForDay(ctx, contractId, notificationType, day)
}

type gormNotificationWriter struct{}

func (gormNotificationWriter) Create(ctx context.Context, record *models.NotificationRecord) error {
	return models.CreateNotificationRecord(ctx, record)
}

func (gormNotificationWriter) MarkSent(ctx context.Context, id int, sentAt time.Time) error {
	return models.MarkNotificationSent(ctx, id, sentAt)
}

func (gormNotificationWriter) MarkFailed(ctx context.Context, id int, message string) error {
	return models.MarkNotificationFailed(ctx, id, message)
}

// DefaultCycleDeps wires the database-backed collaborators plus the given
// sender. Checkpoints come from env (defaults unless overridden).
func DefaultCycleDeps(sender ChannelSender, logger *logrus.Logger, simulate bool) CycleDeps {
	return CycleDeps{
		Contracts:   gormContractStore{},
		History:     gormNotificationHistory{},
		Records:     gormNotificationWriter{},
		Sender:      sender,
		Checkpoints: CheckpointsFromEnv(),
		Logger:      logger,
		Simulate:    simulate,
	}
}
