package models

import (
	"context"
	"time"

	"github.com/davide122/energy-sub000/config"
	"github.com/davide122/energy-sub000/utils"
)

// NotificationRecord is the dispatch ledger. The composite unique index on
// (contract_id, type, scheduled_date) is what makes a (contract, type, day)
// attempt at-most-once even across overlapping cycle runs: the second insert
// fails with a duplicate key and is treated as "already handled".
type NotificationRecord struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	ContractId    int                 `gorm:"not null;uniqueIndex:idx_notification_dedup,priority:1" json:"contract_id"`
	Contract      *Contract           `json:"contract"`
	Type          NotificationType    `gorm:"type:enum('PENALTY_FREE','RECOMMENDED','EXPIRY');not null;uniqueIndex:idx_notification_dedup,priority:2" json:"type"`
	ScheduledDate time.Time           `gorm:"type:date;not null;uniqueIndex:idx_notification_dedup,priority:3" json:"scheduled_date"`
	Channel       NotificationChannel `gorm:"type:enum('EMAIL','SMS','WHATSAPP','DASHBOARD');not null" json:"channel"`
	Recipient     string              `gorm:"size:255" json:"recipient"`
	Status        NotificationStatus  `gorm:"type:enum('PENDING','SENT','FAILED');not null;default:'PENDING'" json:"status"`
	SentAt        *time.Time          `json:"sent_at"`
	ErrorMessage  *string             `gorm:"size:1024" json:"error_message"`
	CorrelationId string              `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// FindNotificationsForDay returns records for one contract, type and
// calendar day. The day is matched exactly (a DATE column), never a rolling
// 24h window, so re-runs around midnight neither double-send nor skip.
func FindNotificationsForDay(ctx context.Context, contractId int, notificationType NotificationType, day time.Time) ([]NotificationRecord, error) {
	db := config.GetDB()

	var records []NotificationRecord
	err := db.WithContext(ctx).Model(&NotificationRecord{}).
		Where("contract_id = ? AND type = ? AND scheduled_date = ?",
			contractId, notificationType, utils.TruncateToDate(day)).
		Find(&records).Error
	if err != nil {
		return nil, &utils.PersistenceError{Op: "find notifications for day", Err: err}
	}
	return records, nil
}

// CreateNotificationRecord inserts a new dispatch record. A duplicate-key
// failure is surfaced unwrapped so callers can detect it with
// utils.IsDuplicateKeyErr and skip instead of failing the contract.
func CreateNotificationRecord(ctx context.Context, record *NotificationRecord) error {
	db := config.GetDB()

	record.ScheduledDate = utils.TruncateToDate(record.ScheduledDate)
	if err := db.WithContext(ctx).Create(record).Error; err != nil {
		if utils.IsDuplicateKeyErr(err) {
			return err
		}
		return &utils.PersistenceError{Op: "create notification record", Err: err}
	}
	return nil
}

func MarkNotificationSent(ctx context.Context, id int, sentAt time.Time) error {
	db := config.GetDB()

	err := db.WithContext(ctx).Model(&NotificationRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        NotificationStatusSent,
			"sent_at":       sentAt,
			"error_message": nil,
		}).Error
	if err != nil {
		return &utils.PersistenceError{Op: "mark notification sent", Err: err}
	}
	return nil
}

func MarkNotificationFailed(ctx context.Context, id int, message string) error {
	db := config.GetDB()

	if len(message) > 1024 {
		message = message[:1024]
	}
	err := db.WithContext(ctx).Model(&NotificationRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        NotificationStatusFailed,
			"error_message": &message,
		}).Error
	if err != nil {
		return &utils.PersistenceError{Op: "mark notification failed", Err: err}
	}
	return nil
}

// SweepStalePendingNotifications marks PENDING records older than maxAge as
// FAILED. A PENDING row that old means the process died between the insert
// and the send; the record stays as evidence and the operator can re-trigger.
func SweepStalePendingNotifications(ctx context.Context, maxAge time.Duration) (int64, error) {
	db := config.GetDB()

	cutoff := time.Now().UTC().Add(-maxAge)
	message := "stale PENDING record; process likely died before sending"
	result := db.WithContext(ctx).Model(&NotificationRecord{}).
		Where("status = ? AND created_at <= ?", NotificationStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":        NotificationStatusFailed,
			"error_message": &message,
		})
	if result.Error != nil {
		return 0, &utils.PersistenceError{Op: "sweep stale pending notifications", Err: result.Error}
	}
	return result.RowsAffected, nil
}

// GetNotificationsForContract lists a contract's dispatch history, newest first.
func GetNotificationsForContract(ctx context.Context, contractId int) ([]*NotificationRecord, error) {
	db := config.GetDB()

	var records []*NotificationRecord
	err := db.WithContext(ctx).Model(&NotificationRecord{}).
		Where("contract_id = ?", contractId).
		Order("scheduled_date DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
