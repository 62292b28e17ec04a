package store

import (
	"context"

	"barberqueue-backend/models"

	"gorm.io/gorm"
)

// NotificationLogs persists delivery attempts for diagnostics.
type NotificationLogs struct {
	db *gorm.DB
}

func NewNotificationLogs(db *gorm.DB) *NotificationLogs {
	return &NotificationLogs{db: db}
}

func (n *NotificationLogs) Record(ctx context.Context, entry models.NotificationLog) error {
	return n.db.WithContext(ctx).Create(&entry).Error
}

// Recent returns the latest attempts, newest first.
func (n *NotificationLogs) Recent(ctx context.Context, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []models.NotificationLog
	err := n.db.WithContext(ctx).Order("sent_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
