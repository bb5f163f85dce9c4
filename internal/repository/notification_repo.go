package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"EmaQuest/internal/model"
	"EmaQuest/storage/database"
)

// NotificationRepo is the audit trail of push deliveries.
type NotificationRepo struct {
	db *gorm.DB
}

var (
	notificationRepo *NotificationRepo
	notificationOnce sync.Once
)

func Notifications() *NotificationRepo {
	notificationOnce.Do(func() {
		notificationRepo = NewNotificationRepo(database.DB())
	})
	return notificationRepo
}

func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(ctx context.Context, task *model.NotificationTask) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create notification task: %w", err)
	}
	return nil
}

// MarkResult finalizes a task after the worker's delivery attempt.
func (r *NotificationRepo) MarkResult(ctx context.Context, taskCode int64, status model.NotificationTaskStatus) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Model(&model.NotificationTask{}).
		Where("task_code = ?", taskCode).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_at": &now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update notification task: %w", err)
	}
	return nil
}

func (r *NotificationRepo) IncrementRetry(ctx context.Context, taskCode int64) error {
	err := r.db.WithContext(ctx).Model(&model.NotificationTask{}).
		Where("task_code = ?", taskCode).
		Update("retry_count", gorm.Expr("retry_count + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment retry count: %w", err)
	}
	return nil
}
