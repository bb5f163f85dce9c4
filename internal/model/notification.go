package model

import "time"

// NotificationCategory distinguishes the push kinds the worker delivers.
type NotificationCategory string

const (
	NotificationCategoryPing      NotificationCategory = "ping"      // slot is due
	NotificationCategoryBroadcast NotificationCategory = "broadcast" // researcher announcement
)

// NotificationTaskStatus is the delivery lifecycle of a task.
type NotificationTaskStatus string

const (
	NotificationTaskStatusPending    NotificationTaskStatus = "pending"
	NotificationTaskStatusProcessing NotificationTaskStatus = "processing"
	NotificationTaskStatusSuccess    NotificationTaskStatus = "success"
	NotificationTaskStatusFailed     NotificationTaskStatus = "failed"
)

// NotificationTask is the audit row for one push delivery attempt batch.
type NotificationTask struct {
	BaseModel
	TaskCode      int64                  `gorm:"uniqueIndex;not null" json:"task_code"`
	ParticipantID int64                  `gorm:"not null;index:idx_notification_tasks_participant" json:"participant_id"`
	Category      NotificationCategory   `gorm:"type:varchar(32);not null" json:"category"`
	Payload       JSONB                  `gorm:"type:jsonb;not null" json:"payload"`
	Status        NotificationTaskStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_notification_tasks_status" json:"status"`
	RetryCount    int                    `gorm:"type:smallint;not null;default:0" json:"retry_count"`
	ScheduledAt   time.Time              `gorm:"type:timestamptz;not null;index:idx_notification_tasks_status" json:"scheduled_at"`
	ProcessedAt   *time.Time             `gorm:"type:timestamptz" json:"processed_at,omitempty"`
}

func (NotificationTask) TableName() string {
	return "notification_tasks"
}

// DeviceToken maps a participant to a push destination. A participant may
// have several devices; invalid tokens are pruned after delivery failures.
type DeviceToken struct {
	BaseModel
	ParticipantID int64      `gorm:"not null;index:idx_device_tokens_participant" json:"participant_id"`
	Token         string     `gorm:"uniqueIndex;type:varchar(255);not null" json:"token"`
	Platform      string     `gorm:"type:varchar(16);not null" json:"platform"`
	LastSeenAt    *time.Time `gorm:"type:timestamptz" json:"last_seen_at,omitempty"`
}

func (DeviceToken) TableName() string {
	return "device_tokens"
}
