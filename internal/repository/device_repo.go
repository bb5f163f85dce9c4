package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"EmaQuest/internal/model"
	"EmaQuest/storage/database"
)

// DeviceRepo manages push destinations per participant.
type DeviceRepo struct {
	db *gorm.DB
}

var (
	deviceRepo *DeviceRepo
	deviceOnce sync.Once
)

func Devices() *DeviceRepo {
	deviceOnce.Do(func() {
		deviceRepo = NewDeviceRepo(database.DB())
	})
	return deviceRepo
}

func NewDeviceRepo(db *gorm.DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

// Register upserts a token. Re-registering an existing token moves it to the
// current participant and refreshes last_seen_at.
func (r *DeviceRepo) Register(ctx context.Context, participantID int64, token, platform string) error {
	now := time.Now()
	row := model.DeviceToken{
		ParticipantID: participantID,
		Token:         token,
		Platform:      platform,
		LastSeenAt:    &now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"participant_id", "platform", "last_seen_at", "deleted_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

func (r *DeviceRepo) TokensFor(ctx context.Context, participantID int64) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).Model(&model.DeviceToken{}).
		Where("participant_id = ?", participantID).
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	return tokens, nil
}

// TokensForAll returns tokens grouped by participant for broadcast fan-out.
func (r *DeviceRepo) TokensForAll(ctx context.Context, participantIDs []int64) (map[int64][]string, error) {
	var rows []model.DeviceToken
	q := r.db.WithContext(ctx)
	if len(participantIDs) > 0 {
		q = q.Where("participant_id IN ?", participantIDs)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}

	out := make(map[int64][]string)
	for _, row := range rows {
		out[row.ParticipantID] = append(out[row.ParticipantID], row.Token)
	}
	return out, nil
}

// Unregister removes a token owned by the participant. Removing a token that
// is already gone is not an error.
func (r *DeviceRepo) Unregister(ctx context.Context, participantID int64, token string) error {
	err := r.db.WithContext(ctx).
		Where("participant_id = ? AND token = ?", participantID, token).
		Delete(&model.DeviceToken{}).Error
	if err != nil {
		return fmt.Errorf("failed to unregister device token: %w", err)
	}
	return nil
}

// Prune soft-deletes tokens the provider reported invalid.
func (r *DeviceRepo) Prune(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("token IN ?", tokens).
		Delete(&model.DeviceToken{}).Error
	if err != nil {
		return fmt.Errorf("failed to prune device tokens: %w", err)
	}
	return nil
}
