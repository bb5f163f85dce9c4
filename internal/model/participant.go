package model

import (
	"time"

	"EmaQuest/internal/game"
)

// ParticipantStatus is the enrollment lifecycle of a participant.
type ParticipantStatus string

const (
	// ParticipantStatusEnrolled: nickname reserved, onboarding not finished.
	ParticipantStatusEnrolled ParticipantStatus = "enrolled"
	// ParticipantStatusActive: onboarded, study running.
	ParticipantStatusActive ParticipantStatus = "active"
	// ParticipantStatusFinished: all 49 slots resolved.
	ParticipantStatusFinished ParticipantStatus = "finished"
)

// Participant is the per-participant row. The schedule grid and the badge
// list live in jsonb columns; responses live in their own table and are
// joined back when assembling a game.GameState.
type Participant struct {
	BaseModel
	PublicID int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	Nickname string `gorm:"uniqueIndex;type:varchar(64);not null" json:"nickname"`
	Avatar   string `gorm:"type:varchar(64);not null;default:''" json:"avatar"`

	Status         ParticipantStatus `gorm:"type:varchar(16);not null;default:'enrolled';index:idx_participants_status" json:"status"`
	HasOnboarded   bool              `gorm:"not null;default:false" json:"has_onboarded"`
	StudyStartDate *time.Time        `gorm:"type:timestamptz" json:"study_start_date,omitempty"`

	Points        int     `gorm:"not null;default:0" json:"points"`
	Level         int     `gorm:"not null;default:1" json:"level"`
	CurrentStreak int     `gorm:"not null;default:0" json:"current_streak"`
	CompletedDays int     `gorm:"not null;default:0" json:"completed_days"`
	ResponseRate  float64 `gorm:"not null;default:0" json:"response_rate"`

	Badges           StringList        `gorm:"type:jsonb;default:'[]'" json:"badges"`
	Pings            game.ScheduleGrid `gorm:"type:jsonb" json:"pings"`
	Sociodemographic StringMap         `gorm:"type:jsonb" json:"sociodemographic,omitempty"`
}

func (Participant) TableName() string {
	return "participants"
}
