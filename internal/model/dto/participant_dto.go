package dto

import (
	"time"

	"EmaQuest/internal/game"
)

// ParticipantSnapshot is the gamified state the app renders: progression,
// the full 7x7 grid and the derived current day.
type ParticipantSnapshot struct {
	ID             string            `json:"id"`
	Nickname       string            `json:"nickname"`
	Avatar         string            `json:"avatar"`
	Status         string            `json:"status"`
	HasOnboarded   bool              `json:"has_onboarded"`
	StudyStartDate *time.Time        `json:"study_start_date,omitempty"`
	Points         int               `json:"points"`
	Level          int               `json:"level"`
	CurrentStreak  int               `json:"current_streak"`
	CompletedDays  int               `json:"completed_days"`
	ResponseRate   float64           `json:"response_rate"`
	Badges         []string          `json:"badges"`
	CurrentDay     int               `json:"current_day"`
	Pings          game.ScheduleGrid `json:"pings"`
}

// OnboardingRequest closes onboarding with the sociodemographic answers and
// starts the study clock.
type OnboardingRequest struct {
	Sociodemographic map[string]string `json:"sociodemographic" binding:"required"`
}
