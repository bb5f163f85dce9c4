package dto

import (
	"time"

	"EmaQuest/internal/game"
)

// NextPingData describes the next pending slot without opening it.
// ScheduledAt and SecondsUntil are omitted when the slot's calendar time
// cannot be derived (onboarding not done or slot index past the configured
// slot list); SecondsUntil is 0 once the slot is due.
type NextPingData struct {
	HasNext      bool       `json:"has_next"`
	Day          int        `json:"day,omitempty"`
	Index        int        `json:"index,omitempty"`
	PingType     string     `json:"ping_type,omitempty"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	SecondsUntil int        `json:"seconds_until"`
	Completed    int        `json:"completed"`
	Missed       int        `json:"missed"`
}

// OpenFlowData is returned when a flow opens: the slot, the first step and
// the auto-miss deadline.
type OpenFlowData struct {
	Day      int       `json:"day"`
	Index    int       `json:"index"`
	PingType string    `json:"ping_type"`
	Step     StepData  `json:"step"`
	Deadline time.Time `json:"deadline"`
}

// StepData is one screen of the instrument sequence.
type StepData struct {
	Kind       string   `json:"kind"`
	Prompt     string   `json:"prompt"`
	Adjectives []string `json:"adjectives,omitempty"` // PANAS steps only
}

// AdvanceRequest submits the payload for the current step. Exactly one of
// the payload fields must be set, matching the step kind.
type AdvanceRequest struct {
	SAM         *SAMBody         `json:"sam,omitempty"`
	FeedContext *FeedContextBody `json:"feed_context,omitempty"`
	PANAS       map[string]int   `json:"panas,omitempty"`
	EndOfDayLog *EndOfDayLogBody `json:"end_of_day_log,omitempty"`
}

type SAMBody struct {
	Pleasure  int `json:"pleasure" binding:"required"`
	Arousal   int `json:"arousal" binding:"required"`
	Dominance int `json:"dominance" binding:"required"`
}

type FeedContextBody struct {
	WasWatchingFeed bool `json:"was_watching_feed"`
}

type EndOfDayLogBody struct {
	SleepQuality    int                    `json:"sleep_quality" binding:"required"`
	StressfulEvents string                 `json:"stressful_events"`
	ScreenTimeLog   []game.ScreenTimeEntry `json:"screen_time_log"`
}

// AdvanceData is the step-transition result: either the next step, or the
// completion summary when the flow finished.
type AdvanceData struct {
	Done      bool                 `json:"done"`
	Step      *StepData            `json:"step,omitempty"`
	Completed *CompletionData      `json:"completed,omitempty"`
	State     *ParticipantSnapshot `json:"state,omitempty"`
}

// CompletionData summarizes the finished slot for the celebration screen.
type CompletionData struct {
	Day          int `json:"day"`
	Index        int `json:"index"`
	PointsEarned int `json:"points_earned"`
	Points       int `json:"points"`
	Level        int `json:"level"`
}

// CancelData reports the slot a cancellation marked missed.
type CancelData struct {
	Day   int `json:"day"`
	Index int `json:"index"`
}
