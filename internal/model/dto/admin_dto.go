package dto

import "time"

// AdminParticipantRow is one line of the researcher dashboard list.
type AdminParticipantRow struct {
	ID             string     `json:"id"`
	Nickname       string     `json:"nickname"`
	Status         string     `json:"status"`
	StudyStartDate *time.Time `json:"study_start_date,omitempty"`
	CurrentDay     int        `json:"current_day"`
	Points         int        `json:"points"`
	Level          int        `json:"level"`
	CompletedCount int        `json:"completed_count"`
	MissedCount    int        `json:"missed_count"`
	ResponseRate   float64    `json:"response_rate"`
}

// StudyStatsData aggregates compliance across the cohort.
type StudyStatsData struct {
	Participants     int     `json:"participants"`
	ActiveToday      int     `json:"active_today"`
	Finished         int     `json:"finished"`
	TotalResponses   int     `json:"total_responses"`
	TotalMissed      int     `json:"total_missed"`
	MeanResponseRate float64 `json:"mean_response_rate"`
	ResponsesByDay   []int   `json:"responses_by_day"`
	CompletedBySlot  []int   `json:"completed_by_slot"`

	// MeanSAM is present once at least one SAM rating exists.
	MeanSAM *SAMMeans `json:"mean_sam,omitempty"`
}

// SAMMeans is the cohort average of each SAM axis over all regular responses.
type SAMMeans struct {
	Pleasure  float64 `json:"pleasure"`
	Arousal   float64 `json:"arousal"`
	Dominance float64 `json:"dominance"`
}

// BroadcastRequest pushes an announcement to participants' devices.
type BroadcastRequest struct {
	Title          string  `json:"title" binding:"required"`
	Body           string  `json:"body" binding:"required"`
	ParticipantIDs []int64 `json:"participant_ids,omitempty"`
}

// BroadcastData acknowledges the enqueued broadcast.
type BroadcastData struct {
	MessageID  string `json:"message_id"`
	Recipients int    `json:"recipients"`
}
