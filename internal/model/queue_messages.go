package model

// PingNotificationMessage is published by the scheduler on the delayed
// exchange; the worker receives it when the slot's wall-clock time arrives.
// MessageID feeds the redis idempotency mark, so a redelivered message is
// pushed at most once.
type PingNotificationMessage struct {
	MessageID     string `json:"message_id"`
	BatchID       string `json:"batch_id"`
	ParticipantID int64  `json:"participant_id"`
	PingDay       int    `json:"ping_day"`
	PingIndex     int    `json:"ping_index"`
	ScheduledAt   string `json:"scheduled_at"` // RFC3339, study timezone
	DelaySeconds  int    `json:"delay_seconds"`
}

// BroadcastMessage fans a researcher announcement out to every active
// participant's devices.
type BroadcastMessage struct {
	MessageID      string  `json:"message_id"`
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	ParticipantIDs []int64 `json:"participant_ids,omitempty"` // empty = all active
}
