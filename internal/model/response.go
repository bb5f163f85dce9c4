package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"EmaQuest/internal/game"
)

// Response is one completed instrument submission. The composite unique index
// on (participant_id, ping_day, ping_index) is the write-side guarantee that a
// slot produces at most one response, whatever retries happen upstream.
type Response struct {
	BaseModel
	ResponseID    string    `gorm:"uniqueIndex;type:uuid;not null" json:"response_id"`
	ParticipantID int64     `gorm:"not null;uniqueIndex:idx_responses_slot,priority:1;index:idx_responses_participant" json:"participant_id"`
	PingDay       int       `gorm:"not null;uniqueIndex:idx_responses_slot,priority:2" json:"ping_day"`
	PingIndex     int       `gorm:"not null;uniqueIndex:idx_responses_slot,priority:3" json:"ping_index"`
	PingType      string    `gorm:"type:varchar(16);not null" json:"ping_type"`
	AnsweredAt    time.Time `gorm:"type:timestamptz;not null" json:"answered_at"`

	// Regular-slot fields.
	SAMPleasure     *int  `gorm:"type:smallint" json:"sam_pleasure,omitempty"`
	SAMArousal      *int  `gorm:"type:smallint" json:"sam_arousal,omitempty"`
	SAMDominance    *int  `gorm:"type:smallint" json:"sam_dominance,omitempty"`
	WasWatchingFeed *bool `json:"was_watching_feed,omitempty"`

	// Both slot kinds.
	PANAS IntMap `gorm:"type:jsonb" json:"panas,omitempty"`

	// End-of-day fields.
	SleepQuality    *int          `gorm:"type:smallint" json:"sleep_quality,omitempty"`
	StressfulEvents string        `gorm:"type:text;not null;default:''" json:"stressful_events,omitempty"`
	ScreenTimeLog   ScreenTimeLog `gorm:"type:jsonb" json:"screen_time_log,omitempty"`
}

func (Response) TableName() string {
	return "responses"
}

// IntMap is a jsonb object with int values (PANAS ratings).
type IntMap map[string]int

func (m IntMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(map[string]int(m))
}

func (m *IntMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal IntMap value")
	}
	return json.Unmarshal(bytes, m)
}

// ScreenTimeLog is the jsonb list of per-platform screen time entries.
type ScreenTimeLog []game.ScreenTimeEntry

func (l ScreenTimeLog) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal([]game.ScreenTimeEntry(l))
}

func (l *ScreenTimeLog) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal ScreenTimeLog value")
	}
	return json.Unmarshal(bytes, l)
}

// FromInstrumentResponse flattens a domain response into a row.
func FromInstrumentResponse(participantID int64, r game.InstrumentResponse) Response {
	row := Response{
		ResponseID:      r.ID,
		ParticipantID:   participantID,
		PingDay:         r.PingDay,
		PingIndex:       r.PingIndex,
		PingType:        string(r.Type),
		AnsweredAt:      r.Timestamp,
		WasWatchingFeed: r.WasWatchingFeed,
		PANAS:           IntMap(r.PANAS),
		StressfulEvents: r.StressfulEvents,
		ScreenTimeLog:   ScreenTimeLog(r.ScreenTimeLog),
	}
	if r.SAM != nil {
		p, a, d := r.SAM.Pleasure, r.SAM.Arousal, r.SAM.Dominance
		row.SAMPleasure, row.SAMArousal, row.SAMDominance = &p, &a, &d
	}
	if r.Type == game.PingEndOfDay {
		sq := r.SleepQuality
		row.SleepQuality = &sq
	}
	return row
}

// ToInstrumentResponse rebuilds the domain response from a row.
func (r Response) ToInstrumentResponse() game.InstrumentResponse {
	out := game.InstrumentResponse{
		ID:              r.ResponseID,
		Timestamp:       r.AnsweredAt,
		PingDay:         r.PingDay,
		PingIndex:       r.PingIndex,
		Type:            game.PingType(r.PingType),
		WasWatchingFeed: r.WasWatchingFeed,
		PANAS:           map[string]int(r.PANAS),
		StressfulEvents: r.StressfulEvents,
		ScreenTimeLog:   []game.ScreenTimeEntry(r.ScreenTimeLog),
	}
	if r.SAMPleasure != nil && r.SAMArousal != nil && r.SAMDominance != nil {
		out.SAM = &game.SAMRating{
			Pleasure:  *r.SAMPleasure,
			Arousal:   *r.SAMArousal,
			Dominance: *r.SAMDominance,
		}
	}
	if r.SleepQuality != nil {
		out.SleepQuality = *r.SleepQuality
	}
	return out
}
