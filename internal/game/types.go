// Package game holds the study's core state machines: the 7x7 ping schedule,
// XP/level progression, the instrument flow, the ping lifecycle controller and
// the game-state reconciler. It talks to persistence only through the Store
// port and never imports a storage SDK.
package game

import "time"

const (
	// StudyDays is the length of the study in days.
	StudyDays = 7
	// SlotsPerDay is the number of ping slots per day; the last one is the
	// end-of-day slot.
	SlotsPerDay = 7
	// EndOfDayIndex is the slot index of the end-of-day ping.
	EndOfDayIndex = SlotsPerDay - 1
	// TotalSlots is the number of slots over the whole study.
	TotalSlots = StudyDays * SlotsPerDay
)

// SlotStatus is the lifecycle status of a single ping slot.
type SlotStatus string

const (
	SlotPending   SlotStatus = "pending"
	SlotCompleted SlotStatus = "completed"
	SlotMissed    SlotStatus = "missed"
)

// PingType distinguishes the two instrument sequences.
type PingType string

const (
	PingRegular  PingType = "regular"
	PingEndOfDay PingType = "end_of_day"
)

// Slot addresses one of the 49 scheduled moments.
type Slot struct {
	Day   int `json:"day"`
	Index int `json:"index"`
}

// PingTypeFor returns the instrument sequence for a slot index.
func PingTypeFor(index int) PingType {
	if index == EndOfDayIndex {
		return PingEndOfDay
	}
	return PingRegular
}

// SAMRating is a Self-Assessment Manikin rating, three 1..9 axes.
type SAMRating struct {
	Pleasure  int `json:"pleasure"`
	Arousal   int `json:"arousal"`
	Dominance int `json:"dominance"`
}

// ScreenTimeEntry is one platform's usage in the end-of-day log.
type ScreenTimeEntry struct {
	Platform            string `json:"platform"`
	OtherPlatformDetail string `json:"other_platform_detail,omitempty"`
	DurationMinutes     int    `json:"duration_minutes"`
}

// InstrumentResponse is the record produced by one completed slot. Fields are
// populated according to Type: regular slots carry SAM, WasWatchingFeed and
// PANAS; end-of-day slots carry PANAS, SleepQuality, StressfulEvents and
// ScreenTimeLog.
type InstrumentResponse struct {
	ID              string            `json:"id"`
	Timestamp       time.Time         `json:"timestamp"`
	PingDay         int               `json:"ping_day"`
	PingIndex       int               `json:"ping_index"`
	Type            PingType          `json:"type"`
	SAM             *SAMRating        `json:"sam,omitempty"`
	WasWatchingFeed *bool             `json:"was_watching_feed,omitempty"`
	PANAS           map[string]int    `json:"panas,omitempty"`
	SleepQuality    int               `json:"sleep_quality,omitempty"`
	StressfulEvents string            `json:"stressful_events,omitempty"`
	ScreenTimeLog   []ScreenTimeEntry `json:"screen_time_log,omitempty"`
}

// GameState is the aggregate per participant. Mutated only by the reconciler;
// persisted through the Store port after every mutation.
type GameState struct {
	Nickname         string               `json:"nickname"`
	Avatar           string               `json:"avatar"`
	Points           int                  `json:"points"`
	Level            int                  `json:"level"`
	CurrentStreak    int                  `json:"current_streak"`
	CompletedDays    int                  `json:"completed_days"`
	ResponseRate     float64              `json:"response_rate"`
	Badges           []string             `json:"badges"`
	Pings            ScheduleGrid         `json:"pings"`
	Responses        []InstrumentResponse `json:"responses"`
	Sociodemographic map[string]string    `json:"sociodemographic,omitempty"`
	HasOnboarded     bool                 `json:"has_onboarded"`
	StudyStartDate   time.Time            `json:"study_start_date"`
}

// NewGameState returns the state created at enrollment: every slot pending,
// level 1, no responses.
func NewGameState(nickname string) GameState {
	return GameState{
		Nickname: nickname,
		Level:    1,
		Badges:   []string{},
		Pings:    NewScheduleGrid(),
	}
}

// PANASAdjectives is the 20-item Brazilian-Portuguese PANAS checklist. Every
// PANAS step must rate all of them on 1..5.
var PANASAdjectives = []string{
	"Interessado", "Angustiado", "Animado", "Perturbado", "Forte",
	"Culpado", "Assustado", "Hostil", "Entusiasmado", "Orgulhoso",
	"Irritado", "Alerta", "Envergonhado", "Inspirado", "Nervoso",
	"Determinado", "Atento", "Inquieto", "Ativo", "Amedrontado",
}
