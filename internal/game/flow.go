package game

import (
	"time"

	"github.com/google/uuid"

	"EmaQuest/pkg/errors"
)

// StepKind identifies one screen of an instrument sequence.
type StepKind string

const (
	StepSAM             StepKind = "sam"
	StepFeedContext     StepKind = "feed_context"
	StepPANASContextual StepKind = "panas_contextual"
	StepPANASDaily      StepKind = "panas_daily"
	StepEndOfDayLog     StepKind = "end_of_day_log"
)

var (
	regularSteps  = []StepKind{StepSAM, StepFeedContext, StepPANASContextual}
	endOfDaySteps = []StepKind{StepPANASDaily, StepEndOfDayLog}
)

// StepsFor returns the ordered step sequence for a ping type.
func StepsFor(t PingType) []StepKind {
	if t == PingEndOfDay {
		return endOfDaySteps
	}
	return regularSteps
}

// StepPayload is the tagged union of per-step submissions. Each step accepts
// exactly one payload type; the flow validates it before merging.
type StepPayload interface {
	isStepPayload()
}

type SAMPayload struct {
	Pleasure  int
	Arousal   int
	Dominance int
}

type FeedContextPayload struct {
	WasWatchingFeed bool
}

// PANASPayload serves both the contextual and the daily PANAS step.
type PANASPayload struct {
	Ratings map[string]int
}

type EndOfDayLogPayload struct {
	SleepQuality    int
	StressfulEvents string
	ScreenTimeLog   []ScreenTimeEntry
}

func (SAMPayload) isStepPayload()         {}
func (FeedContextPayload) isStepPayload() {}
func (PANASPayload) isStepPayload()       {}
func (EndOfDayLogPayload) isStepPayload() {}

// InstrumentFlow walks a participant through the fixed step sequence for one
// slot, accumulating a single InstrumentResponse. Ephemeral: it is discarded
// on completion, cancellation or timeout, and is never persisted.
type InstrumentFlow struct {
	slot     Slot
	pingType PingType
	steps    []StepKind
	stepIdx  int
	draft    InstrumentResponse
	done     bool
}

// OpenFlow starts the instrument sequence for a slot. The ping type is derived
// from the slot index; the draft is seeded with timestamp and slot address.
func OpenFlow(slot Slot, now time.Time) *InstrumentFlow {
	t := PingTypeFor(slot.Index)
	return &InstrumentFlow{
		slot:     slot,
		pingType: t,
		steps:    StepsFor(t),
		draft: InstrumentResponse{
			ID:        uuid.NewString(),
			Timestamp: now,
			PingDay:   slot.Day,
			PingIndex: slot.Index,
			Type:      t,
		},
	}
}

func (f *InstrumentFlow) Slot() Slot         { return f.slot }
func (f *InstrumentFlow) Type() PingType     { return f.pingType }
func (f *InstrumentFlow) Done() bool         { return f.done }
func (f *InstrumentFlow) CurrentStep() StepKind {
	if f.done {
		return ""
	}
	return f.steps[f.stepIdx]
}

// Prompt returns the question text for the current step. The contextual PANAS
// prompt branches on the feed-context answer; the data schema is unaffected.
func (f *InstrumentFlow) Prompt() string {
	switch f.CurrentStep() {
	case StepSAM:
		return "Como você se sente agora? (prazer, ativação, dominância)"
	case StepFeedContext:
		return "Você estava usando o feed de alguma rede social nos últimos 10 minutos?"
	case StepPANASContextual:
		if f.draft.WasWatchingFeed != nil && *f.draft.WasWatchingFeed {
			return "Pensando no que você acabou de ver no feed, o quanto cada palavra descreve como você se sente?"
		}
		return "Neste momento, o quanto cada palavra descreve como você se sente?"
	case StepPANASDaily:
		return "Pensando no seu dia como um todo, o quanto cada palavra descreve como você se sentiu?"
	case StepEndOfDayLog:
		return "Para fechar o dia: sono, eventos estressantes e tempo de tela."
	default:
		return ""
	}
}

// Advance validates the payload for the current step, merges it into the
// draft and moves to the next step. On the last step it returns the finished
// InstrumentResponse; the flow is then done and must be discarded.
func (f *InstrumentFlow) Advance(payload StepPayload) (*InstrumentResponse, error) {
	if f.done {
		return nil, errors.FlowNotOpen
	}

	if err := f.merge(payload); err != nil {
		return nil, err
	}

	if f.stepIdx < len(f.steps)-1 {
		f.stepIdx++
		return nil, nil
	}

	f.done = true
	resp := f.draft
	return &resp, nil
}

func (f *InstrumentFlow) merge(payload StepPayload) error {
	switch f.steps[f.stepIdx] {
	case StepSAM:
		p, ok := payload.(SAMPayload)
		if !ok {
			return errors.MalformedResponse
		}
		if !inRange(p.Pleasure, 1, 9) || !inRange(p.Arousal, 1, 9) || !inRange(p.Dominance, 1, 9) {
			return errors.MalformedResponse
		}
		f.draft.SAM = &SAMRating{Pleasure: p.Pleasure, Arousal: p.Arousal, Dominance: p.Dominance}

	case StepFeedContext:
		p, ok := payload.(FeedContextPayload)
		if !ok {
			return errors.MalformedResponse
		}
		v := p.WasWatchingFeed
		f.draft.WasWatchingFeed = &v

	case StepPANASContextual, StepPANASDaily:
		p, ok := payload.(PANASPayload)
		if !ok {
			return errors.MalformedResponse
		}
		if err := validatePANAS(p.Ratings); err != nil {
			return err
		}
		ratings := make(map[string]int, len(p.Ratings))
		for adjective, score := range p.Ratings {
			ratings[adjective] = score
		}
		f.draft.PANAS = ratings

	case StepEndOfDayLog:
		p, ok := payload.(EndOfDayLogPayload)
		if !ok {
			return errors.MalformedResponse
		}
		if !inRange(p.SleepQuality, 1, 5) {
			return errors.MalformedResponse
		}
		for _, entry := range p.ScreenTimeLog {
			if entry.Platform == "" || entry.DurationMinutes < 0 {
				return errors.MalformedResponse
			}
		}
		f.draft.SleepQuality = p.SleepQuality
		f.draft.StressfulEvents = p.StressfulEvents
		f.draft.ScreenTimeLog = append([]ScreenTimeEntry(nil), p.ScreenTimeLog...)

	default:
		return errors.MalformedResponse
	}

	return nil
}

// validatePANAS requires a 1..5 rating for every adjective of the checklist,
// nothing more and nothing less.
func validatePANAS(ratings map[string]int) error {
	if len(ratings) != len(PANASAdjectives) {
		return errors.MalformedResponse
	}
	for _, adjective := range PANASAdjectives {
		score, ok := ratings[adjective]
		if !ok || !inRange(score, 1, 5) {
			return errors.MalformedResponse
		}
	}
	return nil
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
