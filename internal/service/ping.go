package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"EmaQuest/config"
	"EmaQuest/internal/game"
	"EmaQuest/internal/model/dto"
	"EmaQuest/internal/repository"
	pkgerrors "EmaQuest/pkg/errors"
	"EmaQuest/pkg/logger"
	"EmaQuest/pkg/metrics"
	"EmaQuest/utils"
)

// PingService owns one in-memory session per participant: the game state
// plus its PingController. Every outcome (completion, cancel, timeout) runs
// the pure reconciler and then persists through the Store port as a separate
// effect. A failed persist keeps the reconciled state in memory; the next
// outcome retries the write with the full state.
type PingService struct {
	store  game.Store
	window time.Duration
	now    func() time.Time

	// afterPersist runs after a successful Put (cache invalidation).
	afterPersist func(ctx context.Context, participantID int64)

	mu       sync.Mutex
	sessions map[int64]*session
}

type session struct {
	mu       sync.Mutex
	gs       game.GameState
	ctrl     *game.PingController
	openedAt time.Time
}

var (
	pingService *PingService
	pingSvcOnce sync.Once
)

func Ping() *PingService {
	pingSvcOnce.Do(func() {
		pingService = NewPingService(
			repository.Participants(),
			time.Duration(config.Cfg.AnswerWindowSeconds)*time.Second,
			time.Now,
		)
		pingService.afterPersist = func(ctx context.Context, participantID int64) {
			Participant().invalidateCache(ctx, participantID)
		}
	})
	return pingService
}

func NewPingService(store game.Store, window time.Duration, now func() time.Time) *PingService {
	if window <= 0 {
		window = game.DefaultAnswerWindow
	}
	if now == nil {
		now = time.Now
	}
	return &PingService{
		store:    store,
		window:   window,
		now:      now,
		sessions: make(map[int64]*session),
	}
}

func (s *PingService) getSession(ctx context.Context, participantID int64) (*session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[participantID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	// Load outside the map lock; losing the race just discards one load.
	gs, err := s.store.Get(ctx, participantID)
	if err != nil {
		if errors.Is(err, game.ErrStateNotFound) {
			return nil, pkgerrors.ParticipantNotFound
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[participantID]; ok {
		return sess, nil
	}

	sess := &session{gs: gs}
	sess.ctrl = game.NewPingController(&sess.gs.Pings, s.window, s.now)
	s.sessions[participantID] = sess
	return sess, nil
}

// NextPing reports the next pending slot without opening it.
func (s *PingService) NextPing(ctx context.Context, participantID int64) (*dto.NextPingData, error) {
	sess, err := s.getSession(ctx, participantID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	data := &dto.NextPingData{
		Completed: sess.gs.Pings.CompletedCount(),
		Missed:    sess.gs.Pings.MissedCount(),
	}
	if slot, ok := sess.gs.Pings.FindNextPending(); ok {
		data.HasNext = true
		data.Day = slot.Day
		data.Index = slot.Index
		data.PingType = string(game.PingTypeFor(slot.Index))

		if at, ok := s.slotTime(&sess.gs, slot); ok {
			data.ScheduledAt = &at
			if until := at.Sub(s.now()); until > 0 {
				data.SecondsUntil = int(until.Seconds())
			}
		}
	}
	return data, nil
}

// slotTime derives the calendar time a slot fires: the participant's start
// date plus the slot's day, at the configured clock time for its index.
func (s *PingService) slotTime(gs *game.GameState, slot game.Slot) (time.Time, bool) {
	if gs.StudyStartDate.IsZero() {
		return time.Time{}, false
	}
	slotTimes := config.Cfg.SlotTimeList()
	if slot.Index >= len(slotTimes) {
		return time.Time{}, false
	}

	date := gs.StudyStartDate.AddDate(0, 0, slot.Day)
	at, err := utils.ParseTime(slotTimes[slot.Index], date)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// OpenFlow opens the instrument flow for the next pending slot and arms the
// answer-window deadline.
func (s *PingService) OpenFlow(ctx context.Context, participantID int64) (*dto.OpenFlowData, error) {
	sess, err := s.getSession(ctx, participantID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.gs.HasOnboarded {
		return nil, pkgerrors.OnboardingIncomplete
	}

	flow, err := sess.ctrl.Open()
	if err != nil {
		return nil, err
	}
	sess.openedAt = s.now()
	deadline, _ := sess.ctrl.Deadline()

	slot := flow.Slot()
	return &dto.OpenFlowData{
		Day:      slot.Day,
		Index:    slot.Index,
		PingType: string(flow.Type()),
		Step:     stepData(flow),
		Deadline: deadline,
	}, nil
}

// Advance submits the current step. On completion the reconciled state is
// persisted and the gamification summary is returned.
func (s *PingService) Advance(ctx context.Context, participantID int64, req dto.AdvanceRequest) (*dto.AdvanceData, error) {
	sess, err := s.getSession(ctx, participantID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	payload, err := payloadFrom(req)
	if err != nil {
		return nil, err
	}

	resp, err := sess.ctrl.Advance(payload)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		step := stepData(sess.ctrl.Flow())
		return &dto.AdvanceData{Done: false, Step: &step}, nil
	}

	sess.gs = game.ApplyCompletion(sess.gs, *resp)
	s.persist(ctx, participantID, sess.gs)

	metrics.RecordPingCompleted(ctx, string(resp.Type))
	metrics.RecordFlowDuration(ctx, s.now().Sub(sess.openedAt).Seconds())

	snapshot := snapshotFor(formatID(participantID), sess.gs)
	return &dto.AdvanceData{
		Done: true,
		Completed: &dto.CompletionData{
			Day:          resp.PingDay,
			Index:        resp.PingIndex,
			PointsEarned: game.XPForSlot(resp.PingIndex),
			Points:       sess.gs.Points,
			Level:        sess.gs.Level,
		},
		State: &snapshot,
	}, nil
}

// CancelFlow discards the open flow; the slot is missed for good.
func (s *PingService) CancelFlow(ctx context.Context, participantID int64) (*dto.CancelData, error) {
	sess, err := s.getSession(ctx, participantID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	slot, err := sess.ctrl.Cancel()
	if err != nil {
		return nil, err
	}

	sess.gs = game.ApplyMiss(sess.gs)
	s.persist(ctx, participantID, sess.gs)

	metrics.RecordPingMissed(ctx, "cancel")

	return &dto.CancelData{Day: slot.Day, Index: slot.Index}, nil
}

// RunTimeoutLoop drives the cooperative auto-miss timers at 1 Hz until the
// context is cancelled. Run it in one goroutine next to the HTTP server.
func (s *PingService) RunTimeoutLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickAll(ctx)
		}
	}
}

func (s *PingService) tickAll(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	ids := make([]int64, 0, len(s.sessions))
	sessions := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		ids = append(ids, id)
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for i, sess := range sessions {
		sess.mu.Lock()
		slot, fired := sess.ctrl.Tick(now)
		if fired {
			sess.gs = game.ApplyMiss(sess.gs)
			s.persist(ctx, ids[i], sess.gs)

			metrics.RecordPingMissed(ctx, "timeout")

			logger.Logger.Info("Ping timed out",
				zap.Int64("participant_id", ids[i]),
				zap.Int("day", slot.Day),
				zap.Int("index", slot.Index),
			)
		}
		sess.mu.Unlock()
	}
}

// persist writes the reconciled state. Persistence failures are logged and
// swallowed: the session keeps the reconciled state and the next write
// carries it, so the participant never loses progress to a database blip.
func (s *PingService) persist(ctx context.Context, participantID int64, gs game.GameState) {
	if err := s.store.Put(ctx, participantID, gs); err != nil {
		logger.Logger.Error("Failed to persist game state, keeping in-memory state",
			zap.Int64("participant_id", participantID),
			zap.Error(err),
		)
		return
	}
	if s.afterPersist != nil {
		s.afterPersist(ctx, participantID)
	}
}

// DropSession evicts a session so the next request reloads from the store.
func (s *PingService) DropSession(participantID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, participantID)
}

func stepData(flow *game.InstrumentFlow) dto.StepData {
	step := dto.StepData{
		Kind:   string(flow.CurrentStep()),
		Prompt: flow.Prompt(),
	}
	switch flow.CurrentStep() {
	case game.StepPANASContextual, game.StepPANASDaily:
		step.Adjectives = game.PANASAdjectives
	}
	return step
}

func payloadFrom(req dto.AdvanceRequest) (game.StepPayload, error) {
	switch {
	case req.SAM != nil:
		return game.SAMPayload{
			Pleasure:  req.SAM.Pleasure,
			Arousal:   req.SAM.Arousal,
			Dominance: req.SAM.Dominance,
		}, nil
	case req.FeedContext != nil:
		return game.FeedContextPayload{WasWatchingFeed: req.FeedContext.WasWatchingFeed}, nil
	case req.PANAS != nil:
		return game.PANASPayload{Ratings: req.PANAS}, nil
	case req.EndOfDayLog != nil:
		return game.EndOfDayLogPayload{
			SleepQuality:    req.EndOfDayLog.SleepQuality,
			StressfulEvents: req.EndOfDayLog.StressfulEvents,
			ScreenTimeLog:   req.EndOfDayLog.ScreenTimeLog,
		}, nil
	default:
		return nil, pkgerrors.MalformedResponse
	}
}
