package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"EmaQuest/config"
	"EmaQuest/internal/game"
	"EmaQuest/internal/model/dto"
	pkgerrors "EmaQuest/pkg/errors"
)

type tickClock struct {
	t time.Time
}

func (c *tickClock) Now() time.Time          { return c.t }
func (c *tickClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newPingFixture(t *testing.T) (*PingService, *game.MemoryStore, *tickClock) {
	t.Helper()

	clock := &tickClock{t: time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)}
	store := game.NewMemoryStore()

	gs := game.NewGameState("ana")
	gs.HasOnboarded = true
	if err := store.Put(context.Background(), 42, gs); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	svc := NewPingService(store, 5*time.Minute, clock.Now)
	return svc, store, clock
}

func fullPANASRequest(score int) dto.AdvanceRequest {
	ratings := make(map[string]int, len(game.PANASAdjectives))
	for _, adj := range game.PANASAdjectives {
		ratings[adj] = score
	}
	return dto.AdvanceRequest{PANAS: ratings}
}

func completeRegularSlot(t *testing.T, svc *PingService) *dto.AdvanceData {
	t.Helper()
	ctx := context.Background()

	if _, err := svc.OpenFlow(ctx, 42); err != nil {
		t.Fatalf("OpenFlow: %v", err)
	}

	steps := []dto.AdvanceRequest{
		{SAM: &dto.SAMBody{Pleasure: 5, Arousal: 4, Dominance: 6}},
		{FeedContext: &dto.FeedContextBody{WasWatchingFeed: true}},
		fullPANASRequest(3),
	}

	var last *dto.AdvanceData
	for i, req := range steps {
		data, err := svc.Advance(ctx, 42, req)
		if err != nil {
			t.Fatalf("Advance step %d: %v", i, err)
		}
		last = data
	}
	return last
}

func TestPingServiceCompletionPersists(t *testing.T) {
	svc, store, _ := newPingFixture(t)
	ctx := context.Background()

	next, err := svc.NextPing(ctx, 42)
	if err != nil {
		t.Fatalf("NextPing: %v", err)
	}
	if !next.HasNext || next.Day != 0 || next.Index != 0 {
		t.Fatalf("expected next slot (0,0), got %+v", next)
	}
	if next.PingType != string(game.PingRegular) {
		t.Fatalf("expected regular ping, got %s", next.PingType)
	}

	data := completeRegularSlot(t, svc)
	if !data.Done {
		t.Fatal("expected flow to be done after the third step")
	}
	if data.Completed == nil {
		t.Fatal("expected completion data")
	}
	if data.Completed.PointsEarned != game.XPForSlot(0) {
		t.Fatalf("points earned = %d, want %d", data.Completed.PointsEarned, game.XPForSlot(0))
	}
	if data.State == nil || data.State.CurrentStreak != 1 {
		t.Fatalf("expected streak 1 in returned state, got %+v", data.State)
	}

	persisted, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get persisted: %v", err)
	}
	if persisted.Pings[0][0] != game.SlotCompleted {
		t.Fatalf("persisted slot (0,0) = %s, want completed", persisted.Pings[0][0])
	}
	if len(persisted.Responses) != 1 {
		t.Fatalf("persisted %d responses, want 1", len(persisted.Responses))
	}
	if persisted.Points != game.XPForSlot(0) {
		t.Fatalf("persisted points = %d, want %d", persisted.Points, game.XPForSlot(0))
	}
}

func TestPingServiceOnboardingGate(t *testing.T) {
	clock := &tickClock{t: time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)}
	store := game.NewMemoryStore()
	if err := store.Put(context.Background(), 7, game.NewGameState("ze")); err != nil {
		t.Fatalf("seed state: %v", err)
	}
	svc := NewPingService(store, 5*time.Minute, clock.Now)

	_, err := svc.OpenFlow(context.Background(), 7)
	if !errors.Is(err, pkgerrors.OnboardingIncomplete) {
		t.Fatalf("expected OnboardingIncomplete, got %v", err)
	}
}

func TestPingServiceUnknownParticipant(t *testing.T) {
	svc := NewPingService(game.NewMemoryStore(), 5*time.Minute, nil)

	_, err := svc.NextPing(context.Background(), 999)
	if !errors.Is(err, pkgerrors.ParticipantNotFound) {
		t.Fatalf("expected ParticipantNotFound, got %v", err)
	}
}

func TestPingServiceTimeoutMarksMissed(t *testing.T) {
	svc, store, clock := newPingFixture(t)
	ctx := context.Background()

	if _, err := svc.OpenFlow(ctx, 42); err != nil {
		t.Fatalf("OpenFlow: %v", err)
	}

	// inside the window nothing happens
	clock.Advance(4 * time.Minute)
	svc.tickAll(ctx)
	persisted, _ := store.Get(ctx, 42)
	if persisted.Pings[0][0] != game.SlotPending {
		t.Fatalf("slot resolved before the deadline: %s", persisted.Pings[0][0])
	}

	clock.Advance(2 * time.Minute)
	svc.tickAll(ctx)

	persisted, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get persisted: %v", err)
	}
	if persisted.Pings[0][0] != game.SlotMissed {
		t.Fatalf("slot (0,0) = %s, want missed", persisted.Pings[0][0])
	}
	if persisted.CurrentStreak != 0 {
		t.Fatalf("streak = %d, want 0 after a miss", persisted.CurrentStreak)
	}
	if len(persisted.Responses) != 0 {
		t.Fatalf("a miss must not record a response, got %d", len(persisted.Responses))
	}

	// the flow is gone; advancing now fails
	if _, err := svc.Advance(ctx, 42, dto.AdvanceRequest{SAM: &dto.SAMBody{Pleasure: 1, Arousal: 1, Dominance: 1}}); !errors.Is(err, pkgerrors.FlowNotOpen) {
		t.Fatalf("expected FlowNotOpen after timeout, got %v", err)
	}
}

func TestPingServiceCancelMarksMissed(t *testing.T) {
	svc, store, _ := newPingFixture(t)
	ctx := context.Background()

	if _, err := svc.OpenFlow(ctx, 42); err != nil {
		t.Fatalf("OpenFlow: %v", err)
	}

	data, err := svc.CancelFlow(ctx, 42)
	if err != nil {
		t.Fatalf("CancelFlow: %v", err)
	}
	if data.Day != 0 || data.Index != 0 {
		t.Fatalf("cancelled slot = (%d,%d), want (0,0)", data.Day, data.Index)
	}

	persisted, _ := store.Get(ctx, 42)
	if persisted.Pings[0][0] != game.SlotMissed {
		t.Fatalf("slot (0,0) = %s, want missed", persisted.Pings[0][0])
	}

	// the missed slot is never offered again
	next, err := svc.NextPing(ctx, 42)
	if err != nil {
		t.Fatalf("NextPing: %v", err)
	}
	if next.Day != 0 || next.Index != 1 {
		t.Fatalf("next slot = (%d,%d), want (0,1)", next.Day, next.Index)
	}
}

func TestPingServicePersistFailureKeepsState(t *testing.T) {
	svc, store, _ := newPingFixture(t)
	ctx := context.Background()

	store.FailNextPut = errors.New("database gone")

	data := completeRegularSlot(t, svc)
	if !data.Done {
		t.Fatal("completion must succeed even when the write fails")
	}

	// the store still has the stale pre-completion state
	persisted, _ := store.Get(ctx, 42)
	if persisted.Pings[0][0] != game.SlotPending {
		t.Fatalf("store should hold the stale state, got %s", persisted.Pings[0][0])
	}

	// the session kept the reconciled state: the next slot is (0,1) and a
	// second outcome carries the full state into the store
	next, err := svc.NextPing(ctx, 42)
	if err != nil {
		t.Fatalf("NextPing: %v", err)
	}
	if next.Day != 0 || next.Index != 1 {
		t.Fatalf("next slot = (%d,%d), want (0,1)", next.Day, next.Index)
	}

	if _, err := svc.OpenFlow(ctx, 42); err != nil {
		t.Fatalf("OpenFlow: %v", err)
	}
	if _, err := svc.CancelFlow(ctx, 42); err != nil {
		t.Fatalf("CancelFlow: %v", err)
	}

	persisted, err = store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get persisted: %v", err)
	}
	if persisted.Pings[0][0] != game.SlotCompleted {
		t.Fatalf("retried write lost the completion: slot (0,0) = %s", persisted.Pings[0][0])
	}
	if persisted.Pings[0][1] != game.SlotMissed {
		t.Fatalf("slot (0,1) = %s, want missed", persisted.Pings[0][1])
	}
	if len(persisted.Responses) != 1 {
		t.Fatalf("persisted %d responses, want 1", len(persisted.Responses))
	}
}

func TestPingServiceMalformedAdvance(t *testing.T) {
	svc, _, _ := newPingFixture(t)
	ctx := context.Background()

	if _, err := svc.OpenFlow(ctx, 42); err != nil {
		t.Fatalf("OpenFlow: %v", err)
	}

	if _, err := svc.Advance(ctx, 42, dto.AdvanceRequest{}); !errors.Is(err, pkgerrors.MalformedResponse) {
		t.Fatalf("expected MalformedResponse for an empty request, got %v", err)
	}

	// wrong payload for the SAM step does not advance the flow
	if _, err := svc.Advance(ctx, 42, fullPANASRequest(3)); err == nil {
		t.Fatal("expected an error for a PANAS payload on the SAM step")
	}

	data, err := svc.Advance(ctx, 42, dto.AdvanceRequest{SAM: &dto.SAMBody{Pleasure: 5, Arousal: 5, Dominance: 5}})
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if data.Done || data.Step == nil || data.Step.Kind != string(game.StepFeedContext) {
		t.Fatalf("expected feed_context step next, got %+v", data)
	}
}

func TestPingServiceDropSessionReloads(t *testing.T) {
	svc, store, _ := newPingFixture(t)
	ctx := context.Background()

	completeRegularSlot(t, svc)
	svc.DropSession(42)

	// mutate the store behind the service's back, the reload must see it
	gs, _ := store.Get(ctx, 42)
	gs.Nickname = "renamed"
	if err := store.Put(ctx, 42, gs); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data := completeRegularSlot(t, svc)
	if data.State.Nickname != "renamed" {
		t.Fatalf("session did not reload from the store, nickname = %q", data.State.Nickname)
	}
}

func TestPingServiceNextPingCountdown(t *testing.T) {
	svc, store, clock := newPingFixture(t)
	ctx := context.Background()

	prev := config.Cfg.SlotTimes
	config.Cfg.SlotTimes = "09:00:00,11:00:00,13:00:00,15:00:00,17:00:00,19:00:00,21:00:00"
	t.Cleanup(func() { config.Cfg.SlotTimes = prev })

	gs, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	gs.StudyStartDate = time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	if err := store.Put(ctx, 42, gs); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// clock is at 09:00, slot 0 fires at 09:00: due now
	next, err := svc.NextPing(ctx, 42)
	if err != nil {
		t.Fatalf("NextPing: %v", err)
	}
	if next.ScheduledAt == nil {
		t.Fatal("expected a scheduled time for slot 0")
	}
	if !next.ScheduledAt.Equal(time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("slot 0 scheduled at %v", next.ScheduledAt)
	}
	if next.SecondsUntil != 0 {
		t.Fatalf("slot 0 is due, seconds until = %d", next.SecondsUntil)
	}

	// completing slot 0 moves the countdown to the 11:00 slot
	completeRegularSlot(t, svc)
	clock.Advance(30 * time.Minute)

	next, err = svc.NextPing(ctx, 42)
	if err != nil {
		t.Fatalf("NextPing: %v", err)
	}
	if next.Index != 1 || next.ScheduledAt == nil {
		t.Fatalf("expected slot (0,1) with a scheduled time, got %+v", next)
	}
	if next.SecondsUntil != int((90 * time.Minute).Seconds()) {
		t.Fatalf("seconds until slot 1 = %d, want %d", next.SecondsUntil, 90*60)
	}
}
