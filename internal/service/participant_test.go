package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"EmaQuest/config"
	"EmaQuest/internal/game"
	"EmaQuest/internal/model"
	pkgerrors "EmaQuest/pkg/errors"
)

func newParticipantFixture(t *testing.T) (*ParticipantService, *game.MemoryStore) {
	t.Helper()

	store := game.NewMemoryStore()
	if err := store.Put(context.Background(), 11, game.NewGameState("bia")); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	now := func() time.Time { return time.Date(2026, 8, 3, 14, 30, 0, 0, time.UTC) }
	return NewParticipantService(store, now), store
}

func TestCompleteOnboarding(t *testing.T) {
	svc, store := newParticipantFixture(t)
	ctx := context.Background()

	socio := map[string]string{"age": "24", "gender": "female"}
	snapshot, err := svc.CompleteOnboarding(ctx, 11, socio)
	if err != nil {
		t.Fatalf("CompleteOnboarding: %v", err)
	}

	if !snapshot.HasOnboarded {
		t.Fatal("snapshot should show onboarding done")
	}
	if snapshot.Status != string(model.ParticipantStatusActive) {
		t.Fatalf("status = %s, want active", snapshot.Status)
	}
	if snapshot.StudyStartDate == nil {
		t.Fatal("study start date missing")
	}

	loc, err := time.LoadLocation(config.Cfg.StudyTimezone)
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	start := snapshot.StudyStartDate.In(loc)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Fatalf("study start date is not midnight in the study timezone: %v", start)
	}

	persisted, err := store.Get(ctx, 11)
	if err != nil {
		t.Fatalf("Get persisted: %v", err)
	}
	if !persisted.HasOnboarded {
		t.Fatal("onboarding flag was not persisted")
	}
	if persisted.Sociodemographic["age"] != "24" {
		t.Fatalf("sociodemographic answers were not persisted: %v", persisted.Sociodemographic)
	}
}

func TestCompleteOnboardingTwice(t *testing.T) {
	svc, _ := newParticipantFixture(t)
	ctx := context.Background()

	if _, err := svc.CompleteOnboarding(ctx, 11, nil); err != nil {
		t.Fatalf("first CompleteOnboarding: %v", err)
	}
	if _, err := svc.CompleteOnboarding(ctx, 11, nil); !errors.Is(err, pkgerrors.OnboardingAlreadyDone) {
		t.Fatalf("expected OnboardingAlreadyDone, got %v", err)
	}
}

func TestCompleteOnboardingUnknownParticipant(t *testing.T) {
	svc, _ := newParticipantFixture(t)

	_, err := svc.CompleteOnboarding(context.Background(), 999, nil)
	if !errors.Is(err, pkgerrors.ParticipantNotFound) {
		t.Fatalf("expected ParticipantNotFound, got %v", err)
	}
}

func TestCompleteOnboardingPersistFailure(t *testing.T) {
	svc, store := newParticipantFixture(t)
	store.FailNextPut = errors.New("database gone")

	_, err := svc.CompleteOnboarding(context.Background(), 11, nil)
	if !errors.Is(err, pkgerrors.PersistenceFailure) {
		t.Fatalf("expected PersistenceFailure, got %v", err)
	}

	// the flag must not stick when the write failed
	gs, _ := store.Get(context.Background(), 11)
	if gs.HasOnboarded {
		t.Fatal("onboarding flag leaked into the store despite the failed write")
	}
}

func TestGetStateSnapshot(t *testing.T) {
	svc, store := newParticipantFixture(t)
	ctx := context.Background()

	gs, _ := store.Get(ctx, 11)
	gs.HasOnboarded = true
	if err := gs.Pings.SetStatus(0, 0, game.SlotCompleted); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	gs.Points = game.PointsFromGrid(&gs.Pings)
	gs.Level = game.LevelFor(gs.Points)
	if err := store.Put(ctx, 11, gs); err != nil {
		t.Fatalf("Put: %v", err)
	}

	snapshot, err := svc.GetState(ctx, 11)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if snapshot.ID != "11" {
		t.Fatalf("ID = %q, want \"11\"", snapshot.ID)
	}
	if snapshot.Points != game.XPForSlot(0) {
		t.Fatalf("points = %d, want %d", snapshot.Points, game.XPForSlot(0))
	}
	if snapshot.CurrentDay != 0 {
		t.Fatalf("current day = %d, want 0", snapshot.CurrentDay)
	}
	if snapshot.Badges == nil {
		t.Fatal("badges must serialize as an empty list, not null")
	}
}
