package service

import (
	"context"
	"math"
	"testing"

	"EmaQuest/internal/game"
)

func seedAggregateStore(t *testing.T) *game.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := game.NewMemoryStore()

	// active participant: one completion, one miss
	active := game.NewGameState("ana")
	active.HasOnboarded = true
	if err := active.Pings.SetStatus(0, 0, game.SlotCompleted); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := active.Pings.SetStatus(0, 1, game.SlotMissed); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	active.Responses = []game.InstrumentResponse{
		{
			ID:        "r1",
			PingDay:   0,
			PingIndex: 0,
			Type:      game.PingRegular,
			SAM:       &game.SAMRating{Pleasure: 7, Arousal: 3, Dominance: 5},
		},
	}
	active.ResponseRate = 1.0 / float64(game.TotalSlots)
	active.Points = game.PointsFromGrid(&active.Pings)
	active.Level = game.LevelFor(active.Points)

	// finished participant: every slot resolved
	finished := game.NewGameState("bruno")
	finished.HasOnboarded = true
	for day := 0; day < game.StudyDays; day++ {
		for index := 0; index < game.SlotsPerDay; index++ {
			if err := finished.Pings.SetStatus(day, index, game.SlotMissed); err != nil {
				t.Fatalf("SetStatus: %v", err)
			}
		}
	}

	// enrolled participant: not onboarded yet
	enrolled := game.NewGameState("carla")

	if err := store.Put(ctx, 3, enrolled); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, 1, active); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, 2, finished); err != nil {
		t.Fatalf("Put: %v", err)
	}
	return store
}

func TestAggregateListParticipants(t *testing.T) {
	svc := NewAggregateService(seedAggregateStore(t))

	rows, err := svc.ListParticipants(context.Background())
	if err != nil {
		t.Fatalf("ListParticipants: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// sorted by ID
	if rows[0].ID != "1" || rows[1].ID != "2" || rows[2].ID != "3" {
		t.Fatalf("rows not sorted by ID: %s, %s, %s", rows[0].ID, rows[1].ID, rows[2].ID)
	}

	if rows[0].Status != "active" || rows[0].CompletedCount != 1 || rows[0].MissedCount != 1 {
		t.Fatalf("active row = %+v", rows[0])
	}
	if rows[1].Status != "finished" || rows[1].MissedCount != game.TotalSlots {
		t.Fatalf("finished row = %+v", rows[1])
	}
	if rows[2].Status != "enrolled" || rows[2].Level != 1 {
		t.Fatalf("enrolled row = %+v", rows[2])
	}
}

func TestAggregateStats(t *testing.T) {
	svc := NewAggregateService(seedAggregateStore(t))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if stats.Participants != 3 {
		t.Fatalf("participants = %d, want 3", stats.Participants)
	}
	if stats.ActiveToday != 1 || stats.Finished != 1 {
		t.Fatalf("active = %d, finished = %d, want 1 and 1", stats.ActiveToday, stats.Finished)
	}
	if stats.TotalResponses != 1 {
		t.Fatalf("total responses = %d, want 1", stats.TotalResponses)
	}
	if stats.TotalMissed != game.TotalSlots+1 {
		t.Fatalf("total missed = %d, want %d", stats.TotalMissed, game.TotalSlots+1)
	}

	wantRate := (1.0 / float64(game.TotalSlots)) / 3.0
	if math.Abs(stats.MeanResponseRate-wantRate) > 1e-9 {
		t.Fatalf("mean response rate = %f, want %f", stats.MeanResponseRate, wantRate)
	}

	if len(stats.ResponsesByDay) != game.StudyDays {
		t.Fatalf("responses by day has %d buckets, want %d", len(stats.ResponsesByDay), game.StudyDays)
	}
	if stats.ResponsesByDay[0] != 1 {
		t.Fatalf("day 0 responses = %d, want 1", stats.ResponsesByDay[0])
	}
	if stats.CompletedBySlot[0] != 1 {
		t.Fatalf("slot 0 completions = %d, want 1", stats.CompletedBySlot[0])
	}

	if stats.MeanSAM == nil {
		t.Fatal("expected SAM means with one SAM rating in the cohort")
	}
	if stats.MeanSAM.Pleasure != 7 || stats.MeanSAM.Arousal != 3 || stats.MeanSAM.Dominance != 5 {
		t.Fatalf("SAM means = %+v", stats.MeanSAM)
	}
}

func TestAggregateStatsEmptyCohort(t *testing.T) {
	svc := NewAggregateService(game.NewMemoryStore())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Participants != 0 || stats.MeanResponseRate != 0 {
		t.Fatalf("empty cohort stats = %+v", stats)
	}
}
