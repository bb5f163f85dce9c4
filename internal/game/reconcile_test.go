package game

import (
	"testing"
	"time"
)

func TestApplyCompletionFirstSlot(t *testing.T) {
	gs := NewGameState("capivara")
	if err := gs.Pings.SetStatus(0, 0, SlotCompleted); err != nil {
		t.Fatal(err)
	}

	resp := InstrumentResponse{
		ID:        "r1",
		Timestamp: time.Now(),
		PingDay:   0,
		PingIndex: 0,
		Type:      PingRegular,
	}
	next := ApplyCompletion(gs, resp)

	if next.Points != 50 {
		t.Errorf("points = %d, want 50", next.Points)
	}
	if next.Level != 1 {
		t.Errorf("level = %d, want 1", next.Level)
	}
	if next.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", next.CurrentStreak)
	}
	if next.CompletedDays != 0 {
		t.Errorf("completedDays = %d, want 0", next.CompletedDays)
	}
	if len(next.Responses) != 1 || next.Responses[0].ID != "r1" {
		t.Errorf("responses = %+v", next.Responses)
	}
	want := 1.0 / float64(TotalSlots)
	if next.ResponseRate != want {
		t.Errorf("responseRate = %v, want %v", next.ResponseRate, want)
	}

	// Input state untouched.
	if len(gs.Responses) != 0 || gs.Points != 0 {
		t.Fatal("ApplyCompletion mutated its input")
	}
}

func TestApplyCompletionEndOfDay(t *testing.T) {
	gs := NewGameState("capivara")
	for i := 0; i < SlotsPerDay; i++ {
		if err := gs.Pings.SetStatus(0, i, SlotCompleted); err != nil {
			t.Fatal(err)
		}
	}
	gs.CurrentStreak = 6
	gs.Responses = make([]InstrumentResponse, 6)

	resp := InstrumentResponse{
		ID:        "eod",
		PingDay:   0,
		PingIndex: EndOfDayIndex,
		Type:      PingEndOfDay,
	}
	next := ApplyCompletion(gs, resp)

	if next.Points != 400 {
		t.Errorf("points = %d, want 400", next.Points)
	}
	if next.Level != 3 {
		t.Errorf("level = %d, want 3", next.Level)
	}
	if next.CurrentStreak != 7 {
		t.Errorf("streak = %d, want 7", next.CurrentStreak)
	}
	if next.CompletedDays != 1 {
		t.Errorf("completedDays = %d, want 1", next.CompletedDays)
	}
}

func TestApplyMiss(t *testing.T) {
	gs := NewGameState("capivara")
	_ = gs.Pings.SetStatus(0, 0, SlotCompleted)
	_ = gs.Pings.SetStatus(0, 1, SlotCompleted)
	gs = ApplyCompletion(gs, InstrumentResponse{ID: "a", PingIndex: 0})
	gs = ApplyCompletion(gs, InstrumentResponse{ID: "b", PingIndex: 1})

	if err := gs.Pings.SetStatus(0, 2, SlotMissed); err != nil {
		t.Fatal(err)
	}
	next := ApplyMiss(gs)

	if next.CurrentStreak != 0 {
		t.Errorf("streak = %d, want 0", next.CurrentStreak)
	}
	if next.Points != 100 {
		t.Errorf("points = %d, want 100 (unchanged)", next.Points)
	}
	if len(next.Responses) != 2 {
		t.Errorf("responses = %d, want 2 (no record for a miss)", len(next.Responses))
	}
	want := 2.0 / float64(TotalSlots)
	if next.ResponseRate != want {
		t.Errorf("responseRate = %v, want %v", next.ResponseRate, want)
	}
}

func TestPointsNeverDriftFromGrid(t *testing.T) {
	// Even if a stale state carries wrong points, reconciliation recomputes
	// them from the grid.
	gs := NewGameState("capivara")
	gs.Points = 9999
	_ = gs.Pings.SetStatus(0, 0, SlotCompleted)

	next := ApplyCompletion(gs, InstrumentResponse{ID: "r", PingIndex: 0})
	if next.Points != 50 {
		t.Fatalf("points = %d, want 50 recomputed from grid", next.Points)
	}
}
