package game

import (
	"testing"

	"EmaQuest/pkg/errors"
)

func TestNewScheduleGridAllPending(t *testing.T) {
	g := NewScheduleGrid()
	for d := 0; d < StudyDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			if !g.IsPending(d, i) {
				t.Fatalf("slot (%d,%d) not pending in fresh grid", d, i)
			}
		}
	}
}

func TestSetStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		first   SlotStatus
		second  SlotStatus
		wantErr error
	}{
		{"completed then completed", SlotCompleted, SlotCompleted, errors.InvalidTransition},
		{"completed then missed", SlotCompleted, SlotMissed, errors.InvalidTransition},
		{"missed then completed", SlotMissed, SlotCompleted, errors.InvalidTransition},
		{"missed then missed", SlotMissed, SlotMissed, errors.InvalidTransition},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := NewScheduleGrid()
			if err := g.SetStatus(2, 3, c.first); err != nil {
				t.Fatalf("first SetStatus: %v", err)
			}
			if err := g.SetStatus(2, 3, c.second); err != c.wantErr {
				t.Fatalf("second SetStatus = %v, want %v", err, c.wantErr)
			}
			if g[2][3] != c.first {
				t.Fatalf("slot status changed to %q after rejected transition", g[2][3])
			}
		})
	}
}

func TestSetStatusRejectsPendingAndOutOfRange(t *testing.T) {
	g := NewScheduleGrid()

	if err := g.SetStatus(0, 0, SlotPending); err != errors.InvalidTransition {
		t.Fatalf("SetStatus(pending) = %v, want InvalidTransition", err)
	}

	outOfRange := [][2]int{{-1, 0}, {0, -1}, {7, 0}, {0, 7}}
	for _, slot := range outOfRange {
		if err := g.SetStatus(slot[0], slot[1], SlotCompleted); err != errors.SlotOutOfRange {
			t.Fatalf("SetStatus(%d,%d) = %v, want SlotOutOfRange", slot[0], slot[1], err)
		}
	}
}

func TestFindNextPendingOrder(t *testing.T) {
	g := NewScheduleGrid()

	slot, ok := g.FindNextPending()
	if !ok || slot != (Slot{Day: 0, Index: 0}) {
		t.Fatalf("fresh grid next = %+v ok=%v, want (0,0)", slot, ok)
	}

	// Resolving later slots must not change the next offer while an earlier
	// one is still pending.
	if err := g.SetStatus(3, 4, SlotCompleted); err != nil {
		t.Fatal(err)
	}
	slot, _ = g.FindNextPending()
	if slot != (Slot{Day: 0, Index: 0}) {
		t.Fatalf("next = %+v after resolving (3,4), want (0,0)", slot)
	}

	if err := g.SetStatus(0, 0, SlotMissed); err != nil {
		t.Fatal(err)
	}
	slot, _ = g.FindNextPending()
	if slot != (Slot{Day: 0, Index: 1}) {
		t.Fatalf("next = %+v, want (0,1)", slot)
	}
}

func TestFindNextPendingNoneWhenResolved(t *testing.T) {
	g := NewScheduleGrid()
	for d := 0; d < StudyDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			if err := g.SetStatus(d, i, SlotCompleted); err != nil {
				t.Fatal(err)
			}
		}
	}

	if _, ok := g.FindNextPending(); ok {
		t.Fatal("FindNextPending returned a slot on a fully resolved grid")
	}
	if !g.Resolved() {
		t.Fatal("Resolved() = false on a fully resolved grid")
	}
}

func TestCurrentDayDerived(t *testing.T) {
	g := NewScheduleGrid()
	if g.CurrentDay() != 0 {
		t.Fatalf("CurrentDay = %d, want 0", g.CurrentDay())
	}

	for i := 0; i < SlotsPerDay; i++ {
		if err := g.SetStatus(0, i, SlotCompleted); err != nil {
			t.Fatal(err)
		}
	}
	if g.CurrentDay() != 1 {
		t.Fatalf("CurrentDay = %d after finishing day 0, want 1", g.CurrentDay())
	}
}

func TestScheduleGridScanValueRoundTrip(t *testing.T) {
	g := NewScheduleGrid()
	_ = g.SetStatus(0, 0, SlotCompleted)
	_ = g.SetStatus(1, 6, SlotMissed)

	v, err := g.Value()
	if err != nil {
		t.Fatal(err)
	}

	var restored ScheduleGrid
	if err := restored.Scan(v); err != nil {
		t.Fatal(err)
	}
	if restored != g {
		t.Fatalf("round trip mismatch:\n got %v\nwant %v", restored, g)
	}

	// nil column yields a fresh all-pending grid
	var fromNil ScheduleGrid
	if err := fromNil.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if fromNil != NewScheduleGrid() {
		t.Fatal("Scan(nil) did not yield an all-pending grid")
	}
}
