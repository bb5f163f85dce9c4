package game

import "testing"

func TestLevelForBoundaries(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{159, 1},
		{160, 2},
		{319, 2},
		{320, 3},
		{3199, 20},
		{3200, 21},
		{999999, 21},
	}

	for _, c := range cases {
		if got := LevelFor(c.xp); got != c.want {
			t.Errorf("LevelFor(%d) = %d, want %d", c.xp, got, c.want)
		}
	}
}

func TestXPForSlot(t *testing.T) {
	for i := 0; i < EndOfDayIndex; i++ {
		if got := XPForSlot(i); got != XPRegularSlot {
			t.Errorf("XPForSlot(%d) = %d, want %d", i, got, XPRegularSlot)
		}
	}
	if got := XPForSlot(EndOfDayIndex); got != XPEndOfDaySlot {
		t.Errorf("XPForSlot(%d) = %d, want %d", EndOfDayIndex, got, XPEndOfDaySlot)
	}
}

func TestPointsFromGrid(t *testing.T) {
	g := NewScheduleGrid()
	if got := PointsFromGrid(&g); got != 0 {
		t.Fatalf("empty grid points = %d, want 0", got)
	}

	// One full day: 6 regular + 1 end-of-day = 400.
	for i := 0; i < SlotsPerDay; i++ {
		if err := g.SetStatus(0, i, SlotCompleted); err != nil {
			t.Fatal(err)
		}
	}
	if got := PointsFromGrid(&g); got != 6*XPRegularSlot+XPEndOfDaySlot {
		t.Fatalf("full day points = %d, want %d", got, 6*XPRegularSlot+XPEndOfDaySlot)
	}

	// Missed slots do not count.
	if err := g.SetStatus(1, 0, SlotMissed); err != nil {
		t.Fatal(err)
	}
	if got := PointsFromGrid(&g); got != 6*XPRegularSlot+XPEndOfDaySlot {
		t.Fatalf("points changed after a miss: %d", got)
	}
}

func TestMaxPointsReachMaxLevel(t *testing.T) {
	g := NewScheduleGrid()
	for d := 0; d < StudyDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			if err := g.SetStatus(d, i, SlotCompleted); err != nil {
				t.Fatal(err)
			}
		}
	}

	points := PointsFromGrid(&g)
	if points != 2800 {
		t.Fatalf("perfect-study points = %d, want 2800", points)
	}
	if LevelFor(points) != 18 {
		t.Fatalf("perfect-study level = %d, want 18", LevelFor(points))
	}
}
