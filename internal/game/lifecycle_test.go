package game

import (
	"testing"
	"time"

	"EmaQuest/pkg/errors"
)

// fakeClock is a manually advanced clock for controller tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func completeRegularFlow(t *testing.T, c *PingController) *InstrumentResponse {
	t.Helper()
	if _, err := c.Advance(SAMPayload{Pleasure: 5, Arousal: 5, Dominance: 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Advance(FeedContextPayload{}); err != nil {
		t.Fatal(err)
	}
	resp, err := c.Advance(PANASPayload{Ratings: fullPANAS(3)})
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestControllerOpenAndComplete(t *testing.T) {
	clock := newFakeClock()
	grid := NewScheduleGrid()
	c := NewPingController(&grid, 0, clock.Now)

	if c.State() != StateIdle {
		t.Fatalf("initial state = %q", c.State())
	}

	flow, err := c.Open()
	if err != nil {
		t.Fatal(err)
	}
	if flow.Slot() != (Slot{Day: 0, Index: 0}) {
		t.Fatalf("opened slot = %+v, want (0,0)", flow.Slot())
	}
	if c.State() != StateAwaitingAnswer {
		t.Fatalf("state = %q after open", c.State())
	}
	deadline, ok := c.Deadline()
	if !ok || !deadline.Equal(clock.Now().Add(DefaultAnswerWindow)) {
		t.Fatalf("deadline = %v ok=%v", deadline, ok)
	}

	resp := completeRegularFlow(t, c)
	if resp == nil {
		t.Fatal("no response on completion")
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %q after completion", c.State())
	}
	if grid[0][0] != SlotCompleted {
		t.Fatalf("slot (0,0) = %q, want completed", grid[0][0])
	}
}

func TestControllerReentrantOpen(t *testing.T) {
	grid := NewScheduleGrid()
	c := NewPingController(&grid, 0, nil)

	if _, err := c.Open(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Open(); err != errors.FlowAlreadyOpen {
		t.Fatalf("second open: err = %v, want FlowAlreadyOpen", err)
	}
}

func TestControllerOpenWhenResolved(t *testing.T) {
	grid := NewScheduleGrid()
	for d := 0; d < StudyDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			_ = grid.SetStatus(d, i, SlotMissed)
		}
	}
	c := NewPingController(&grid, 0, nil)

	if _, err := c.Open(); err != errors.StudyComplete {
		t.Fatalf("open on resolved grid: err = %v, want StudyComplete", err)
	}
}

func TestControllerCancelMarksMissed(t *testing.T) {
	grid := NewScheduleGrid()
	c := NewPingController(&grid, 0, nil)

	if _, err := c.Cancel(); err != errors.FlowNotOpen {
		t.Fatalf("cancel while idle: err = %v, want FlowNotOpen", err)
	}

	if _, err := c.Open(); err != nil {
		t.Fatal(err)
	}
	slot, err := c.Cancel()
	if err != nil {
		t.Fatal(err)
	}
	if grid[slot.Day][slot.Index] != SlotMissed {
		t.Fatalf("cancelled slot = %q, want missed", grid[slot.Day][slot.Index])
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %q after cancel", c.State())
	}

	// The missed slot is never re-offered.
	flow, err := c.Open()
	if err != nil {
		t.Fatal(err)
	}
	if flow.Slot() == slot {
		t.Fatalf("missed slot %+v re-offered", slot)
	}
}

func TestControllerTimeout(t *testing.T) {
	clock := newFakeClock()
	grid := NewScheduleGrid()
	// Pre-resolve day 0 and slots (1,0)..(1,1) so the next slot is (1,2).
	for i := 0; i < SlotsPerDay; i++ {
		_ = grid.SetStatus(0, i, SlotCompleted)
	}
	_ = grid.SetStatus(1, 0, SlotCompleted)
	_ = grid.SetStatus(1, 1, SlotCompleted)

	c := NewPingController(&grid, 0, clock.Now)
	flow, err := c.Open()
	if err != nil {
		t.Fatal(err)
	}
	if flow.Slot() != (Slot{Day: 1, Index: 2}) {
		t.Fatalf("opened %+v, want (1,2)", flow.Slot())
	}

	// Just inside the window: nothing fires.
	clock.Advance(DefaultAnswerWindow - time.Second)
	if _, fired := c.Tick(clock.Now()); fired {
		t.Fatal("timeout fired inside the window")
	}

	clock.Advance(2 * time.Second)
	slot, fired := c.Tick(clock.Now())
	if !fired {
		t.Fatal("timeout did not fire past the deadline")
	}
	if slot != (Slot{Day: 1, Index: 2}) {
		t.Fatalf("timed-out slot = %+v, want (1,2)", slot)
	}
	if grid[1][2] != SlotMissed {
		t.Fatalf("slot (1,2) = %q, want missed", grid[1][2])
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %q after timeout", c.State())
	}

	// Timer cleared: further ticks are no-ops.
	clock.Advance(time.Hour)
	if _, fired := c.Tick(clock.Now()); fired {
		t.Fatal("timeout fired twice")
	}
}

func TestControllerCompletionBeatsTick(t *testing.T) {
	clock := newFakeClock()
	grid := NewScheduleGrid()
	c := NewPingController(&grid, 0, clock.Now)

	if _, err := c.Open(); err != nil {
		t.Fatal(err)
	}
	completeRegularFlow(t, c)

	// Even a late tick at the old deadline must not retro-miss the slot.
	clock.Advance(DefaultAnswerWindow + time.Minute)
	if _, fired := c.Tick(clock.Now()); fired {
		t.Fatal("tick fired after completion")
	}
	if grid[0][0] != SlotCompleted {
		t.Fatalf("slot (0,0) = %q after late tick, want completed", grid[0][0])
	}
}

func TestControllerAdvanceWhileIdle(t *testing.T) {
	grid := NewScheduleGrid()
	c := NewPingController(&grid, 0, nil)

	if _, err := c.Advance(SAMPayload{Pleasure: 5, Arousal: 5, Dominance: 5}); err != errors.FlowNotOpen {
		t.Fatalf("advance while idle: err = %v, want FlowNotOpen", err)
	}
}

func TestControllerCustomWindow(t *testing.T) {
	clock := newFakeClock()
	grid := NewScheduleGrid()
	c := NewPingController(&grid, 30*time.Second, clock.Now)

	if _, err := c.Open(); err != nil {
		t.Fatal(err)
	}
	clock.Advance(31 * time.Second)
	if _, fired := c.Tick(clock.Now()); !fired {
		t.Fatal("custom 30s window did not fire")
	}
}
