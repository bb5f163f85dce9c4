package game

import (
	"time"

	"EmaQuest/pkg/errors"
)

// ControllerState is the lifecycle state of a participant session.
type ControllerState string

const (
	StateIdle           ControllerState = "idle"
	StateAwaitingAnswer ControllerState = "awaiting_answer"
)

// DefaultAnswerWindow is the deadline from flow open to auto-miss.
const DefaultAnswerWindow = 5 * time.Minute

// PingController drives one participant through their slots: it opens the
// next due slot, enforces the answer window, and commits completed/missed
// outcomes into the grid. At most one flow is open at a time; the timeout is
// cooperative — the owner calls Tick at >=1 Hz.
type PingController struct {
	grid     *ScheduleGrid
	flow     *InstrumentFlow
	deadline time.Time
	window   time.Duration
	now      func() time.Time
}

// NewPingController wires a controller to a grid. window <= 0 falls back to
// the default 5 minutes; now == nil falls back to time.Now.
func NewPingController(grid *ScheduleGrid, window time.Duration, now func() time.Time) *PingController {
	if window <= 0 {
		window = DefaultAnswerWindow
	}
	if now == nil {
		now = time.Now
	}
	return &PingController{grid: grid, window: window, now: now}
}

func (c *PingController) State() ControllerState {
	if c.flow != nil {
		return StateAwaitingAnswer
	}
	return StateIdle
}

// Flow returns the open flow, or nil when idle.
func (c *PingController) Flow() *InstrumentFlow {
	return c.flow
}

// Deadline returns the auto-miss deadline of the open flow.
func (c *PingController) Deadline() (time.Time, bool) {
	if c.flow == nil {
		return time.Time{}, false
	}
	return c.deadline, true
}

// Open starts an instrument flow for the next pending slot. Rejected when a
// flow is already open (re-entrant opens) or when every slot is resolved.
func (c *PingController) Open() (*InstrumentFlow, error) {
	if c.flow != nil {
		return nil, errors.FlowAlreadyOpen
	}

	slot, ok := c.grid.FindNextPending()
	if !ok {
		return nil, errors.StudyComplete
	}

	now := c.now()
	c.flow = OpenFlow(slot, now)
	c.deadline = now.Add(c.window)
	return c.flow, nil
}

// Advance submits the current step's payload. When the flow finishes, the
// deadline is cleared synchronously before the slot is committed, so a
// concurrent Tick can never retroactively miss a just-completed slot.
func (c *PingController) Advance(payload StepPayload) (*InstrumentResponse, error) {
	if c.flow == nil {
		return nil, errors.FlowNotOpen
	}

	resp, err := c.flow.Advance(payload)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	// Completion path: clear the timer first, then commit.
	slot := c.flow.Slot()
	c.flow = nil
	c.deadline = time.Time{}

	if err := c.grid.SetStatus(slot.Day, slot.Index, SlotCompleted); err != nil {
		return nil, err
	}
	return resp, nil
}

// Cancel discards the open flow and marks its slot missed. Missing is
// terminal for the slot; it is never re-offered.
func (c *PingController) Cancel() (Slot, error) {
	if c.flow == nil {
		return Slot{}, errors.FlowNotOpen
	}

	slot := c.flow.Slot()
	c.flow = nil
	c.deadline = time.Time{}

	if err := c.grid.SetStatus(slot.Day, slot.Index, SlotMissed); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

// Tick applies the answer-window deadline. When the open flow has expired it
// marks the slot missed, discards the flow and reports the missed slot. A
// completed flow has already cleared the deadline, so the timer cannot fire
// twice or after completion. Drift-tolerant: correctness only needs Tick to
// run at a coarse >=1 Hz cadence.
func (c *PingController) Tick(now time.Time) (Slot, bool) {
	if c.flow == nil {
		return Slot{}, false
	}
	if now.Before(c.deadline) {
		return Slot{}, false
	}

	slot := c.flow.Slot()
	c.flow = nil
	c.deadline = time.Time{}

	// The slot is pending by construction; a failure here means the grid was
	// mutated behind the controller's back.
	_ = c.grid.SetStatus(slot.Day, slot.Index, SlotMissed)
	return slot, true
}
