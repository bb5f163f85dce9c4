package game

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"EmaQuest/pkg/errors"
)

// ScheduleGrid is the 7x7 grid of slot statuses. Index 0..5 of each day are
// regular slots, index 6 is the end-of-day slot. A slot that has left pending
// never returns to it.
type ScheduleGrid [StudyDays][SlotsPerDay]SlotStatus

// NewScheduleGrid returns a grid with every slot pending.
func NewScheduleGrid() ScheduleGrid {
	var g ScheduleGrid
	for d := 0; d < StudyDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			g[d][i] = SlotPending
		}
	}
	return g
}

func (g *ScheduleGrid) inRange(day, index int) bool {
	return day >= 0 && day < StudyDays && index >= 0 && index < SlotsPerDay
}

// IsPending reports whether the slot is still unresolved.
func (g *ScheduleGrid) IsPending(day, index int) bool {
	if !g.inRange(day, index) {
		return false
	}
	return g[day][index] == SlotPending
}

// SetStatus resolves a pending slot to completed or missed. Resolving an
// already-resolved slot, or resolving back to pending, is an InvalidTransition.
func (g *ScheduleGrid) SetStatus(day, index int, status SlotStatus) error {
	if !g.inRange(day, index) {
		return errors.SlotOutOfRange
	}
	if status != SlotCompleted && status != SlotMissed {
		return errors.InvalidTransition
	}
	if g[day][index] != SlotPending {
		return errors.InvalidTransition
	}
	g[day][index] = status
	return nil
}

// FindNextPending returns the lexicographically first pending slot (days
// ascending, then slot index ascending). This ordering is the sole scheduling
// policy: slots are offered strictly in chronological order, no skipping ahead.
func (g *ScheduleGrid) FindNextPending() (Slot, bool) {
	for d := 0; d < StudyDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			if g[d][i] == SlotPending {
				return Slot{Day: d, Index: i}, true
			}
		}
	}
	return Slot{}, false
}

// CurrentDay is the display concept "which study day is the participant on":
// the day of the first pending slot, or the last day once everything is
// resolved. Derived, never stored.
func (g *ScheduleGrid) CurrentDay() int {
	if slot, ok := g.FindNextPending(); ok {
		return slot.Day
	}
	return StudyDays - 1
}

// CompletedCount returns the number of completed slots.
func (g *ScheduleGrid) CompletedCount() int {
	n := 0
	for d := 0; d < StudyDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			if g[d][i] == SlotCompleted {
				n++
			}
		}
	}
	return n
}

// MissedCount returns the number of missed slots.
func (g *ScheduleGrid) MissedCount() int {
	n := 0
	for d := 0; d < StudyDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			if g[d][i] == SlotMissed {
				n++
			}
		}
	}
	return n
}

// Resolved reports whether every slot has left pending.
func (g *ScheduleGrid) Resolved() bool {
	_, ok := g.FindNextPending()
	return !ok
}

// Value serializes the grid as a jsonb column.
func (g ScheduleGrid) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// Scan restores the grid from a jsonb column; unknown cells default to pending.
func (g *ScheduleGrid) Scan(value interface{}) error {
	if value == nil {
		*g = NewScheduleGrid()
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("failed to scan ScheduleGrid from %T", value)
		}
	}
	if err := json.Unmarshal(bytes, g); err != nil {
		return err
	}
	for d := 0; d < StudyDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			if g[d][i] == "" {
				g[d][i] = SlotPending
			}
		}
	}
	return nil
}
