package game

const (
	// XPRegularSlot and XPEndOfDaySlot are the points awarded per completed
	// slot. The end-of-day slot is worth double to incentivize daily closure.
	XPRegularSlot  = 50
	XPEndOfDaySlot = 100

	// MaxLevel is reached at the last threshold; there is no leveling past it.
	MaxLevel = 21

	levelStep = 160
)

// levelThresholds[i] is the cumulative XP needed for level i+1: 0, 160, 320,
// ..., 3200.
var levelThresholds = func() [MaxLevel]int {
	var t [MaxLevel]int
	for i := range t {
		t[i] = i * levelStep
	}
	return t
}()

// LevelFor maps cumulative XP to a level: 1 + the largest threshold index not
// above xp, clamped to [1, MaxLevel].
func LevelFor(xp int) int {
	level := 1
	for i, threshold := range levelThresholds {
		if xp < threshold {
			break
		}
		level = i + 1
	}
	return level
}

// XPForSlot returns the XP awarded for completing the given slot index.
func XPForSlot(index int) int {
	if index == EndOfDayIndex {
		return XPEndOfDaySlot
	}
	return XPRegularSlot
}

// PointsFromGrid recomputes total points from scratch by summing XPForSlot
// over every completed slot. The reconciler always goes through here instead
// of incrementing, so points can never drift from the grid.
func PointsFromGrid(g *ScheduleGrid) int {
	points := 0
	for d := 0; d < StudyDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			if g[d][i] == SlotCompleted {
				points += XPForSlot(i)
			}
		}
	}
	return points
}
