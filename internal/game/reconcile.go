package game

// Reconciliation is split in two halves on purpose: the pure reducers below
// compute the next GameState, and the caller persists the result through the
// Store port as a separate effect step. No writes happen in here.

// ApplyCompletion folds a finished response into the state. The grid inside
// gs.Pings must already show the slot as completed; points are recomputed
// from the grid rather than incremented, so the points invariant holds even
// if intermediate states diverged.
func ApplyCompletion(gs GameState, resp InstrumentResponse) GameState {
	next := gs

	next.Responses = make([]InstrumentResponse, len(gs.Responses), len(gs.Responses)+1)
	copy(next.Responses, gs.Responses)
	next.Responses = append(next.Responses, resp)

	next.Points = PointsFromGrid(&next.Pings)
	next.Level = LevelFor(next.Points)
	next.CurrentStreak = gs.CurrentStreak + 1
	if resp.PingIndex == EndOfDayIndex {
		next.CompletedDays = gs.CompletedDays + 1
	}
	next.ResponseRate = float64(next.Pings.CompletedCount()) / float64(TotalSlots)

	return next
}

// ApplyMiss folds a missed slot into the state: the streak resets, no XP
// changes and no response is recorded.
func ApplyMiss(gs GameState) GameState {
	next := gs
	next.CurrentStreak = 0
	next.Points = PointsFromGrid(&next.Pings)
	next.Level = LevelFor(next.Points)
	next.ResponseRate = float64(next.Pings.CompletedCount()) / float64(TotalSlots)
	return next
}
