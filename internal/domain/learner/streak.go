package learner

// ══════════════════════════════════════════════════════════════════════════════
// STREAK (Consecutive-day activity series)
// ══════════════════════════════════════════════════════════════════════════════

// firstActivity is the day-diff sentinel for a learner with no prior activity.
const firstActivity = -1

// Streak is the consecutive-day activity state machine. It is evaluated
// at most once per calendar day, during the shared day-rollover step.
type Streak struct {
	// Current - length of the active series in days.
	Current int

	// Longest - best series ever reached.
	Longest int
}

// Evaluate applies one day-rollover transition and returns the new state:
//
//	dayDiff == firstActivity  -> series starts at 1
//	dayDiff == 0              -> unchanged (same day)
//	dayDiff == 1              -> series continues, Current+1
//	dayDiff  > 1              -> series broken, reset to 1
//
// Longest is raised whenever Current passes it.
func (s Streak) Evaluate(dayDiff int) Streak {
	switch {
	case dayDiff == 0:
		return s
	case dayDiff == 1:
		s.Current++
	default:
		// First activity ever, or one or more days skipped.
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return s
}

// Lapsed reports whether the series would break at the given day gap.
func (s Streak) Lapsed(dayDiff int) bool {
	return dayDiff > 1
}

// Projected returns the streak value a read-only view should report for
// the given day gap: a lapsed series reads as 0 until an actual learning
// event confirms the reset. This is a view-time projection, the stored
// value is untouched.
func (s Streak) Projected(dayDiff int) int {
	if s.Lapsed(dayDiff) {
		return 0
	}
	return s.Current
}
