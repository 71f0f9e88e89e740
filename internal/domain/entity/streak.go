package entity

// StreakState tracks consecutive fully-completed scheduled days. LastDate
// is the stored last-active-date ("YYYY-MM-DD", empty before first run)
// and acts as the fencing token for the daily rollover: at most one
// rollover per date per user.
type StreakState struct {
	Streak     int32
	BestStreak int32
	LastDate   string
}

// Apply folds one evaluated day into the streak. allCompleted is the
// outcome for a day that had at least one scheduled habit.
func (s *StreakState) Apply(allCompleted bool) {
	if allCompleted {
		s.Streak++
	} else {
		s.Streak = 0
	}
	if s.Streak > s.BestStreak {
		s.BestStreak = s.Streak
	}
}
