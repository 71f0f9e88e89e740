package entity

import "github.com/google/uuid"

// HistoryEntry is the frozen completion state of one habit instance at
// rollover time.
type HistoryEntry struct {
	HabitID   uuid.UUID
	GroupID   *uuid.UUID
	Name      string
	Completed bool
}

// HistoryRecord is the immutable snapshot of one calendar date's
// completions, keyed by "YYYY-MM-DD". It holds one entry per habit whose
// weekday matched that date at rollover time. A date with no scheduled
// habits has no record at all.
type HistoryRecord struct {
	Date    string
	Entries []HistoryEntry
}

// AllCompleted reports whether every entry in the record was completed.
// An empty record is vacuously complete, but rollover never writes one.
func (r *HistoryRecord) AllCompleted() bool {
	for _, e := range r.Entries {
		if !e.Completed {
			return false
		}
	}
	return true
}

// CompletedCount returns the number of completed entries.
func (r *HistoryRecord) CompletedCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.Completed {
			n++
		}
	}
	return n
}
