package term

import "time"

// WeekEntry is the inclusive Sunday-to-Saturday date range of a single
// numbered week within a term.
type WeekEntry struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether date falls inside the entry, treating the end
// date as inclusive to end-of-day.
func (w WeekEntry) Contains(date time.Time) bool {
	if date.Before(w.Start) {
		return false
	}
	endOfDay := w.End.AddDate(0, 0, 1)
	return date.Before(endOfDay)
}

// Days returns the number of calendar days the entry spans, inclusive.
func (w WeekEntry) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}
