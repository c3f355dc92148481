// Package dateutil provides pure date helpers shared by the parser, the
// term table, and the search engine: ISO parsing and formatting, day and
// month name resolution, range enumeration, and day arithmetic. All dates
// are handled in UTC at midnight.
package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// ISOFormat is the wire format for dates throughout the service.
const ISOFormat = "2006-01-02"

// ParseISO parses a YYYY-MM-DD string into a UTC midnight time.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(ISOFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing ISO date %q: %w", s, err)
	}
	return t, nil
}

// FormatISO formats t as YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return t.Format(ISOFormat)
}

// MakeDate builds a UTC midnight date and reports whether the components
// describe a real calendar day. time.Date normalises overflow (e.g.
// 30 February becomes 2 March), so a round-trip mismatch means the input
// was not a valid day for that month.
func MakeDate(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// AddDays returns t shifted by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// InRange reports whether date falls within [start, end], with end
// inclusive to end-of-day.
func InRange(date, start, end time.Time) bool {
	if date.Before(start) {
		return false
	}
	return date.Before(end.AddDate(0, 0, 1))
}

// DatesBetween enumerates every date from start to end inclusive as ISO
// strings. Returns nil when end precedes start.
func DatesBetween(start, end time.Time) []string {
	if end.Before(start) {
		return nil
	}
	dates := make([]string, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatISO(d))
	}
	return dates
}

// FormatLong renders a date for display, e.g. "Sunday 4 May 2025".
func FormatLong(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", t.Weekday(), t.Day(), t.Month(), t.Year())
}

// dayNames maps every recognised day-of-week spelling to its weekday.
// Indices follow time.Weekday: 0=Sunday through 6=Saturday.
var dayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tues":      time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"weds":      time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thurs":     time.Thursday,
	"thur":      time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

// ParseDayName resolves a full or abbreviated day-of-week name.
func ParseDayName(s string) (time.Weekday, bool) {
	d, ok := dayNames[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// DayNames returns the full lowercase day names, Sunday first.
func DayNames() []string {
	return []string{
		"sunday", "monday", "tuesday", "wednesday",
		"thursday", "friday", "saturday",
	}
}

// monthNames maps full names and the standard 3/4-letter abbreviations to
// months.
var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ParseMonthName resolves a full or abbreviated month name.
func ParseMonthName(s string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}
