// Package table holds the static term-date table: an immutable, in-memory
// mapping of (academic year x term x week) to date ranges, plus the
// forward and reverse lookups the search engine is built on. The table is
// loaded once per process by a Loader and read-only thereafter.
package table

import (
	"time"

	"github.com/oxterm/termsearch/internal/term"
)

// WeekMap maps week numbers (0-12) to their date ranges. A term need not
// populate every week; absent weeks simply fail lookups.
type WeekMap map[int]term.WeekEntry

// YearRecord holds one academic year's terms.
type YearRecord struct {
	Year  string
	Terms map[term.Term]WeekMap
}

// Table is the loaded term-date table. Never mutated after Build, so all
// methods are safe for concurrent use.
type Table struct {
	years []*YearRecord
	index map[string]*YearRecord
}

// Placement identifies where a date falls in the academic calendar.
type Placement struct {
	Year  string
	Term  term.Term
	Week  int
	Entry term.WeekEntry
}

// Year returns the record for an exact academic-year label.
func (t *Table) Year(label string) (*YearRecord, bool) {
	rec, ok := t.index[label]
	return rec, ok
}

// Term returns the week map for a year and term. The name is resolved
// case-insensitively, accepting abbreviations.
func (t *Table) Term(label, name string) (WeekMap, bool) {
	tm, ok := term.Parse(name)
	if !ok {
		return nil, false
	}
	rec, ok := t.index[label]
	if !ok {
		return nil, false
	}
	wm, ok := rec.Terms[tm]
	return wm, ok
}

// Week returns the date range for a single week. Week numbers outside
// [0,12] and absent entries both report false; out-of-range input is never
// an error.
func (t *Table) Week(label string, tm term.Term, week int) (term.WeekEntry, bool) {
	if !term.ValidWeek(week) {
		return term.WeekEntry{}, false
	}
	rec, ok := t.index[label]
	if !ok {
		return term.WeekEntry{}, false
	}
	wm, ok := rec.Terms[tm]
	if !ok {
		return term.WeekEntry{}, false
	}
	entry, ok := wm[week]
	return entry, ok
}

// FindTermWeek scans every loaded year, term, and week for the entry whose
// inclusive range contains date. The table tops out around 8 years x 3
// terms x 13 weeks, so a linear scan suffices. Weeks never overlap, so the
// first hit is the only hit.
func (t *Table) FindTermWeek(date time.Time) (Placement, bool) {
	for _, rec := range t.years {
		for _, tm := range term.All() {
			wm, ok := rec.Terms[tm]
			if !ok {
				continue
			}
			for w := term.MinWeek; w <= term.MaxWeek; w++ {
				entry, ok := wm[w]
				if !ok {
					continue
				}
				if entry.Contains(date) {
					return Placement{Year: rec.Year, Term: tm, Week: w, Entry: entry}, true
				}
			}
		}
	}
	return Placement{}, false
}

// FullTermRange returns the span from the start of week 1 to the end of
// week 8. Absent if either boundary week is missing.
func (t *Table) FullTermRange(label string, tm term.Term) (term.WeekEntry, bool) {
	first, ok := t.Week(label, tm, term.FullTermFirstWeek)
	if !ok {
		return term.WeekEntry{}, false
	}
	last, ok := t.Week(label, tm, term.FullTermLastWeek)
	if !ok {
		return term.WeekEntry{}, false
	}
	return term.WeekEntry{Start: first.Start, End: last.End}, true
}

// Years lists the loaded academic-year labels in table order.
func (t *Table) Years() []string {
	labels := make([]string, len(t.years))
	for i, rec := range t.years {
		labels[i] = rec.Year
	}
	return labels
}

// NumYears returns the number of loaded academic years.
func (t *Table) NumYears() int {
	return len(t.years)
}

// CurrentAcademicYear returns the academic year containing ref if it falls
// inside a term, otherwise infers it by calendar convention (July-December
// start the year, January-June belong to the year started previously).
func (t *Table) CurrentAcademicYear(ref time.Time) string {
	if p, ok := t.FindTermWeek(ref); ok {
		return p.Year
	}
	return term.YearForDate(ref)
}
