// Package engine composes the query parser with the term table to answer
// queries: a term-week query yields the week's full date range, a date
// query yields its place in the academic calendar (or "outside term
// time"), and a day-term-week query yields a single resolved date. All
// operations are pure functions over the immutable table and safe for
// concurrent use.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/oxterm/termsearch/internal/dateutil"
	"github.com/oxterm/termsearch/internal/search/parser"
	"github.com/oxterm/termsearch/internal/term/table"
)

// Result kinds.
const (
	KindWeekRange  = "week-range"
	KindSingleDate = "single-date"
	KindError      = "error"
)

// Result is the answer to a single query. Kind selects which fields are
// populated; Query always echoes the original input.
type Result struct {
	Kind string `json:"kind"`
	// QueryType records which grammar the query matched, so callers
	// never re-run the parser cascade for classification.
	QueryType string `json:"queryType"`
	Query     string `json:"query"`
	Error     string `json:"error,omitempty"`

	Term string `json:"term,omitempty"`
	Week *int   `json:"week,omitempty"`
	Year string `json:"year,omitempty"`

	// week-range
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Dates     []string `json:"dates,omitempty"`

	// single-date
	ISODate   string `json:"isoDate,omitempty"`
	DayOfWeek *int   `json:"dayOfWeek,omitempty"`

	DisplayText string `json:"displayText,omitempty"`
	DetailText  string `json:"detailText,omitempty"`
}

// Engine answers queries against a loaded term table.
type Engine struct {
	table  *table.Table
	logger *slog.Logger
}

// New creates an Engine over the given table. The table must already be
// loaded; the engine never mutates it.
func New(t *table.Table) *Engine {
	return &Engine{
		table:  t,
		logger: slog.Default().With("component", "search-engine"),
	}
}

// Search parses and resolves a single query. User errors (unparseable
// input, unknown weeks) come back as KindError results, never as panics
// or error returns.
func (e *Engine) Search(query string) Result {
	pq := parser.Parse(query)
	var res Result
	switch pq.Type {
	case parser.TypeInvalid:
		res = e.failure(query, pq.Error)
	case parser.TypeTermWeek:
		res = e.searchTermWeek(query, pq)
	case parser.TypeDate:
		res = e.searchDate(query, pq)
	case parser.TypeDayTermWeek:
		res = e.searchDayTermWeek(query, pq)
	default:
		res = e.failure(query, parser.ErrUnparseable)
	}
	res.QueryType = string(pq.Type)
	return res
}

// SearchMultiple resolves each query independently, preserving order.
func (e *Engine) SearchMultiple(queries []string) []Result {
	results := make([]Result, len(queries))
	for i, q := range queries {
		results[i] = e.Search(q)
	}
	return results
}

// Summarize renders a result as display text: "Error: ..." for failures,
// otherwise the display and detail lines.
func Summarize(r Result) string {
	if r.Kind == KindError {
		return fmt.Sprintf("Error: %s", r.Error)
	}
	return fmt.Sprintf("%s\n%s", r.DisplayText, r.DetailText)
}

func (e *Engine) searchTermWeek(query string, pq parser.ParsedQuery) Result {
	entry, ok := e.table.Week(pq.Year, pq.Term, pq.Week)
	if !ok {
		return e.failure(query, fmt.Sprintf("Week %d of %s %s not found",
			pq.Week, pq.Term.Title(), pq.Year))
	}

	week := pq.Week
	return Result{
		Kind:      KindWeekRange,
		Query:     query,
		Term:      string(pq.Term),
		Week:      &week,
		Year:      pq.Year,
		StartDate: dateutil.FormatISO(entry.Start),
		EndDate:   dateutil.FormatISO(entry.End),
		Dates:     dateutil.DatesBetween(entry.Start, entry.End),
		DisplayText: fmt.Sprintf("%s Term %s, Week %d",
			pq.Term.Title(), pq.Year, pq.Week),
		DetailText: fmt.Sprintf("%s to %s",
			dateutil.FormatLong(entry.Start), dateutil.FormatLong(entry.End)),
	}
}

func (e *Engine) searchDate(query string, pq parser.ParsedQuery) Result {
	d, err := dateutil.ParseISO(pq.ISODate)
	if err != nil {
		// The parser only emits well-formed ISO dates; reaching here is
		// a programming error, not bad user input.
		e.logger.Error("parser produced unparseable date", "iso", pq.ISODate, "error", err)
		return e.failure(query, parser.ErrBadDate)
	}

	dow := int(d.Weekday())
	res := Result{
		Kind:        KindSingleDate,
		Query:       query,
		ISODate:     pq.ISODate,
		DayOfWeek:   &dow,
		DisplayText: dateutil.FormatLong(d),
	}

	p, ok := e.table.FindTermWeek(d)
	if !ok {
		res.DetailText = "Outside term time"
		return res
	}
	res.Term = string(p.Term)
	res.Week = &p.Week
	res.Year = p.Year
	res.DetailText = fmt.Sprintf("%s Term %s, Week %d", p.Term.Title(), p.Year, p.Week)
	return res
}

func (e *Engine) searchDayTermWeek(query string, pq parser.ParsedQuery) Result {
	entry, ok := e.table.Week(pq.Year, pq.Term, pq.Week)
	if !ok {
		return e.failure(query, fmt.Sprintf("Week %d of %s %s not found",
			pq.Week, pq.Term.Title(), pq.Year))
	}

	// Day offset is measured from the week's Sunday start: offset 0 is
	// the start date, offset 6 the end date.
	d := dateutil.AddDays(entry.Start, pq.DayOfWeek)
	if d.After(entry.End) {
		return e.failure(query, "Date falls outside the specified week")
	}

	week := pq.Week
	dow := pq.DayOfWeek
	return Result{
		Kind:        KindSingleDate,
		Query:       query,
		ISODate:     dateutil.FormatISO(d),
		Term:        string(pq.Term),
		Week:        &week,
		Year:        pq.Year,
		DayOfWeek:   &dow,
		DisplayText: dateutil.FormatLong(d),
		DetailText: fmt.Sprintf("%s Term %s, Week %d",
			pq.Term.Title(), pq.Year, pq.Week),
	}
}

func (e *Engine) failure(query, msg string) Result {
	return Result{Kind: KindError, Query: query, Error: msg}
}
