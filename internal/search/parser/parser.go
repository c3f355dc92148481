// Package parser turns a raw query string into a tagged ParsedQuery by
// cascading three grammars in fixed precedence order: day-term-week, then
// term-week, then absolute date. Each grammar is a pure function
// string -> (ParsedQuery, applicable); the first applicable grammar wins.
// Malformed user input never produces an error return, only an Invalid
// result carrying a human-readable reason.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oxterm/termsearch/internal/dateutil"
	"github.com/oxterm/termsearch/internal/term"
)

// QueryType tags the variant carried by a ParsedQuery.
type QueryType string

const (
	TypeInvalid     QueryType = "invalid"
	TypeDate        QueryType = "date"
	TypeTermWeek    QueryType = "term-week"
	TypeDayTermWeek QueryType = "day-term-week"
)

// ParsedQuery is the structured intent extracted from a query string.
// Exactly one variant applies, per Type; the other fields are zero.
type ParsedQuery struct {
	Type  QueryType `json:"type"`
	Error string    `json:"error,omitempty"`

	// date
	ISODate string `json:"isoDate,omitempty"`

	// term-week and day-term-week
	Term term.Term `json:"term,omitempty"`
	Week int       `json:"week,omitempty"`
	Year string    `json:"year,omitempty"`

	// day-term-week only; 0=Sunday through 6=Saturday.
	DayOfWeek int `json:"dayOfWeek,omitempty"`
}

const (
	// ErrEmptyQuery is returned for blank input.
	ErrEmptyQuery = "Query is empty"
	// ErrWeekRange is the typed failure for week numbers outside [0,12].
	// It propagates through the day-term-week wrapper unchanged.
	ErrWeekRange = "Week number must be between 0 and 12"
	// ErrUnparseable is the fallback when no grammar applies.
	ErrUnparseable = "Could not parse query"
	// ErrBadDate is returned when a date grammar matches but the
	// components do not form a real calendar day.
	ErrBadDate = "Invalid calendar date"
)

var (
	dayRe = regexp.MustCompile(
		`\b(sunday|sun|monday|mon|tuesday|tues|tue|wednesday|weds|wed|thursday|thurs|thur|thu|friday|fri|saturday|sat)\b`)

	// Week tokens: "week 5", "wk5", "w5", or "5 week" / "5 wk".
	weekPrefixRe = regexp.MustCompile(`\b(?:week|wk|w)\s*(\d+)\b`)
	weekSuffixRe = regexp.MustCompile(`\b(\d+)\s*(?:week|wk)\b`)

	termRe = regexp.MustCompile(
		`\b(michaelmas|mich|mt|hilary|hil|ht|trinity|trin|tt)\b`)

	yearRangeRe = regexp.MustCompile(`\b(\d{4})-(\d{2})\b`)
	yearBareRe  = regexp.MustCompile(`\b(\d{4})\b`)

	isoDateRe     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dayMonthRe    = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\s+(\d{4})$`)
	monthDayRe    = regexp.MustCompile(`^([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})$`)
	ukSlashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

	spacesRe = regexp.MustCompile(`\s+`)
)

// Parse runs the grammar cascade over raw input. Equivalent queries
// differing only in case or spacing produce identical results.
func Parse(raw string) ParsedQuery {
	q := normalize(raw)
	if q == "" {
		return invalid(ErrEmptyQuery)
	}

	if pq, ok := parseDayTermWeek(q); ok {
		return pq
	}
	if pq, ok := parseTermWeek(q); ok {
		return pq
	}
	if pq, ok := parseDate(q); ok {
		return pq
	}
	return invalid(ErrUnparseable)
}

// normalize lowercases, trims, and collapses internal whitespace.
func normalize(s string) string {
	return spacesRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

func invalid(msg string) ParsedQuery {
	return ParsedQuery{Type: TypeInvalid, Error: msg}
}

// parseDayTermWeek matches a day-of-week token anywhere in the query with
// a term-week pattern in the remaining text. Typed failures from the
// term-week sub-parser (such as an out-of-range week) surface through this
// wrapper instead of falling through the cascade.
func parseDayTermWeek(q string) (ParsedQuery, bool) {
	loc := dayRe.FindStringSubmatchIndex(q)
	if loc == nil {
		return ParsedQuery{}, false
	}
	day, _ := dateutil.ParseDayName(q[loc[2]:loc[3]])

	rest := normalize(q[:loc[0]] + " " + q[loc[1]:])
	pq, ok := parseTermWeek(rest)
	if !ok {
		return ParsedQuery{}, false
	}
	if pq.Type == TypeInvalid {
		return pq, true
	}
	pq.Type = TypeDayTermWeek
	pq.DayOfWeek = int(day)
	return pq, true
}

// parseTermWeek requires all three of a week-number token, a term name or
// abbreviation, and a year token. The week token is located and removed
// first so its digits can never be mistaken for a year.
func parseTermWeek(q string) (ParsedQuery, bool) {
	rest, week, ok := extractWeek(q)
	if !ok {
		return ParsedQuery{}, false
	}
	if !term.ValidWeek(week) {
		return invalid(ErrWeekRange), true
	}

	loc := termRe.FindStringSubmatchIndex(rest)
	if loc == nil {
		return ParsedQuery{}, false
	}
	tm, _ := term.Parse(rest[loc[2]:loc[3]])
	rest = normalize(rest[:loc[0]] + " " + rest[loc[1]:])

	year, ok := extractYear(rest, tm)
	if !ok {
		return ParsedQuery{}, false
	}
	return ParsedQuery{Type: TypeTermWeek, Term: tm, Week: week, Year: year}, true
}

// extractWeek finds the first week token, returning the query with the
// token removed and the parsed week number.
func extractWeek(q string) (rest string, week int, ok bool) {
	for _, re := range []*regexp.Regexp{weekPrefixRe, weekSuffixRe} {
		loc := re.FindStringSubmatchIndex(q)
		if loc == nil {
			continue
		}
		n, err := strconv.Atoi(q[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		return normalize(q[:loc[0]] + " " + q[loc[1]:]), n, true
	}
	return "", 0, false
}

// extractYear resolves the year token: an explicit academic-year range
// such as "2024-25", or a bare 4-digit year anchored by the term
// (Michaelmas starts the cycle, Hilary and Trinity end it).
func extractYear(q string, tm term.Term) (string, bool) {
	if m := yearRangeRe.FindStringSubmatch(q); m != nil {
		label := m[1] + "-" + m[2]
		if _, ok := term.ParseYearLabel(label); ok {
			return label, true
		}
	}
	if m := yearBareRe.FindStringSubmatch(q); m != nil {
		y, _ := strconv.Atoi(m[1])
		return term.YearForTerm(tm, y), true
	}
	return "", false
}

// parseDate tries the absolute-date grammars in order: ISO, day-month-name
// (UK and US word orders), then DD/MM/YYYY. The grammars check only that
// the day is in [1,31]; whether the day exists in the given month is left
// to date construction, which fails with a typed result.
func parseDate(q string) (ParsedQuery, bool) {
	if m := isoDateRe.FindStringSubmatch(q); m != nil {
		return makeDateQuery(m[1], m[2], m[3])
	}
	if m := dayMonthRe.FindStringSubmatch(q); m != nil {
		month, ok := dateutil.ParseMonthName(m[2])
		if ok {
			return makeNamedDateQuery(m[3], month, m[1])
		}
	}
	if m := monthDayRe.FindStringSubmatch(q); m != nil {
		month, ok := dateutil.ParseMonthName(m[1])
		if ok {
			return makeNamedDateQuery(m[3], month, m[2])
		}
	}
	if m := ukSlashDateRe.FindStringSubmatch(q); m != nil {
		return makeDateQuery(m[3], m[2], m[1])
	}
	return ParsedQuery{}, false
}

func makeDateQuery(yearStr, monthStr, dayStr string) (ParsedQuery, bool) {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ParsedQuery{}, false
	}
	return constructDate(year, time.Month(month), day)
}

func makeNamedDateQuery(yearStr string, month time.Month, dayStr string) (ParsedQuery, bool) {
	year, _ := strconv.Atoi(yearStr)
	day, _ := strconv.Atoi(dayStr)
	if day < 1 || day > 31 {
		return ParsedQuery{}, false
	}
	return constructDate(year, month, day)
}

func constructDate(year int, month time.Month, day int) (ParsedQuery, bool) {
	d, ok := dateutil.MakeDate(year, month, day)
	if !ok {
		return invalid(ErrBadDate), true
	}
	return ParsedQuery{Type: TypeDate, ISODate: dateutil.FormatISO(d)}, true
}
