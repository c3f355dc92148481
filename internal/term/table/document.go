package table

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/oxterm/termsearch/internal/dateutil"
	"github.com/oxterm/termsearch/internal/term"
)

// Document is the structured term-table resource consumed at startup: per
// academic year, per term, per week number, a start/end date pair. Sources
// either fetch it as JSON or synthesise it from rows.
type Document struct {
	Years []DocumentYear `json:"years"`
}

// DocumentYear holds one academic year's terms, keyed by lowercase term
// name, each mapping week numbers (as strings, JSON keys) to date pairs.
type DocumentYear struct {
	Year  string                            `json:"year"`
	Terms map[string]map[string]DocumentWeek `json:"terms"`
}

// DocumentWeek is a single week's ISO date pair.
type DocumentWeek struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParseDocument decodes the JSON term-table resource.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding term table document: %w", err)
	}
	return &doc, nil
}

// Build validates the document and assembles an immutable Table. Any
// structural violation (bad year label, unknown term, week outside [0,12],
// malformed date, inverted or overlapping ranges) rejects the whole
// document so a partial table is never installed.
func Build(doc *Document) (*Table, error) {
	if doc == nil || len(doc.Years) == 0 {
		return nil, fmt.Errorf("term table document has no years")
	}

	log := slog.Default().With("component", "term-table")
	t := &Table{index: make(map[string]*YearRecord, len(doc.Years))}

	for _, dy := range doc.Years {
		if _, ok := term.ParseYearLabel(dy.Year); !ok {
			return nil, fmt.Errorf("invalid academic year label %q", dy.Year)
		}
		if _, dup := t.index[dy.Year]; dup {
			return nil, fmt.Errorf("duplicate academic year %q", dy.Year)
		}

		rec := &YearRecord{
			Year:  dy.Year,
			Terms: make(map[term.Term]WeekMap, len(dy.Terms)),
		}
		for name, weeks := range dy.Terms {
			tm, ok := term.Parse(name)
			if !ok {
				return nil, fmt.Errorf("year %s: unknown term %q", dy.Year, name)
			}
			wm := make(WeekMap, len(weeks))
			for key, dw := range weeks {
				w, err := strconv.Atoi(key)
				if err != nil || !term.ValidWeek(w) {
					return nil, fmt.Errorf("year %s %s: invalid week number %q", dy.Year, tm, key)
				}
				start, err := dateutil.ParseISO(dw.Start)
				if err != nil {
					return nil, fmt.Errorf("year %s %s week %d: %w", dy.Year, tm, w, err)
				}
				end, err := dateutil.ParseISO(dw.End)
				if err != nil {
					return nil, fmt.Errorf("year %s %s week %d: %w", dy.Year, tm, w, err)
				}
				if end.Before(start) {
					return nil, fmt.Errorf("year %s %s week %d: end precedes start", dy.Year, tm, w)
				}
				entry := term.WeekEntry{Start: start, End: end}
				if entry.Days() != 7 {
					log.Warn("week entry is not a 7-day span",
						"year", dy.Year, "term", string(tm), "week", w, "days", entry.Days())
				}
				wm[w] = entry
			}
			if err := checkWeekOrdering(dy.Year, tm, wm); err != nil {
				return nil, err
			}
			rec.Terms[tm] = wm
		}
		t.years = append(t.years, rec)
		t.index[rec.Year] = rec
	}
	return t, nil
}

// checkWeekOrdering enforces that weeks within a term are chronologically
// ordered and non-overlapping as their numbers increase.
func checkWeekOrdering(year string, tm term.Term, wm WeekMap) error {
	nums := make([]int, 0, len(wm))
	for w := range wm {
		nums = append(nums, w)
	}
	sort.Ints(nums)
	for i := 1; i < len(nums); i++ {
		prev, cur := wm[nums[i-1]], wm[nums[i]]
		if !cur.Start.After(prev.End) {
			return fmt.Errorf("year %s %s: weeks %d and %d overlap or are out of order",
				year, tm, nums[i-1], nums[i])
		}
	}
	return nil
}
