package parser

import (
	"testing"

	"github.com/oxterm/termsearch/internal/term"
)

func TestParseTermWeek(t *testing.T) {
	tests := []struct {
		name  string
		query string
		term  term.Term
		week  int
		year  string
	}{
		{"full form", "Week 5 Michaelmas 2026", term.Michaelmas, 5, "2026-27"},
		{"term first", "hilary week 2 2025", term.Hilary, 2, "2024-25"},
		{"abbreviations", "mt wk 1 2025-26", term.Michaelmas, 1, "2025-26"},
		{"two letter term", "ht w3 2026", term.Hilary, 3, "2025-26"},
		{"week zero", "w0 trinity 2025", term.Trinity, 0, "2024-25"},
		{"week suffix form", "5 week hilary 2026", term.Hilary, 5, "2025-26"},
		{"explicit range label", "week 8 trinity 2024-25", term.Trinity, 8, "2024-25"},
		{"trailing week twelve", "week 12 michaelmas 2024", term.Michaelmas, 12, "2024-25"},
		{"bare year anchors michaelmas to start", "week 1 michaelmas 2024", term.Michaelmas, 1, "2024-25"},
		{"bare year anchors trinity to end", "week 1 trinity 2025", term.Trinity, 1, "2024-25"},
		{"bad range label falls back to bare year", "week 5 michaelmas 2026-28", term.Michaelmas, 5, "2026-27"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := Parse(tt.query)
			if pq.Type != TypeTermWeek {
				t.Fatalf("Parse(%q).Type = %s (error %q), want %s", tt.query, pq.Type, pq.Error, TypeTermWeek)
			}
			if pq.Term != tt.term || pq.Week != tt.week || pq.Year != tt.year {
				t.Errorf("Parse(%q) = {%s %d %s}, want {%s %d %s}",
					tt.query, pq.Term, pq.Week, pq.Year, tt.term, tt.week, tt.year)
			}
		})
	}
}

func TestParseDayTermWeek(t *testing.T) {
	tests := []struct {
		name  string
		query string
		day   int
		term  term.Term
		week  int
		year  string
	}{
		{"day leading", "Tuesday Week 2 Trinity 2025", 2, term.Trinity, 2, "2024-25"},
		{"day trailing", "week 0 hilary 2026 monday", 1, term.Hilary, 0, "2025-26"},
		{"sunday is zero", "sunday week 1 michaelmas 2024", 0, term.Michaelmas, 1, "2024-25"},
		{"saturday is six", "sat wk 8 trinity 2025", 6, term.Trinity, 8, "2024-25"},
		{"abbreviated day", "thurs week 4 mt 2026", 4, term.Michaelmas, 4, "2026-27"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := Parse(tt.query)
			if pq.Type != TypeDayTermWeek {
				t.Fatalf("Parse(%q).Type = %s (error %q), want %s", tt.query, pq.Type, pq.Error, TypeDayTermWeek)
			}
			if pq.DayOfWeek != tt.day {
				t.Errorf("Parse(%q).DayOfWeek = %d, want %d", tt.query, pq.DayOfWeek, tt.day)
			}
			if pq.Term != tt.term || pq.Week != tt.week || pq.Year != tt.year {
				t.Errorf("Parse(%q) = {%s %d %s}, want {%s %d %s}",
					tt.query, pq.Term, pq.Week, pq.Year, tt.term, tt.week, tt.year)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		query string
		iso   string
	}{
		{"iso", "2025-05-04", "2025-05-04"},
		{"iso single digits", "2025-5-4", "2025-05-04"},
		{"uk word order", "4 May 2025", "2025-05-04"},
		{"ordinal suffix", "4th may 2025", "2025-05-04"},
		{"us word order", "May 4, 2025", "2025-05-04"},
		{"us without comma", "May 4 2025", "2025-05-04"},
		{"four letter month", "Sept 1 2025", "2025-09-01"},
		{"uk slashes", "25/12/2025", "2025-12-25"},
		{"leap day", "29 Feb 2024", "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := Parse(tt.query)
			if pq.Type != TypeDate {
				t.Fatalf("Parse(%q).Type = %s (error %q), want %s", tt.query, pq.Type, pq.Error, TypeDate)
			}
			if pq.ISODate != tt.iso {
				t.Errorf("Parse(%q).ISODate = %s, want %s", tt.query, pq.ISODate, tt.iso)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"empty", "", ErrEmptyQuery},
		{"whitespace only", "   \t ", ErrEmptyQuery},
		{"gibberish", "next tuesday afternoon", ErrUnparseable},
		{"week without term", "week 5 2026", ErrUnparseable},
		{"term without week", "michaelmas 2026", ErrUnparseable},
		{"term week without year", "trinity week 8", ErrUnparseable},
		{"week thirteen", "Week 13 Michaelmas 2026", ErrWeekRange},
		{"week range through day wrapper", "friday week 13 trinity 2025", ErrWeekRange},
		{"impossible february date", "2025-02-30", ErrBadDate},
		{"impossible slash date", "31/02/2025", ErrBadDate},
		{"month out of range", "2025-13-01", ErrUnparseable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := Parse(tt.query)
			if pq.Type != TypeInvalid {
				t.Fatalf("Parse(%q).Type = %s, want %s", tt.query, pq.Type, TypeInvalid)
			}
			if pq.Error != tt.wantErr {
				t.Errorf("Parse(%q).Error = %q, want %q", tt.query, pq.Error, tt.wantErr)
			}
		})
	}
}

func TestParseNormalization(t *testing.T) {
	base := Parse("week 5 michaelmas 2026")
	variants := []string{
		"WEEK 5 MICHAELMAS 2026",
		"  week   5  michaelmas   2026  ",
		"Week 5 Michaelmas 2026",
	}
	for _, v := range variants {
		got := Parse(v)
		if got != base {
			t.Errorf("Parse(%q) = %+v, want %+v", v, got, base)
		}
	}
}

// The week token must be consumed before year extraction so its digits
// are never misread as a year.
func TestParseWeekDigitsNotMistakenForYear(t *testing.T) {
	pq := Parse("michaelmas 2026 week 5")
	if pq.Type != TypeTermWeek {
		t.Fatalf("Type = %s (error %q), want %s", pq.Type, pq.Error, TypeTermWeek)
	}
	if pq.Week != 5 || pq.Year != "2026-27" {
		t.Errorf("got week %d year %s, want week 5 year 2026-27", pq.Week, pq.Year)
	}
}
