package term

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Term
		ok   bool
	}{
		{"michaelmas", Michaelmas, true},
		{"MICH", Michaelmas, true},
		{"mt", Michaelmas, true},
		{"hilary", Hilary, true},
		{"Hil", Hilary, true},
		{"HT", Hilary, true},
		{"trinity", Trinity, true},
		{"trin", Trinity, true},
		{"tt", Trinity, true},
		{" trinity ", Trinity, true},
		{"easter", "", false},
		{"", "", false},
		{"m", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTitle(t *testing.T) {
	if got := Michaelmas.Title(); got != "Michaelmas" {
		t.Errorf("Title() = %q", got)
	}
	if got := Term("").Title(); got != "" {
		t.Errorf("empty Title() = %q", got)
	}
}

func TestWeekPredicates(t *testing.T) {
	for w := MinWeek; w <= MaxWeek; w++ {
		if !ValidWeek(w) {
			t.Errorf("ValidWeek(%d) = false", w)
		}
	}
	for _, w := range []int{-1, 13} {
		if ValidWeek(w) {
			t.Errorf("ValidWeek(%d) = true", w)
		}
	}
	for _, w := range []int{0, 9, 12} {
		if IsFullTermWeek(w) {
			t.Errorf("IsFullTermWeek(%d) = true", w)
		}
	}
	for _, w := range []int{1, 4, 8} {
		if !IsFullTermWeek(w) {
			t.Errorf("IsFullTermWeek(%d) = false", w)
		}
	}
}

func TestYearLabel(t *testing.T) {
	tests := []struct {
		start int
		want  string
	}{
		{2024, "2024-25"},
		{1999, "1999-00"},
		{2099, "2099-00"},
	}
	for _, tt := range tests {
		if got := YearLabel(tt.start); got != tt.want {
			t.Errorf("YearLabel(%d) = %q, want %q", tt.start, got, tt.want)
		}
	}
}

func TestParseYearLabel(t *testing.T) {
	tests := []struct {
		label string
		start int
		ok    bool
	}{
		{"2024-25", 2024, true},
		{"1999-00", 1999, true},
		{"2024-26", 0, false},
		{"2024-24", 0, false},
		{"2024", 0, false},
		{"24-25", 0, false},
		{"2024-025", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		start, ok := ParseYearLabel(tt.label)
		if ok != tt.ok || start != tt.start {
			t.Errorf("ParseYearLabel(%q) = (%d, %v), want (%d, %v)",
				tt.label, start, ok, tt.start, tt.ok)
		}
	}
}

func TestYearForTerm(t *testing.T) {
	if got := YearForTerm(Michaelmas, 2026); got != "2026-27" {
		t.Errorf("YearForTerm(michaelmas, 2026) = %q", got)
	}
	if got := YearForTerm(Hilary, 2025); got != "2024-25" {
		t.Errorf("YearForTerm(hilary, 2025) = %q", got)
	}
	if got := YearForTerm(Trinity, 2025); got != "2024-25" {
		t.Errorf("YearForTerm(trinity, 2025) = %q", got)
	}
}

func TestYearForDate(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-07-01", "2024-25"},
		{"2024-12-31", "2024-25"},
		{"2025-01-01", "2024-25"},
		{"2025-06-30", "2024-25"},
		{"2025-07-01", "2025-26"},
	}
	for _, tt := range tests {
		d, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatal(err)
		}
		if got := YearForDate(d); got != tt.want {
			t.Errorf("YearForDate(%s) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestWeekEntryContains(t *testing.T) {
	start := time.Date(2025, time.May, 4, 0, 0, 0, 0, time.UTC)
	entry := WeekEntry{Start: start, End: start.AddDate(0, 0, 6)}

	if !entry.Contains(start) {
		t.Error("Contains(start) = false")
	}
	if !entry.Contains(start.AddDate(0, 0, 6)) {
		t.Error("Contains(end) = false")
	}
	// End date is inclusive to end-of-day.
	if !entry.Contains(time.Date(2025, time.May, 10, 23, 0, 0, 0, time.UTC)) {
		t.Error("Contains(end evening) = false")
	}
	if entry.Contains(start.AddDate(0, 0, -1)) {
		t.Error("Contains(day before) = true")
	}
	if entry.Contains(start.AddDate(0, 0, 7)) {
		t.Error("Contains(day after) = true")
	}

	if got := entry.Days(); got != 7 {
		t.Errorf("Days() = %d, want 7", got)
	}
}
