package dateutil

import (
	"testing"
	"time"
)

func TestParseISO(t *testing.T) {
	d, err := ParseISO("2025-05-04")
	if err != nil {
		t.Fatalf("ParseISO: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.May || d.Day() != 4 {
		t.Errorf("got %v", d)
	}
	if d.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", d.Location())
	}
	if got := FormatISO(d); got != "2025-05-04" {
		t.Errorf("FormatISO = %q", got)
	}

	if _, err := ParseISO("04/05/2025"); err == nil {
		t.Error("ParseISO accepted slash format")
	}
	if _, err := ParseISO("2025-02-30"); err == nil {
		t.Error("ParseISO accepted impossible date")
	}
}

func TestMakeDate(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
		ok    bool
	}{
		{2025, time.May, 4, true},
		{2024, time.February, 29, true},
		{2025, time.February, 29, false},
		{2025, time.February, 30, false},
		{2025, time.April, 31, false},
		{2025, time.December, 0, false},
	}
	for _, tt := range tests {
		d, ok := MakeDate(tt.year, tt.month, tt.day)
		if ok != tt.ok {
			t.Errorf("MakeDate(%d, %s, %d) ok = %v, want %v", tt.year, tt.month, tt.day, ok, tt.ok)
			continue
		}
		if ok && (d.Year() != tt.year || d.Month() != tt.month || d.Day() != tt.day) {
			t.Errorf("MakeDate(%d, %s, %d) = %v", tt.year, tt.month, tt.day, d)
		}
	}
}

func TestAddDaysAndInRange(t *testing.T) {
	start, _ := ParseISO("2025-05-04")
	end := AddDays(start, 6)
	if got := FormatISO(end); got != "2025-05-10" {
		t.Errorf("AddDays(start, 6) = %s", got)
	}

	if !InRange(start, start, end) {
		t.Error("InRange(start) = false")
	}
	if !InRange(end, start, end) {
		t.Error("InRange(end) = false")
	}
	evening := end.Add(22 * time.Hour)
	if !InRange(evening, start, end) {
		t.Error("InRange(end evening) = false")
	}
	if InRange(AddDays(start, -1), start, end) {
		t.Error("InRange(day before) = true")
	}
	if InRange(AddDays(end, 1), start, end) {
		t.Error("InRange(day after) = true")
	}
}

func TestDatesBetween(t *testing.T) {
	start, _ := ParseISO("2025-05-04")
	end := AddDays(start, 6)

	dates := DatesBetween(start, end)
	if len(dates) != 7 {
		t.Fatalf("len = %d, want 7", len(dates))
	}
	if dates[0] != "2025-05-04" || dates[6] != "2025-05-10" {
		t.Errorf("endpoints = %s..%s", dates[0], dates[6])
	}

	if got := DatesBetween(start, start); len(got) != 1 {
		t.Errorf("single-day range len = %d, want 1", len(got))
	}
	if got := DatesBetween(end, start); got != nil {
		t.Errorf("inverted range = %v, want nil", got)
	}
}

func TestFormatLong(t *testing.T) {
	d, _ := ParseISO("2025-05-04")
	if got := FormatLong(d); got != "Sunday 4 May 2025" {
		t.Errorf("FormatLong = %q", got)
	}
}

func TestParseDayName(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
		ok   bool
	}{
		{"sunday", time.Sunday, true},
		{"Mon", time.Monday, true},
		{"tues", time.Tuesday, true},
		{"weds", time.Wednesday, true},
		{"THURS", time.Thursday, true},
		{" fri ", time.Friday, true},
		{"sat", time.Saturday, true},
		{"someday", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDayName(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseDayName(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	names := DayNames()
	if len(names) != 7 || names[0] != "sunday" || names[6] != "saturday" {
		t.Errorf("DayNames() = %v", names)
	}
}

func TestParseMonthName(t *testing.T) {
	tests := []struct {
		in   string
		want time.Month
		ok   bool
	}{
		{"may", time.May, true},
		{"Jan", time.January, true},
		{"sept", time.September, true},
		{"SEP", time.September, true},
		{"december", time.December, true},
		{"janu", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMonthName(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseMonthName(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
