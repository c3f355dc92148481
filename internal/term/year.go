package term

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// academicYearRe matches an explicit academic-year label such as "2024-25".
var academicYearRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// YearLabel formats the academic year starting in startYear, e.g.
// YearLabel(2024) == "2024-25". The suffix is (startYear+1) mod 100 and is
// never supplied independently.
func YearLabel(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// ParseYearLabel validates a "YYYY-YY" label and returns its start year.
// The two-digit suffix must equal the last two digits of startYear+1.
func ParseYearLabel(label string) (int, bool) {
	m := academicYearRe.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	start, _ := strconv.Atoi(m[1])
	suffix, _ := strconv.Atoi(m[2])
	if suffix != (start+1)%100 {
		return 0, false
	}
	return start, true
}

// YearForTerm derives the academic-year label from a bare calendar year and
// the term it was given with. Michaelmas anchors the start year; Hilary and
// Trinity fall in the second calendar year of the cycle, so a bare year
// anchors the end year.
func YearForTerm(t Term, bareYear int) string {
	if t == Michaelmas {
		return YearLabel(bareYear)
	}
	return YearLabel(bareYear - 1)
}

// YearForDate infers the academic year containing date by calendar
// convention: July-December belong to the academic year starting that
// calendar year, January-June to the one started the previous year.
func YearForDate(date time.Time) string {
	if date.Month() >= time.July {
		return YearLabel(date.Year())
	}
	return YearLabel(date.Year() - 1)
}
