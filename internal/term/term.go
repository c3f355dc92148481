// Package term defines the domain types for Oxford's academic calendar:
// the three terms (Michaelmas, Hilary, Trinity), academic-year labels of
// the form "2024-25", and week entries with extended numbering 0-12.
package term

import "strings"

// Term identifies one of the three Oxford terms.
type Term string

const (
	Michaelmas Term = "michaelmas"
	Hilary     Term = "hilary"
	Trinity    Term = "trinity"
)

// MinWeek and MaxWeek bound the extended week numbering. Weeks 1-8 are
// Full Term; week 0 and weeks 9-12 are term-adjacent extended weeks.
const (
	MinWeek = 0
	MaxWeek = 12

	FullTermFirstWeek = 1
	FullTermLastWeek  = 8
)

// All returns the three terms in academic-year order.
func All() []Term {
	return []Term{Michaelmas, Hilary, Trinity}
}

// abbreviations maps every recognised term spelling to its Term.
var abbreviations = map[string]Term{
	"michaelmas": Michaelmas,
	"mich":       Michaelmas,
	"mt":         Michaelmas,
	"hilary":     Hilary,
	"hil":        Hilary,
	"ht":         Hilary,
	"trinity":    Trinity,
	"trin":       Trinity,
	"tt":         Trinity,
}

// Parse resolves a term name or abbreviation (michaelmas/mich/mt,
// hilary/hil/ht, trinity/trin/tt) case-insensitively.
func Parse(s string) (Term, bool) {
	t, ok := abbreviations[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// Names returns the full lowercase term names.
func Names() []string {
	return []string{string(Michaelmas), string(Hilary), string(Trinity)}
}

// Title returns the capitalised display name, e.g. "Michaelmas".
func (t Term) Title() string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Valid reports whether t is one of the three known terms.
func (t Term) Valid() bool {
	switch t {
	case Michaelmas, Hilary, Trinity:
		return true
	}
	return false
}

// IsFullTermWeek reports whether week w falls inside Full Term (weeks 1-8).
func IsFullTermWeek(w int) bool {
	return w >= FullTermFirstWeek && w <= FullTermLastWeek
}

// ValidWeek reports whether w is inside the extended numbering [0,12].
func ValidWeek(w int) bool {
	return w >= MinWeek && w <= MaxWeek
}
