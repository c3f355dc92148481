// Package suggest produces ranked partial-input completions for the
// search box. It is advisory: over-suggesting is acceptable, failures are
// not, so generation never returns an error — only fewer or more generic
// results.
package suggest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oxterm/termsearch/internal/dateutil"
	"github.com/oxterm/termsearch/internal/term"
)

// Config tunes the generator. De-duplication and capping are a general
// policy applied to the merged candidate list, not tuned per source.
type Config struct {
	// MinInputLength is the floor below which no suggestions are
	// produced.
	MinInputLength int
	// MaxSuggestions caps the returned list.
	MaxSuggestions int
	// ShortInputLength is the threshold at or below which canned example
	// queries are offered.
	ShortInputLength int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		MinInputLength:   2,
		MaxSuggestions:   8,
		ShortInputLength: 3,
	}
}

// examples are canned queries offered for very short input.
var examples = []string{
	"week 5 michaelmas 2024",
	"hilary week 1 2025",
	"tuesday week 2 trinity 2025",
	"25 march 2025",
}

var weekInputRe = regexp.MustCompile(`^w(?:e{1,2}k?)?\s*(\d{0,2})$`)

// Generator builds completions from term names, week patterns, day names,
// and canned examples. The optional year list enriches term completions
// with concrete years.
type Generator struct {
	cfg   Config
	years []string
}

// New creates a Generator. years may be nil; when present, the labels
// are expected in chronological order and the last one is treated as
// the most relevant academic year.
func New(cfg Config, years []string) *Generator {
	if cfg.MinInputLength <= 0 {
		cfg.MinInputLength = DefaultConfig().MinInputLength
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = DefaultConfig().MaxSuggestions
	}
	if cfg.ShortInputLength <= 0 {
		cfg.ShortInputLength = DefaultConfig().ShortInputLength
	}
	return &Generator{cfg: cfg, years: years}
}

// Generate returns an ordered, de-duplicated, capped list of completions
// for the partial input. Input below the length floor yields nothing.
func (g *Generator) Generate(partial string) []string {
	input := strings.Join(strings.Fields(strings.ToLower(partial)), " ")
	if len(input) < g.cfg.MinInputLength {
		return nil
	}

	var candidates []string
	candidates = append(candidates, g.termCandidates(input)...)
	candidates = append(candidates, g.weekCandidates(input)...)
	candidates = append(candidates, g.dayCandidates(input)...)
	if len(input) <= g.cfg.ShortInputLength {
		candidates = append(candidates, examples...)
	}

	return dedupeAndCap(candidates, g.cfg.MaxSuggestions)
}

// termAbbrevs lists the recognised short forms per term, used for prefix
// matching only; the suggestion itself always uses the full name.
var termAbbrevs = map[term.Term][]string{
	term.Michaelmas: {"mich", "mt"},
	term.Hilary:     {"hil", "ht"},
	term.Trinity:    {"trin", "tt"},
}

// termCandidates suggests completions for term-name and abbreviation
// prefixes.
func (g *Generator) termCandidates(input string) []string {
	var out []string
	for _, tm := range term.All() {
		name := string(tm)
		if !hasPrefixAny(input, append([]string{name}, termAbbrevs[tm]...)) {
			continue
		}
		out = append(out, name)
		if year := g.latestYear(); year != "" {
			out = append(out, fmt.Sprintf("%s week 1 %s", name, year))
		} else {
			out = append(out, fmt.Sprintf("%s week 1", name))
		}
	}
	return out
}

// hasPrefixAny reports whether input is a prefix of any of the spellings.
func hasPrefixAny(input string, spellings []string) bool {
	for _, s := range spellings {
		if strings.HasPrefix(s, input) {
			return true
		}
	}
	return false
}

// weekCandidates suggests "week N" patterns when the input looks like the
// beginning of a week token.
func (g *Generator) weekCandidates(input string) []string {
	m := weekInputRe.FindStringSubmatch(input)
	if m == nil {
		return nil
	}
	if m[1] != "" {
		return []string{"week " + m[1]}
	}
	out := make([]string, 0, term.FullTermLastWeek)
	for w := term.FullTermFirstWeek; w <= term.FullTermLastWeek; w++ {
		out = append(out, fmt.Sprintf("week %d", w))
	}
	return out
}

// dayCandidates suggests full day names matching the input as a prefix.
func (g *Generator) dayCandidates(input string) []string {
	var out []string
	for _, name := range dateutil.DayNames() {
		if strings.HasPrefix(name, input) {
			out = append(out, name)
		}
	}
	return out
}

func (g *Generator) latestYear() string {
	if len(g.years) == 0 {
		return ""
	}
	return g.years[len(g.years)-1]
}

// dedupeAndCap removes duplicates preserving first occurrence and trims
// the list to the cap.
func dedupeAndCap(candidates []string, limit int) []string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}
