package benchmark

import (
	"fmt"
	"testing"
	"time"

	"github.com/oxterm/termsearch/internal/search/engine"
	"github.com/oxterm/termsearch/internal/search/parser"
	"github.com/oxterm/termsearch/internal/search/suggest"
	"github.com/oxterm/termsearch/internal/term/table"
)

// buildTable assembles an in-memory table spanning the given number of
// academic years, starting from 2020-21.
func buildTable(b *testing.B, numYears int) *table.Table {
	b.Helper()
	doc := &table.Document{}
	termStarts := map[string]time.Time{
		"michaelmas": time.Date(2020, time.October, 11, 0, 0, 0, 0, time.UTC),
		"hilary":     time.Date(2021, time.January, 17, 0, 0, 0, 0, time.UTC),
		"trinity":    time.Date(2021, time.April, 25, 0, 0, 0, 0, time.UTC),
	}
	for y := 0; y < numYears; y++ {
		dy := table.DocumentYear{
			Year:  fmt.Sprintf("%d-%02d", 2020+y, (2021+y)%100),
			Terms: make(map[string]map[string]table.DocumentWeek),
		}
		for name, wk1 := range termStarts {
			weeks := make(map[string]table.DocumentWeek, 13)
			for w := 0; w <= 12; w++ {
				start := wk1.AddDate(y, 0, 7*(w-1))
				end := start.AddDate(0, 0, 6)
				weeks[fmt.Sprintf("%d", w)] = table.DocumentWeek{
					Start: start.Format("2006-01-02"),
					End:   end.Format("2006-01-02"),
				}
			}
			dy.Terms[name] = weeks
		}
		doc.Years = append(doc.Years, dy)
	}
	tbl, err := table.Build(doc)
	if err != nil {
		b.Fatal(err)
	}
	return tbl
}

// BenchmarkQueryParse measures parsing latency across the grammar
// cascade: day-term-week, term-week, dates, and unparseable input.
func BenchmarkQueryParse(b *testing.B) {
	queries := []struct {
		name  string
		query string
	}{
		{"term_week", "week 5 michaelmas 2026"},
		{"term_week_abbrev", "mt wk 1 2025-26"},
		{"day_term_week", "tuesday week 2 trinity 2025"},
		{"iso_date", "2025-05-04"},
		{"uk_date", "4 May 2025"},
		{"slash_date", "25/12/2025"},
		{"unparseable", "next tuesday afternoon"},
	}

	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				pq := parser.Parse(q.query)
				_ = pq
			}
		})
	}
}

// BenchmarkEngineSearch measures end-to-end resolution against tables of
// increasing size. Date reverse lookup scans the table, so it should
// scale with the year count while term-week lookup stays flat.
func BenchmarkEngineSearch(b *testing.B) {
	for _, numYears := range []int{1, 5, 20} {
		tbl := buildTable(b, numYears)
		eng := engine.New(tbl)

		b.Run(fmt.Sprintf("term_week_years_%d", numYears), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				r := eng.Search("week 5 michaelmas 2020-21")
				_ = r
			}
		})
		b.Run(fmt.Sprintf("date_years_%d", numYears), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				r := eng.Search("2020-11-09")
				_ = r
			}
		})
	}
}

// BenchmarkEngineSearchParallel measures concurrent query throughput
// over a shared table.
func BenchmarkEngineSearchParallel(b *testing.B) {
	tbl := buildTable(b, 5)
	eng := engine.New(tbl)
	queries := []string{
		"week 5 michaelmas 2020-21",
		"tuesday week 2 trinity 2021",
		"2021-01-19",
		"hilary week 8 2021",
	}

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			r := eng.Search(queries[i%len(queries)])
			_ = r
			i++
		}
	})
}

// BenchmarkSuggest measures suggestion generation for common prefixes.
func BenchmarkSuggest(b *testing.B) {
	tbl := buildTable(b, 5)
	gen := suggest.New(suggest.DefaultConfig(), tbl.Years())

	for _, input := range []string{"mi", "week", "tu", "hil"} {
		b.Run(input, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				s := gen.Generate(input)
				_ = s
			}
		})
	}
}
