// Command termctl answers term-date queries from the command line,
// without running the HTTP service.
//
// Queries come from the arguments, or from stdin one per line when no
// arguments are given:
//
//	termctl -table configs/term-dates.json "week 5 michaelmas 2026"
//	echo "4 May 2025" | termctl -table configs/term-dates.json
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/oxterm/termsearch/internal/search/engine"
	"github.com/oxterm/termsearch/internal/term/table"
	"github.com/oxterm/termsearch/pkg/logger"
)

func main() {
	tablePath := flag.String("table", "configs/term-dates.json", "path to the term table JSON file")
	asJSON := flag.Bool("json", false, "print full results as JSON instead of summaries")
	flag.Parse()

	logger.Setup("warn", "text")

	loader := table.NewLoader(table.FileSource{Path: *tablePath})
	tbl, err := loader.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "termctl: %v\n", err)
		os.Exit(1)
	}
	eng := engine.New(tbl)

	queries := flag.Args()
	if len(queries) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				queries = append(queries, line)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "termctl: reading stdin: %v\n", err)
			os.Exit(1)
		}
	}
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "termctl: no queries given")
		os.Exit(2)
	}

	results := eng.SearchMultiple(queries)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(os.Stderr, "termctl: %v\n", err)
			os.Exit(1)
		}
		exitForResults(results)
	}

	for i, r := range results {
		if i > 0 {
			fmt.Println()
		}
		if len(results) > 1 {
			fmt.Printf("> %s\n", r.Query)
		}
		fmt.Println(engine.Summarize(r))
	}
	exitForResults(results)
}

// exitForResults exits nonzero when any query failed, so scripts can
// detect unanswerable input.
func exitForResults(results []engine.Result) {
	for _, r := range results {
		if r.Kind == engine.KindError {
			os.Exit(1)
		}
	}
	os.Exit(0)
}
