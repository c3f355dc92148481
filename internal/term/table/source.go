package table

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/oxterm/termsearch/pkg/postgres"
	"github.com/oxterm/termsearch/pkg/resilience"
)

// Source fetches and parses the term-table resource. The loader does not
// care whether the document comes from a file, an HTTP endpoint, or a
// database, only that it yields the nested structure or fails.
type Source interface {
	Fetch(ctx context.Context) (*Document, error)
}

// FileSource reads the term table from a local JSON file.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(_ context.Context) (*Document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading term table file %s: %w", s.Path, err)
	}
	return ParseDocument(data)
}

// HTTPSource fetches the term table JSON from a URL, retrying transient
// failures with exponential backoff.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context) (*Document, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	var body []byte
	err := resilience.Retry(ctx, "term-table-fetch", resilience.RetryConfig{}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("term table fetch returned status %d", resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching term table from %s: %w", s.URL, err)
	}
	return ParseDocument(body)
}

// PostgresSource assembles the term table from rows of the term_weeks
// relation: (academic_year, term, week, start_date, end_date).
type PostgresSource struct {
	Client *postgres.Client
}

func (s PostgresSource) Fetch(ctx context.Context) (*Document, error) {
	const query = `
		SELECT academic_year, term, week, start_date, end_date
		FROM term_weeks
		ORDER BY academic_year, term, week`

	rows, err := s.Client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying term_weeks: %w", err)
	}
	defer rows.Close()

	byYear := make(map[string]*DocumentYear)
	var order []string
	for rows.Next() {
		var (
			year, termName string
			week           int
			start, end     time.Time
		)
		if err := rows.Scan(&year, &termName, &week, &start, &end); err != nil {
			return nil, fmt.Errorf("scanning term_weeks row: %w", err)
		}
		dy, ok := byYear[year]
		if !ok {
			dy = &DocumentYear{
				Year:  year,
				Terms: make(map[string]map[string]DocumentWeek),
			}
			byYear[year] = dy
			order = append(order, year)
		}
		weeks, ok := dy.Terms[termName]
		if !ok {
			weeks = make(map[string]DocumentWeek)
			dy.Terms[termName] = weeks
		}
		weeks[fmt.Sprintf("%d", week)] = DocumentWeek{
			Start: start.Format("2006-01-02"),
			End:   end.Format("2006-01-02"),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating term_weeks rows: %w", err)
	}

	doc := &Document{Years: make([]DocumentYear, 0, len(order))}
	for _, year := range order {
		doc.Years = append(doc.Years, *byYear[year])
	}
	return doc, nil
}
