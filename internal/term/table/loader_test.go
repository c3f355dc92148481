package table

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/oxterm/termsearch/pkg/errors"
)

// countingSource counts fetches and can be switched between failing and
// succeeding.
type countingSource struct {
	fetches atomic.Int64
	fail    atomic.Bool
}

func (s *countingSource) Fetch(_ context.Context) (*Document, error) {
	s.fetches.Add(1)
	if s.fail.Load() {
		return nil, errors.New("source unavailable")
	}
	return &Document{
		Years: []DocumentYear{
			{
				Year: "2024-25",
				Terms: map[string]map[string]DocumentWeek{
					"michaelmas": {
						"1": {Start: "2024-10-13", End: "2024-10-19"},
					},
				},
			},
		},
	}, nil
}

func TestLoaderMemoizes(t *testing.T) {
	src := &countingSource{}
	loader := NewLoader(src)

	first, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if first != second {
		t.Error("repeated loads returned different table instances")
	}
	if n := src.fetches.Load(); n != 1 {
		t.Errorf("source fetched %d times, want 1", n)
	}
}

func TestLoaderRetriesAfterFailure(t *testing.T) {
	src := &countingSource{}
	src.fail.Store(true)
	loader := NewLoader(src)

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("Load succeeded against a failing source")
	} else if !errors.Is(err, pkgerrors.ErrTableLoad) {
		t.Errorf("error = %v, want ErrTableLoad", err)
	}
	if loader.Loaded() {
		t.Error("loader reports loaded after failure")
	}
	if _, err := loader.Table(); !errors.Is(err, pkgerrors.ErrTableNotLoaded) {
		t.Errorf("Table() error = %v, want ErrTableNotLoaded", err)
	}

	// The failure is not cached; the next call retries the source.
	src.fail.Store(false)
	tbl, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load after recovery: %v", err)
	}
	if tbl.NumYears() != 1 {
		t.Errorf("NumYears = %d, want 1", tbl.NumYears())
	}
	if !loader.Loaded() {
		t.Error("loader not loaded after success")
	}
}

func TestLoaderConcurrentLoadsShareOneFetch(t *testing.T) {
	src := &countingSource{}
	loader := NewLoader(src)

	const goroutines = 16
	tables := make([]*Table, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := loader.Load(context.Background())
			if err != nil {
				t.Errorf("Load: %v", err)
				return
			}
			tables[i] = tbl
		}(i)
	}
	wg.Wait()

	if n := src.fetches.Load(); n != 1 {
		t.Errorf("source fetched %d times, want 1", n)
	}
	for i := 1; i < goroutines; i++ {
		if tables[i] != tables[0] {
			t.Fatal("concurrent loads observed different table instances")
		}
	}
}
