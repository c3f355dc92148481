package table

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oxterm/termsearch/pkg/errors"
	"github.com/oxterm/termsearch/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

// fetchTimeout bounds a single source fetch so a hung HTTP endpoint or
// database cannot stall startup indefinitely.
const fetchTimeout = 30 * time.Second

// Loader performs the one-time fetch-and-build of the term table. Loads
// are idempotent and memoized: concurrent and repeated calls during or
// after the first successful load all observe the same Table instance
// without re-fetching. A failed load leaves the table unloaded, so a later
// call retries the source.
type Loader struct {
	source Source
	group  singleflight.Group
	table  atomic.Pointer[Table]
	logger *slog.Logger
}

// NewLoader creates a Loader over the given source.
func NewLoader(source Source) *Loader {
	return &Loader{
		source: source,
		logger: slog.Default().With("component", "table-loader"),
	}
}

// Load returns the cached table, fetching and building it on first use.
// Concurrent callers are collapsed onto a single fetch; every waiter sees
// the same result or the same failure.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	if t := l.table.Load(); t != nil {
		return t, nil
	}

	v, err, _ := l.group.Do("load", func() (interface{}, error) {
		if t := l.table.Load(); t != nil {
			return t, nil
		}
		var doc *Document
		err := resilience.WithTimeout(ctx, fetchTimeout, "term-table-fetch", func(ctx context.Context) error {
			var fetchErr error
			doc, fetchErr = l.source.Fetch(ctx)
			return fetchErr
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrTableLoad, err)
		}
		t, err := Build(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrTableLoad, err)
		}
		l.table.Store(t)
		l.logger.Info("term table loaded", "years", t.NumYears())
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Table returns the loaded table, or ErrTableNotLoaded when Load has not
// yet succeeded. Querying before loading is a caller bug, not a user
// input problem, so this fails loudly instead of returning empty data.
func (l *Loader) Table() (*Table, error) {
	if t := l.table.Load(); t != nil {
		return t, nil
	}
	return nil, errors.ErrTableNotLoaded
}

// Loaded reports whether the table is available.
func (l *Loader) Loaded() bool {
	return l.table.Load() != nil
}
