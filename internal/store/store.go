// Package store persists journal records keyed by date.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/theirongolddev/scalelog/internal/model"
)

// ErrNotFound is returned when no record exists for a date.
var ErrNotFound = errors.New("store: record not found")

// Store is the persistence port shared by every backend.
// List returns records sorted by date ascending.
type Store interface {
	List(ctx context.Context) ([]model.DailyRecord, error)
	Get(ctx context.Context, day time.Time) (model.DailyRecord, error)
	Upsert(ctx context.Context, r model.DailyRecord) error
	Delete(ctx context.Context, day time.Time) error
	Close() error
}

// Merge returns a copy of records with r inserted or, when a row for the same
// date already exists, replaced in place. The result is sorted by date.
func Merge(records []model.DailyRecord, r model.DailyRecord) []model.DailyRecord {
	r = r.Normalize()
	out := make([]model.DailyRecord, 0, len(records)+1)
	replaced := false
	for _, existing := range records {
		if existing.Date.Equal(r.Date) {
			if !replaced {
				out = append(out, r)
				replaced = true
			}
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, r)
	}
	SortByDate(out)
	return out
}

// SortByDate orders records oldest first.
func SortByDate(records []model.DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

// prepare normalizes and validates a record before it is written.
func prepare(r model.DailyRecord) (model.DailyRecord, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a local or SQL backend.
type Options struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string
}

// Open returns the backend named in opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite, "":
		return OpenSQLite(opts.SQLitePath)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.PostgresDSN)
	}
	return nil, fmt.Errorf("store: unknown backend %q", opts.Backend)
}
