package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/scalelog/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLite stores the journal in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the journal database at the given path.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if dbPath == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// List implements Store.
func (s *SQLite) List(ctx context.Context) ([]model.DailyRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM records ORDER BY day ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []model.DailyRecord
	for rows.Next() {
		r, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, day time.Time) (model.DailyRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE day = ?",
		model.Day(day).Format(model.DateLayout))
	r, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DailyRecord{}, ErrNotFound
	}
	return r, err
}

// Upsert implements Store.
func (s *SQLite) Upsert(ctx context.Context, r model.DailyRecord) error {
	r, err := prepare(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO records
		(day, weight_kg, calories, protein_g, fat_g, carbs_g, workout, done, steps, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			weight_kg = excluded.weight_kg,
			calories = excluded.calories,
			protein_g = excluded.protein_g,
			fat_g = excluded.fat_g,
			carbs_g = excluded.carbs_g,
			workout = excluded.workout,
			done = excluded.done,
			steps = excluded.steps,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		r.Key(), r.WeightKg, r.Calories, r.ProteinG, r.FatG, r.CarbsG,
		r.Workout, int(r.Done), r.Steps, r.Notes, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", r.Key(), err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, day time.Time) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE day = ?", model.Day(day).Format(model.DateLayout))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (model.DailyRecord, error) {
	var (
		r    model.DailyRecord
		day  string
		done int
	)
	err := row.Scan(&day, &r.WeightKg, &r.Calories, &r.ProteinG, &r.FatG, &r.CarbsG,
		&r.Workout, &done, &r.Steps, &r.Notes)
	if err != nil {
		return r, err
	}
	r.Date, err = model.ParseDay(day)
	if err != nil {
		return r, err
	}
	r.Done = model.Completion(done)
	return r, nil
}
