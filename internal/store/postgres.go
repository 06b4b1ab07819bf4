package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theirongolddev/scalelog/internal/model"
)

// Postgres stores the journal in a PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn, pings it and creates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("store: empty postgres dsn")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1
	poolCfg.MaxConnIdleTime = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := pool.Exec(connectCtx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// List implements Store.
func (p *Postgres) List(ctx context.Context) ([]model.DailyRecord, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+recordColumns+" FROM records ORDER BY day ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.DailyRecord
	for rows.Next() {
		r, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, day time.Time) (model.DailyRecord, error) {
	row := p.pool.QueryRow(ctx, "SELECT "+recordColumns+" FROM records WHERE day = $1", model.Day(day))
	r, err := scanPostgresRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DailyRecord{}, ErrNotFound
	}
	return r, err
}

// Upsert implements Store.
func (p *Postgres) Upsert(ctx context.Context, r model.DailyRecord) error {
	r, err := prepare(r)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `INSERT INTO records
		(day, weight_kg, calories, protein_g, fat_g, carbs_g, workout, done, steps, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (day) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			calories = EXCLUDED.calories,
			protein_g = EXCLUDED.protein_g,
			fat_g = EXCLUDED.fat_g,
			carbs_g = EXCLUDED.carbs_g,
			workout = EXCLUDED.workout,
			done = EXCLUDED.done,
			steps = EXCLUDED.steps,
			notes = EXCLUDED.notes,
			updated_at = now()`,
		r.Date, r.WeightKg, r.Calories, r.ProteinG, r.FatG, r.CarbsG,
		r.Workout, int16(r.Done), r.Steps, r.Notes,
	)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", r.Key(), err)
	}
	return nil
}

// Delete implements Store.
func (p *Postgres) Delete(ctx context.Context, day time.Time) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM records WHERE day = $1", model.Day(day))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPostgresRecord(row pgx.Row) (model.DailyRecord, error) {
	var (
		r    model.DailyRecord
		done int16
	)
	err := row.Scan(&r.Date, &r.WeightKg, &r.Calories, &r.ProteinG, &r.FatG, &r.CarbsG,
		&r.Workout, &done, &r.Steps, &r.Notes)
	if err != nil {
		return r, err
	}
	r.Date = model.Day(r.Date)
	r.Done = model.Completion(done)
	return r, nil
}
