// Package model defines the journal's data types.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO layout used for record keys.
const DateLayout = "2006-01-02"

// ErrInvalidRecord is returned when a record fails range validation.
var ErrInvalidRecord = errors.New("invalid record")

// Input bounds, matching the entry form.
const (
	MaxWeightKg = 500.0
	MaxCalories = 20000
	MaxProteinG = 400
	MaxFatG     = 400
	MaxCarbsG   = 1000
	MaxSteps    = 200000
)

// Completion is the tri-state "did the workout happen" flag.
type Completion int

const (
	CompletionUnset Completion = iota
	CompletionDone
	CompletionMissed
)

// String returns the symbol stored in the journal.
func (c Completion) String() string {
	switch c {
	case CompletionDone:
		return "✅"
	case CompletionMissed:
		return "❌"
	default:
		return ""
	}
}

// Key returns a stable ASCII name, used by CLI flags and export formats.
func (c Completion) Key() string {
	switch c {
	case CompletionDone:
		return "done"
	case CompletionMissed:
		return "missed"
	default:
		return ""
	}
}

// ParseCompletion accepts the symbol, the ASCII key, or a few common aliases.
func ParseCompletion(s string) (Completion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return CompletionUnset, nil
	case "✅", "done", "yes", "y", "true", "1", "fait", "oui":
		return CompletionDone, nil
	case "❌", "missed", "no", "n", "false", "0", "raté", "non":
		return CompletionMissed, nil
	}
	return CompletionUnset, fmt.Errorf("%w: unknown completion %q", ErrInvalidRecord, s)
}

// MarshalText encodes the completion as its ASCII key.
func (c Completion) MarshalText() ([]byte, error) {
	return []byte(c.Key()), nil
}

// UnmarshalText accepts anything ParseCompletion does.
func (c *Completion) UnmarshalText(b []byte) error {
	v, err := ParseCompletion(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// DailyRecord is one journal row. Date is the unique key.
type DailyRecord struct {
	Date     time.Time  `json:"date" yaml:"date"`
	WeightKg float64    `json:"weight_kg" yaml:"weight_kg"`
	Calories int        `json:"calories" yaml:"calories"`
	ProteinG int        `json:"protein_g" yaml:"protein_g"`
	FatG     int        `json:"fat_g" yaml:"fat_g"`
	CarbsG   int        `json:"carbs_g" yaml:"carbs_g"`
	Workout  string     `json:"workout" yaml:"workout"`
	Done     Completion `json:"done" yaml:"done"`
	Steps    int        `json:"steps" yaml:"steps"`
	Notes    string     `json:"notes" yaml:"notes"`
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses an ISO date into a record key.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// Key returns the ISO date string identifying the record.
func (r DailyRecord) Key() string {
	return r.Date.Format(DateLayout)
}

// HasWeight reports whether a weight was entered for the day.
func (r DailyRecord) HasWeight() bool {
	return r.WeightKg > 0
}

// Normalize truncates the date and trims free-text fields.
func (r DailyRecord) Normalize() DailyRecord {
	r.Date = Day(r.Date)
	r.Workout = strings.TrimSpace(r.Workout)
	r.Notes = strings.TrimSpace(r.Notes)
	return r
}

// Validate checks field ranges.
func (r DailyRecord) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	if r.WeightKg < 0 || r.WeightKg > MaxWeightKg {
		return fmt.Errorf("%w: weight %.1f out of range 0-%.0f", ErrInvalidRecord, r.WeightKg, MaxWeightKg)
	}
	checks := []struct {
		name  string
		value int
		limit int
	}{
		{"calories", r.Calories, MaxCalories},
		{"protein", r.ProteinG, MaxProteinG},
		{"fat", r.FatG, MaxFatG},
		{"carbs", r.CarbsG, MaxCarbsG},
		{"steps", r.Steps, MaxSteps},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > c.limit {
			return fmt.Errorf("%w: %s %d out of range 0-%d", ErrInvalidRecord, c.name, c.value, c.limit)
		}
	}
	if r.Done < CompletionUnset || r.Done > CompletionMissed {
		return fmt.Errorf("%w: completion %d", ErrInvalidRecord, r.Done)
	}
	return nil
}
