// Package transfer exports and imports the journal as CSV, JSON or YAML.
package transfer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/store"
)

// Format names a file format.
type Format string

// Supported formats.
const (
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ErrUnknownFormat is returned for an unsupported format name or extension.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat accepts a format name, case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Export writes records in format f. header titles the CSV columns and is
// ignored by the other formats.
func Export(w io.Writer, f Format, records []model.DailyRecord, header []string) error {
	switch f {
	case CSV:
		return exportCSV(w, records, header)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []model.DailyRecord{}
		}
		return enc.Encode(records)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Import reads records in format f. Rows are validated and merged by date,
// so a later row for the same date wins.
func Import(r io.Reader, f Format) ([]model.DailyRecord, error) {
	var raw []model.DailyRecord
	switch f {
	case CSV:
		var err error
		if raw, err = importCSV(r); err != nil {
			return nil, err
		}
	case JSON:
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}

	var out []model.DailyRecord
	for i, rec := range raw {
		rec = rec.Normalize()
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		out = store.Merge(out, rec)
	}
	return out, nil
}

func exportCSV(w io.Writer, records []model.DailyRecord, header []string) error {
	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	for _, r := range records {
		weight := ""
		if r.HasWeight() {
			weight = strconv.FormatFloat(r.WeightKg, 'f', -1, 64)
		}
		row := []string{
			r.Date.Format(model.DateLayout),
			weight,
			strconv.Itoa(r.Calories),
			strconv.Itoa(r.ProteinG),
			strconv.Itoa(r.FatG),
			strconv.Itoa(r.CarbsG),
			r.Workout,
			r.Done.String(),
			strconv.Itoa(r.Steps),
			r.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvDateLayouts are tried in order; the second matches sheet exports.
var csvDateLayouts = []string{model.DateLayout, "02.01.2006"}

func importCSV(r io.Reader) ([]model.DailyRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	var out []model.DailyRecord
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		d, ok := parseCSVDate(row[0])
		if !ok {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: %w: bad date %q", i+1, model.ErrInvalidRecord, row[0])
		}
		rec, err := decodeCSVRow(d, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseCSVDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func decodeCSVRow(d time.Time, row []string) (model.DailyRecord, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	num := func(i int) (float64, error) {
		s := strings.ReplaceAll(cell(i), ",", ".")
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: column %d: %q is not a number", model.ErrInvalidRecord, i+1, cell(i))
		}
		return f, nil
	}

	rec := model.DailyRecord{Date: d, Workout: cell(6), Notes: cell(9)}
	var err error
	if rec.WeightKg, err = num(1); err != nil {
		return rec, err
	}
	ints := []struct {
		col int
		dst *int
	}{
		{2, &rec.Calories}, {3, &rec.ProteinG}, {4, &rec.FatG}, {5, &rec.CarbsG}, {8, &rec.Steps},
	}
	for _, c := range ints {
		v, err := num(c.col)
		if err != nil {
			return rec, err
		}
		*c.dst = int(v)
	}
	if rec.Done, err = model.ParseCompletion(cell(7)); err != nil {
		return rec, err
	}
	return rec, nil
}
