package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/store"
)

// SheetDateLayout is how dates are written in column A.
const SheetDateLayout = "02.01.2006"

// numColumns is the width of the fixed header row (A through J).
const numColumns = 10

// Store keeps the journal in one tab of a spreadsheet, one row per day below
// a fixed header row. Rows are located by the date in column A.
type Store struct {
	client *Client
	sheet  string
	header []string
}

var _ store.Store = (*Store)(nil)

// NewStore wraps client. header must have exactly ten titles.
func NewStore(client *Client, sheet string, header []string) (*Store, error) {
	if client == nil {
		return nil, errors.New("sheets: no spreadsheet configured")
	}
	if len(header) != numColumns {
		return nil, fmt.Errorf("sheets: header has %d columns, want %d", len(header), numColumns)
	}
	if sheet == "" {
		sheet = "Journal"
	}
	return &Store{client: client, sheet: sheet, header: header}, nil
}

func (s *Store) tableRange() string {
	return quoteSheet(s.sheet) + "!A:J"
}

func (s *Store) rowRange(row int) string {
	return fmt.Sprintf("%s!A%d:J%d", quoteSheet(s.sheet), row, row)
}

// quoteSheet wraps tab names containing spaces or punctuation in quotes.
func quoteSheet(name string) string {
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}

// EnsureHeader writes the header row when the sheet is empty.
func (s *Store) EnsureHeader(ctx context.Context) error {
	rows, err := s.client.ReadAll(ctx, s.tableRange())
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	return s.client.Update(ctx, s.rowRange(1), [][]string{s.header})
}

// List implements store.Store. Rows whose first cell is not a date are skipped.
func (s *Store) List(ctx context.Context) ([]model.DailyRecord, error) {
	rows, err := s.client.ReadAll(ctx, s.tableRange())
	if err != nil {
		return nil, err
	}

	var records []model.DailyRecord
	for _, row := range rows {
		r, ok := decodeRow(row)
		if !ok {
			continue
		}
		records = store.Merge(records, r)
	}
	return records, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, day time.Time) (model.DailyRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return model.DailyRecord{}, err
	}
	day = model.Day(day)
	for _, r := range records {
		if r.Date.Equal(day) {
			return r, nil
		}
	}
	return model.DailyRecord{}, store.ErrNotFound
}

// Upsert implements store.Store: the first row holding r's date is
// rewritten in place and any later rows for the same date are cleared, so
// List and Get see the saved values. Without a match r is appended.
func (s *Store) Upsert(ctx context.Context, r model.DailyRecord) error {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}

	rows, err := s.client.ReadAll(ctx, s.tableRange())
	if err != nil {
		return err
	}

	encoded := [][]string{encodeRow(r)}
	if idx := findRows(rows, r.Date); len(idx) > 0 {
		if err := s.client.Update(ctx, s.rowRange(idx[0]+1), encoded); err != nil {
			return err
		}
		return s.clearRows(ctx, idx[1:])
	}
	if len(rows) == 0 {
		if err := s.client.Update(ctx, s.rowRange(1), [][]string{s.header}); err != nil {
			return err
		}
	}
	return s.client.Append(ctx, s.tableRange(), encoded)
}

// Delete implements store.Store by clearing every row holding the date. The
// blank rows stay in the sheet and are skipped on read.
func (s *Store) Delete(ctx context.Context, day time.Time) error {
	rows, err := s.client.ReadAll(ctx, s.tableRange())
	if err != nil {
		return err
	}
	idx := findRows(rows, model.Day(day))
	if len(idx) == 0 {
		return store.ErrNotFound
	}
	return s.clearRows(ctx, idx)
}

func (s *Store) clearRows(ctx context.Context, idx []int) error {
	for _, i := range idx {
		if err := s.client.Clear(ctx, s.rowRange(i+1)); err != nil {
			return err
		}
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// findRows returns the indexes of every row whose date cell is day, in
// sheet order.
func findRows(rows [][]string, day time.Time) []int {
	var idx []int
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if d, ok := parseSheetDate(row[0]); ok && d.Equal(day) {
			idx = append(idx, i)
		}
	}
	return idx
}

// literal makes the sheet store s as typed text. A leading apostrophe keeps
// dates from being reformatted in the sheet's locale and text starting with
// a formula sign from being evaluated; the sheet does not return it on read.
func literal(s string) string {
	if s == "" {
		return s
	}
	return "'" + s
}

// text escapes free-text cells only when they would be read as a formula.
func text(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return literal(s)
	}
	return s
}

func encodeRow(r model.DailyRecord) []string {
	weight := ""
	if r.HasWeight() {
		weight = strconv.FormatFloat(r.WeightKg, 'f', 1, 64)
	}
	return []string{
		literal(r.Date.Format(SheetDateLayout)),
		weight,
		strconv.Itoa(r.Calories),
		strconv.Itoa(r.ProteinG),
		strconv.Itoa(r.FatG),
		strconv.Itoa(r.CarbsG),
		text(r.Workout),
		r.Done.String(),
		strconv.Itoa(r.Steps),
		text(r.Notes),
	}
}

func decodeRow(row []string) (model.DailyRecord, bool) {
	if len(row) == 0 {
		return model.DailyRecord{}, false
	}
	d, ok := parseSheetDate(row[0])
	if !ok {
		return model.DailyRecord{}, false
	}
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimPrefix(strings.TrimSpace(row[i]), "'")
		}
		return ""
	}

	r := model.DailyRecord{
		Date:     d,
		WeightKg: parseNumber(cell(1)),
		Calories: int(parseNumber(cell(2))),
		ProteinG: int(parseNumber(cell(3))),
		FatG:     int(parseNumber(cell(4))),
		CarbsG:   int(parseNumber(cell(5))),
		Workout:  cell(6),
		Steps:    int(parseNumber(cell(8))),
		Notes:    cell(9),
	}
	// Hand-typed flags outside the known set are treated as unset.
	r.Done, _ = model.ParseCompletion(cell(7))
	return r, true
}

// sheetDateLayouts lists the accepted date cells: the written layout, ISO,
// and day-first forms a sheet may render after converting a typed date.
var sheetDateLayouts = []string{SheetDateLayout, model.DateLayout, "2.1.2006", "02/01/2006", "2/1/2006"}

func parseSheetDate(s string) (time.Time, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "'")
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumber accepts decimal commas and thousands spaces as a French-locale
// sheet renders them. Unparseable cells read as zero.
func parseNumber(s string) float64 {
	s = strings.NewReplacer(" ", "", " ", "", " ", "", ",", ".").Replace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
