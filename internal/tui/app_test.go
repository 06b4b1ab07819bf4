package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/scalelog/internal/config"
	"github.com/theirongolddev/scalelog/internal/i18n"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/store"
	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

func day(s string) time.Time {
	d, err := model.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedApp returns an App over a memory store holding three records, with
// the initial load already applied.
func loadedApp(t *testing.T) (App, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()
	for i, w := range []float64{83, 82.4, 81.9} {
		r := model.DailyRecord{Date: day("2025-07-27").AddDate(0, 0, i), WeightKg: w}
		if err := st.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	a := NewApp(Options{
		Store:       st,
		StorageName: "memory",
		Config:      config.DefaultConfig(),
		Labels:      i18n.For("en"),
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.(App).Update(loadDataCmd(st, a.plan)())
	return m.(App), st
}

func TestEntryValuesRecord(t *testing.T) {
	v := &entryValues{
		Date:     "2025-08-01",
		Weight:   "82,5",
		Calories: "1 800",
		Steps:    "12,000",
		Workout:  " Rest ",
		Done:     model.CompletionDone,
	}
	r, err := v.record()
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if r.WeightKg != 82.5 || r.Calories != 1800 || r.Steps != 12000 {
		t.Fatalf("parsed %+v", r)
	}
	if r.Workout != "Rest" || r.Done != model.CompletionDone {
		t.Fatalf("workout %q done %v", r.Workout, r.Done)
	}

	v.Weight = "heavy"
	if _, err := v.record(); !errors.Is(err, errNotNumber) {
		t.Fatalf("weight=heavy: err = %v, want errNotNumber", err)
	}

	v.Weight = "600"
	if _, err := v.record(); !errors.Is(err, model.ErrInvalidRecord) {
		t.Fatalf("weight=600: err = %v, want ErrInvalidRecord", err)
	}
}

func TestValuesFromRecord_DefaultsWorkout(t *testing.T) {
	labels := i18n.For("fr")
	v := valuesFromRecord(model.DailyRecord{Date: day("2025-08-01")}, labels)
	if v.Workout != labels.Workouts[0] {
		t.Fatalf("workout = %q, want %q", v.Workout, labels.Workouts[0])
	}
	if v.Weight != "" || v.Calories != "" {
		t.Fatalf("zero values should be blank, got %+v", v)
	}
}

func TestEntryValues_CustomWorkout(t *testing.T) {
	labels := i18n.For("en")
	v := valuesFromRecord(model.DailyRecord{Date: day("2025-08-01"), Workout: "Cycling 30 km"}, labels)
	if v.Workout != workoutOther || v.OtherWorkout != "Cycling 30 km" {
		t.Fatalf("custom label loaded as select %q, text %q", v.Workout, v.OtherWorkout)
	}
	r, err := v.record()
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if r.Workout != "Cycling 30 km" {
		t.Fatalf("workout = %q, want the custom label kept", r.Workout)
	}

	v = valuesFromRecord(model.DailyRecord{Date: day("2025-08-02")}, labels)
	v.Workout = workoutOther
	v.OtherWorkout = "  Yoga "
	if r, err = v.record(); err != nil || r.Workout != "Yoga" {
		t.Fatalf("typed workout = %q, err %v", r.Workout, err)
	}

	v.Workout = labels.Workouts[1]
	if r, err = v.record(); err != nil || r.Workout != labels.Workouts[1] {
		t.Fatalf("selected workout = %q, err %v", r.Workout, err)
	}
}

func TestDataLoaded_FillsJournalNewestFirst(t *testing.T) {
	a, _ := loadedApp(t)
	if !a.loaded || a.loadErr != nil {
		t.Fatalf("loaded=%v err=%v", a.loaded, a.loadErr)
	}
	if len(a.journal.records) != 3 {
		t.Fatalf("journal has %d records, want 3", len(a.journal.records))
	}
	if got := a.journal.records[0].Key(); got != "2025-07-29" {
		t.Fatalf("first row = %s, want newest", got)
	}
	if a.result.Summary.CurrentKg == nil || *a.result.Summary.CurrentKg != 81.9 {
		t.Fatalf("summary current = %v", a.result.Summary.CurrentKg)
	}
}

func TestDataLoaded_ErrorShowsCard(t *testing.T) {
	a, _ := loadedApp(t)
	m, _ := a.Update(dataLoadedMsg{err: errors.New("sheet unreachable")})
	a = m.(App)
	a.activeTab = tabChart
	if a.loadErr == nil {
		t.Fatal("loadErr not recorded")
	}
	if view := a.View(); !strings.Contains(view, "sheet unreachable") {
		t.Fatalf("error not rendered:\n%s", view)
	}
}

func TestJournal_DeleteAsksForConfirmation(t *testing.T) {
	a, st := loadedApp(t)
	a.activeTab = tabJournal

	m, _ := a.Update(runes("x"))
	a = m.(App)
	if !a.journal.confirmDelete {
		t.Fatal("x should ask for confirmation")
	}

	// Anything but y cancels.
	m, cmd := a.Update(runes("n"))
	a = m.(App)
	if a.journal.confirmDelete || cmd != nil {
		t.Fatal("n should cancel the delete")
	}

	m, _ = a.Update(runes("x"))
	_, cmd = m.(App).Update(runes("y"))
	if cmd == nil {
		t.Fatal("y should issue a delete")
	}
	msg, ok := cmd().(recordDeletedMsg)
	if !ok || msg.err != nil {
		t.Fatalf("delete msg = %#v", msg)
	}
	if !msg.day.Equal(day("2025-07-29")) {
		t.Fatalf("deleted %s, want the selected newest row", msg.day)
	}
	if _, err := st.Get(context.Background(), day("2025-07-29")); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("record still present: %v", err)
	}
}

func TestJournal_EditOpensEntryForm(t *testing.T) {
	a, _ := loadedApp(t)
	a.activeTab = tabJournal

	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if a.activeTab != tabEntry {
		t.Fatalf("activeTab = %d, want entry", a.activeTab)
	}
	if a.entry.values.Date != "2025-07-29" || a.entry.values.Weight != "81.9" {
		t.Fatalf("entry values = %+v", a.entry.values)
	}
}

func TestKeys_TabSwitching(t *testing.T) {
	a, _ := loadedApp(t)
	a.activeTab = tabJournal

	m, _ := a.Update(runes("3"))
	if got := m.(App).activeTab; got != tabChart {
		t.Fatalf("3 -> tab %d, want chart", got)
	}
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := m.(App).activeTab; got != tabSettings {
		t.Fatalf("right -> tab %d, want settings", got)
	}
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := m.(App).activeTab; got != tabEntry {
		t.Fatalf("right wraps to %d, want entry", got)
	}

	// On the entry form digits are input; esc leaves.
	m, _ = m.(App).Update(runes("2"))
	if got := m.(App).activeTab; got != tabEntry {
		t.Fatalf("digit on entry form switched tab to %d", got)
	}
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.(App).activeTab; got != tabJournal {
		t.Fatalf("esc -> tab %d, want journal", got)
	}
}

func TestRecordSaved_Reloads(t *testing.T) {
	a, _ := loadedApp(t)
	r := model.DailyRecord{Date: day("2025-07-30"), WeightKg: 81.5}
	m, cmd := a.Update(recordSavedMsg{record: r})
	if cmd == nil {
		t.Fatal("save should trigger a reload")
	}
	if a = m.(App); a.statusErr || !strings.Contains(a.status, "2025-07-30") {
		t.Fatalf("status = %q err=%v", a.status, a.statusErr)
	}

	m, cmd = a.Update(recordSavedMsg{record: r, err: errors.New("boom")})
	if cmd != nil || !m.(App).statusErr {
		t.Fatal("failed save should report without reloading")
	}
}

func TestSettingsApply(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Cleanup(func() { theme.SetActive(theme.FlexokiDark.Name) })

	a, _ := loadedApp(t)
	a.activeTab = tabSettings

	a.settingsApply(settingsFieldWeeklyLoss, "1,5")
	if a.settings.saveErr != nil {
		t.Fatalf("save: %v", a.settings.saveErr)
	}
	if a.plan.WeeklyLossKg != 1.5 {
		t.Fatalf("plan weekly loss = %v, want 1.5", a.plan.WeeklyLossKg)
	}
	if a.result.Summary.WeeklyLossKg != 1.5 {
		t.Fatalf("summary not rebuilt: %v", a.result.Summary.WeeklyLossKg)
	}
	if _, err := os.Stat(filepath.Join(dir, "scalelog", "config.toml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	a.settingsApply(settingsFieldStartWeight, "lots")
	if a.settings.saveErr == nil || a.plan.StartWeightKg != 83 {
		t.Fatalf("invalid input should be rejected, err=%v start=%v", a.settings.saveErr, a.plan.StartWeightKg)
	}

	a.settingsApply(settingsFieldStartWeight, "400")
	if a.plan.StartWeightKg != model.MaxStartWeightKg {
		t.Fatalf("start weight = %v, want clamped to %v", a.plan.StartWeightKg, model.MaxStartWeightKg)
	}

	m, _ := a.Update(runes("t"))
	a = m.(App)
	if a.cfg.Appearance.Theme != theme.CatppuccinMocha.Name || theme.Active.Name != theme.CatppuccinMocha.Name {
		t.Fatalf("t -> theme %q (active %q)", a.cfg.Appearance.Theme, theme.Active.Name)
	}

	a.settingsApply(settingsFieldLanguage, "fr-CA")
	if a.cfg.Appearance.Language != "fr" || a.labels.TabJournal != i18n.For("fr").TabJournal {
		t.Fatalf("language = %q, labels %q", a.cfg.Appearance.Language, a.labels.TabJournal)
	}
}

func TestSettingsEdit_EnterAndEsc(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	a, _ := loadedApp(t)
	a.activeTab = tabSettings

	m, _ := a.Update(runes("j"))
	m, _ = m.(App).Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if !a.settings.editing || a.settings.input.Value() != "83" {
		t.Fatalf("editing=%v value=%q", a.settings.editing, a.settings.input.Value())
	}

	// While editing, q is text, not quit.
	m, _ = a.Update(runes("q"))
	if a = m.(App); !a.settings.editing || a.settings.input.Value() != "83q" {
		t.Fatalf("q while editing: editing=%v value=%q", a.settings.editing, a.settings.input.Value())
	}
	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(App).settings.editing {
		t.Fatal("esc should stop editing")
	}
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := NewSetupValues(cfg)
	if v.StartWeight != "83" || v.Backend != config.BackendSQLite {
		t.Fatalf("prefill = %+v", v)
	}

	v.StartWeight = "95,5"
	v.TargetLoss = "20"
	v.Language = "en"
	if err := v.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Plan.StartWeightKg != 95.5 || cfg.Plan.TargetLossKg != 20 || cfg.Appearance.Language != "en" {
		t.Fatalf("cfg = %+v", cfg)
	}

	before := cfg
	v.Backend = config.BackendSheets
	if err := v.Apply(&cfg); err == nil {
		t.Fatal("sheets without spreadsheet id should fail")
	}
	if cfg != before {
		t.Fatal("failed Apply must leave cfg untouched")
	}

	v.SpreadsheetID = " abc123 "
	if err := v.Apply(&cfg); err != nil {
		t.Fatalf("Apply sheets: %v", err)
	}
	if cfg.Sheets.SpreadsheetID != "abc123" {
		t.Fatalf("spreadsheet id = %q", cfg.Sheets.SpreadsheetID)
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a, _ := loadedApp(t)
	for tab := 0; tab < tabCount; tab++ {
		a.activeTab = tab
		if view := a.View(); view == "" {
			t.Fatalf("tab %d rendered nothing", tab)
		}
	}
	a.width = 40
	if view := a.View(); !strings.Contains(view, "too narrow") {
		t.Fatalf("narrow view = %q", view)
	}
}
