package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/scalelog/internal/i18n"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/tui/components"
	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

// entryValues backs the entry form. Numeric fields are kept as text so the
// form can show them blank and accept a decimal comma.
type entryValues struct {
	Date     string
	Weight   string
	Calories string
	Protein  string
	Fat      string
	Carbs    string
	Steps    string
	// Workout is the selected label, or workoutOther when the type is typed
	// into OtherWorkout.
	Workout      string
	OtherWorkout string
	Done         model.Completion
	Notes        string
}

// workoutOther is the select value for a typed workout type; it is never a
// real label.
const workoutOther = "\x00other"

type entryState struct {
	values *entryValues
	form   *huh.Form
}

func newEntryState(labels i18n.Labels, r model.DailyRecord) entryState {
	v := valuesFromRecord(r, labels)
	return entryState{values: v, form: newEntryForm(v, labels)}
}

func valuesFromRecord(r model.DailyRecord, labels i18n.Labels) *entryValues {
	num := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}
	v := &entryValues{
		Date:     r.Date.Format(model.DateLayout),
		Calories: num(r.Calories),
		Protein:  num(r.ProteinG),
		Fat:      num(r.FatG),
		Carbs:    num(r.CarbsG),
		Steps:    num(r.Steps),
		Workout:  r.Workout,
		Done:     r.Done,
		Notes:    r.Notes,
	}
	if r.HasWeight() {
		v.Weight = strconv.FormatFloat(r.WeightKg, 'f', 1, 64)
	}
	switch {
	case v.Workout == "" && len(labels.Workouts) > 0:
		v.Workout = labels.Workouts[0]
	case v.Workout != "" && !slices.Contains(labels.Workouts, v.Workout):
		v.OtherWorkout = v.Workout
		v.Workout = workoutOther
	}
	return v
}

func (v *entryValues) workout() string {
	if v.Workout == workoutOther {
		return v.OtherWorkout
	}
	return v.Workout
}

// record converts the form values to a validated record.
func (v *entryValues) record() (model.DailyRecord, error) {
	day, err := model.ParseDay(v.Date)
	if err != nil {
		return model.DailyRecord{}, err
	}
	r := model.DailyRecord{
		Date:    day,
		Workout: v.workout(),
		Done:    v.Done,
		Notes:   v.Notes,
	}
	if r.WeightKg, err = parseDecimal(v.Weight); err != nil {
		return r, err
	}
	ints := []struct {
		s   string
		dst *int
	}{
		{v.Calories, &r.Calories}, {v.Protein, &r.ProteinG}, {v.Fat, &r.FatG},
		{v.Carbs, &r.CarbsG}, {v.Steps, &r.Steps},
	}
	for _, f := range ints {
		if *f.dst, err = parseCount(f.s); err != nil {
			return r, err
		}
	}
	r = r.Normalize()
	return r, r.Validate()
}

var errNotNumber = errors.New("not a number")

func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, errNotNumber)
	}
	return f, nil
}

func parseCount(s string) (int, error) {
	s = strings.NewReplacer(" ", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, errNotNumber)
	}
	return n, nil
}

func validateRange(parse func(string) (float64, error), hi float64) func(string) error {
	return func(s string) error {
		f, err := parse(s)
		if err != nil {
			return err
		}
		if f < 0 || f > hi {
			return fmt.Errorf("0 - %.0f", hi)
		}
		return nil
	}
}

func countAsFloat(s string) (float64, error) {
	n, err := parseCount(s)
	return float64(n), err
}

func newEntryForm(v *entryValues, labels i18n.Labels) *huh.Form {
	col := labels.Columns

	workouts := make([]huh.Option[string], 0, len(labels.Workouts)+1)
	for _, w := range labels.Workouts {
		workouts = append(workouts, huh.NewOption(w, w))
	}
	workouts = append(workouts, huh.NewOption(labels.OtherWorkout, workoutOther))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(col[0]).Placeholder(model.DateLayout).Value(&v.Date).
				Validate(func(s string) error {
					_, err := model.ParseDay(s)
					return err
				}),
			huh.NewInput().Title(col[1]).Value(&v.Weight).
				Validate(validateRange(parseDecimal, model.MaxWeightKg)),
			huh.NewInput().Title(col[2]).Value(&v.Calories).
				Validate(validateRange(countAsFloat, model.MaxCalories)),
			huh.NewInput().Title(col[8]).Value(&v.Steps).
				Validate(validateRange(countAsFloat, model.MaxSteps)),
		),
		huh.NewGroup(
			huh.NewInput().Title(col[3]).Value(&v.Protein).
				Validate(validateRange(countAsFloat, model.MaxProteinG)),
			huh.NewInput().Title(col[4]).Value(&v.Fat).
				Validate(validateRange(countAsFloat, model.MaxFatG)),
			huh.NewInput().Title(col[5]).Value(&v.Carbs).
				Validate(validateRange(countAsFloat, model.MaxCarbsG)),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title(col[6]).Options(workouts...).Value(&v.Workout),
			huh.NewSelect[model.Completion]().Title(col[7]).Options(
				huh.NewOption("—", model.CompletionUnset),
				huh.NewOption(model.CompletionDone.String(), model.CompletionDone),
				huh.NewOption(model.CompletionMissed.String(), model.CompletionMissed),
			).Value(&v.Done),
		),
		huh.NewGroup(
			huh.NewInput().Title(col[6]).Placeholder(labels.OtherWorkout).Value(&v.OtherWorkout),
		).WithHideFunc(func() bool { return v.Workout != workoutOther }),
		huh.NewGroup(
			huh.NewText().Title(col[9]).Value(&v.Notes).Lines(3),
		),
	).WithShowHelp(true)

	return form
}

func (a App) updateEntryForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.entry.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.entry.form = f
	}

	switch a.entry.form.State {
	case huh.StateCompleted:
		r, err := a.entry.values.record()
		if err != nil {
			a.setStatus(err.Error(), true)
			// Keep what was typed so it can be corrected.
			a.entry.form = newEntryForm(a.entry.values, a.labels)
		} else {
			a.entry = newEntryState(a.labels, model.DailyRecord{Date: model.Day(time.Now())})
		}
		a.entry.form = a.entry.form.WithWidth(a.formWidth())

		cmds := []tea.Cmd{a.entry.form.Init()}
		if err == nil {
			cmds = append(cmds, saveRecordCmd(a.store, r))
		}
		return a, tea.Batch(cmds...)

	case huh.StateAborted:
		a.entry = newEntryState(a.labels, model.DailyRecord{Date: model.Day(time.Now())})
		a.activeTab = tabJournal
		return a, a.entry.form.Init()
	}
	return a, cmd
}

// editRecord loads r into the entry form and switches to it.
func (a App) editRecord(r model.DailyRecord) (tea.Model, tea.Cmd) {
	a.entry = newEntryState(a.labels, r)
	a.entry.form = a.entry.form.WithWidth(a.formWidth())
	a.activeTab = tabEntry
	return a, a.entry.form.Init()
}

func (a App) renderEntryTab(cw int) string {
	t := theme.Active
	hint := lipgloss.NewStyle().Foreground(t.TextDim).
		Render("Enter: next  Shift+Tab: back  Esc: journal")
	return components.ContentCard(a.labels.TabEntry, a.entry.form.View()+"\n"+hint, cw)
}
