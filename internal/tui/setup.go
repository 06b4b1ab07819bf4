package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/scalelog/internal/config"
	"github.com/theirongolddev/scalelog/internal/i18n"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

// SetupValues backs the setup wizard. It is shared by `scalelog setup` and
// the dashboard's first-run screen.
type SetupValues struct {
	StartDate     string
	StartWeight   string
	TargetLoss    string
	WeeklyLoss    string
	Backend       string
	SpreadsheetID string
	Language      string
	Theme         string
}

// NewSetupValues pre-fills the wizard from cfg.
func NewSetupValues(cfg config.Config) *SetupValues {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return &SetupValues{
		StartDate:     cfg.Plan.StartDate,
		StartWeight:   f(cfg.Plan.StartWeightKg),
		TargetLoss:    f(cfg.Plan.TargetLossKg),
		WeeklyLoss:    f(cfg.Plan.WeeklyLossKg),
		Backend:       cfg.Storage.Backend,
		SpreadsheetID: cfg.Sheets.SpreadsheetID,
		Language:      cfg.Appearance.Language,
		Theme:         cfg.Appearance.Theme,
	}
}

// Apply writes the wizard values into cfg and validates the result.
func (v *SetupValues) Apply(cfg *config.Config) error {
	day, err := model.ParseDay(v.StartDate)
	if err != nil {
		return err
	}
	plan := config.PlanConfig{StartDate: day.Format(model.DateLayout)}
	for _, f := range []struct {
		name string
		s    string
		dst  *float64
	}{
		{"start weight", v.StartWeight, &plan.StartWeightKg},
		{"target loss", v.TargetLoss, &plan.TargetLossKg},
		{"weekly loss", v.WeeklyLoss, &plan.WeeklyLossKg},
	} {
		if *f.dst, err = parseDecimal(f.s); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}

	next := *cfg
	next.Plan = plan
	next.Storage.Backend = v.Backend
	next.Sheets.SpreadsheetID = strings.TrimSpace(v.SpreadsheetID)
	next.Appearance.Language = v.Language
	next.Appearance.Theme = v.Theme
	if err := next.Validate(); err != nil {
		return err
	}
	if next.Storage.Backend == config.BackendSheets && next.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets backend needs a spreadsheet id")
	}
	*cfg = next
	return nil
}

// NewSetupForm builds the wizard. The caller runs it standalone or embeds it
// in the dashboard.
func NewSetupForm(v *SetupValues, labels i18n.Labels) *huh.Form {
	positive := func(s string) error {
		f, err := parseDecimal(s)
		if err != nil {
			return err
		}
		if f <= 0 {
			return fmt.Errorf("must be positive")
		}
		return nil
	}

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("scalelog").
				Description("Plan settings. Values outside the allowed ranges are clamped."),
			huh.NewInput().Title("Start date").Placeholder(model.DateLayout).Value(&v.StartDate).
				Validate(func(s string) error {
					_, err := model.ParseDay(s)
					return err
				}),
			huh.NewInput().Title(labels.Columns[1]).Value(&v.StartWeight).Validate(positive),
			huh.NewInput().Title("Target loss (kg)").Value(&v.TargetLoss).Validate(positive),
			huh.NewInput().Title("Weekly loss (kg)").Value(&v.WeeklyLoss).Validate(positive),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title(labels.Storage).Options(
				huh.NewOption("SQLite (local file)", config.BackendSQLite),
				huh.NewOption("PostgreSQL", config.BackendPostgres),
				huh.NewOption("Spreadsheet", config.BackendSheets),
				huh.NewOption("Memory (not persisted)", config.BackendMemory),
			).Value(&v.Backend),
		),
		huh.NewGroup(
			huh.NewInput().Title("Spreadsheet ID").Value(&v.SpreadsheetID),
		).WithHideFunc(func() bool { return v.Backend != config.BackendSheets }),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Language").Options(
				huh.NewOption("Français", "fr"),
				huh.NewOption("English", "en"),
			).Value(&v.Language),
			huh.NewSelect[string]().Title("Theme").Options(themes...).Value(&v.Theme),
		),
	).WithShowHelp(true)
}
