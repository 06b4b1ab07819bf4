package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/scalelog/internal/cli"
	"github.com/theirongolddev/scalelog/internal/config"
	"github.com/theirongolddev/scalelog/internal/i18n"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/tui/components"
	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

const (
	settingsFieldStartDate = iota
	settingsFieldStartWeight
	settingsFieldTargetLoss
	settingsFieldWeeklyLoss
	settingsFieldTheme
	settingsFieldLanguage
	settingsFieldCount // sentinel
)

var settingsFieldNames = [settingsFieldCount]string{
	"Start date",
	"Start weight (kg)",
	"Target loss (kg)",
	"Weekly loss (kg)",
	"Theme",
	"Language",
}

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" after a successful write
	saveErr error // non-nil if the last edit or save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 30
	return ti
}

// settingsValue renders the current value of a field.
func settingsValue(cfg config.Config, field int) string {
	switch field {
	case settingsFieldStartDate:
		return cfg.Plan.StartDate
	case settingsFieldStartWeight:
		return strconv.FormatFloat(cfg.Plan.StartWeightKg, 'f', -1, 64)
	case settingsFieldTargetLoss:
		return strconv.FormatFloat(cfg.Plan.TargetLossKg, 'f', -1, 64)
	case settingsFieldWeeklyLoss:
		return strconv.FormatFloat(cfg.Plan.WeeklyLossKg, 'f', -1, 64)
	case settingsFieldTheme:
		return cfg.Appearance.Theme
	case settingsFieldLanguage:
		return cfg.Appearance.Language
	}
	return ""
}

func (a App) updateSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		return a.settingsStartEdit()
	case "t":
		a.settingsApply(settingsFieldTheme, nextTheme(a.cfg.Appearance.Theme))
	}
	return a, nil
}

func nextTheme(current string) string {
	names := theme.Names()
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldStartDate:
		ti.Placeholder = model.DateLayout
	case settingsFieldStartWeight:
		ti.Placeholder = fmt.Sprintf("%.0f-%.0f", model.MinStartWeightKg, model.MaxStartWeightKg)
	case settingsFieldTargetLoss:
		ti.Placeholder = fmt.Sprintf("%.0f-%.0f", model.MinTargetLossKg, model.MaxTargetLossKg)
	case settingsFieldWeeklyLoss:
		ti.Placeholder = fmt.Sprintf("%.1f-%.1f", model.MinWeeklyLossKg, model.MaxWeeklyLossKg)
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.Width = 50
	case settingsFieldLanguage:
		ti.Placeholder = "fr, en"
	}
	ti.SetValue(settingsValue(a.cfg, a.settings.cursor))
	ti.Focus()

	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		a.settingsApply(a.settings.cursor, strings.TrimSpace(a.settings.input.Value()))
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsApply parses val into field, saves the config, and refreshes the
// derived plan, theme, and labels. Invalid input leaves the config untouched.
func (a *App) settingsApply(field int, val string) {
	cfg := a.cfg
	if err := setSettingsField(&cfg, field, val); err != nil {
		a.settings.saveErr = err
		a.settings.saved = false
		return
	}
	if err := cfg.Validate(); err != nil {
		a.settings.saveErr = err
		a.settings.saved = false
		return
	}

	a.cfg = cfg
	a.settings.saveErr = config.Save(cfg)
	a.settings.saved = a.settings.saveErr == nil

	if field == settingsFieldLanguage {
		a.labels = i18n.For(config.GetLanguage(cfg))
		r, err := a.entry.values.record()
		if err != nil || r.Date.IsZero() {
			r = model.DailyRecord{Date: model.Day(time.Now())}
		}
		a.entry = newEntryState(a.labels, r)
		a.entry.form = a.entry.form.WithWidth(a.formWidth())
		a.journal.labels = a.labels
		a.journal.resize(a.contentWidth(), a.height-6)
	}
	a.applyConfig()
	if a.result != nil {
		a.journal.setRecords(a.result.Records)
	}
}

func setSettingsField(cfg *config.Config, field int, val string) error {
	num := func() (float64, error) {
		f, err := parseDecimal(val)
		if err != nil {
			return 0, err
		}
		if f <= 0 {
			return 0, fmt.Errorf("%q: must be positive", val)
		}
		return f, nil
	}

	var err error
	switch field {
	case settingsFieldStartDate:
		day, perr := model.ParseDay(val)
		if perr != nil {
			return perr
		}
		cfg.Plan.StartDate = day.Format(model.DateLayout)
	case settingsFieldStartWeight:
		cfg.Plan.StartWeightKg, err = num()
	case settingsFieldTargetLoss:
		cfg.Plan.TargetLossKg, err = num()
	case settingsFieldWeeklyLoss:
		cfg.Plan.WeeklyLossKg, err = num()
	case settingsFieldTheme:
		for _, n := range theme.Names() {
			if n == val {
				cfg.Appearance.Theme = val
				return nil
			}
		}
		err = fmt.Errorf("unknown theme %q", val)
	case settingsFieldLanguage:
		cfg.Appearance.Language = i18n.For(val).Lang.String()
	}
	return err
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	goodStyle := lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover)

	innerW := components.CardInnerWidth(cw)

	var formBody strings.Builder
	for i, name := range settingsFieldNames {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", name)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		value := settingsValue(a.cfg, i)
		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-20s ", name+":"))
			val := selectedStyle.Render(value)
			formBody.WriteString(marker + label + val)
			if padLen := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(val); padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", name+":")))
			formBody.WriteString(valueStyle.Render(value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(goodStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [t] theme  [Esc] cancel"))

	records := 0
	if a.result != nil {
		records = len(a.result.Records)
	}
	goal := fmt.Sprintf("%s kg", cli.FormatKg(a.plan.GoalWeight()))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Storage:     ") + valueStyle.Render(a.storageName) + "\n")
	infoBody.WriteString(labelStyle.Render("Entries:     ") + valueStyle.Render(cli.FormatNumber(int64(records))) + "\n")
	infoBody.WriteString(labelStyle.Render("Goal weight: ") + valueStyle.Render(goal) + "\n")
	infoBody.WriteString(labelStyle.Render("Load time:   ") + valueStyle.Render(fmt.Sprintf("%.2fs", a.loadTime.Seconds())) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file: ") + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard(a.labels.TabSettings, formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	if a.loadErr != nil {
		b.WriteString("\n")
		b.WriteString(components.ErrorCard(a.labels.Storage, a.loadErr, cw))
	}
	return b.String()
}
