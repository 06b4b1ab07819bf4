// Package tui provides the interactive Bubble Tea dashboard for scalelog.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/scalelog/internal/config"
	"github.com/theirongolddev/scalelog/internal/i18n"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/pipeline"
	"github.com/theirongolddev/scalelog/internal/store"
	"github.com/theirongolddev/scalelog/internal/tui/components"
	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

// Tab indexes.
const (
	tabEntry = iota
	tabJournal
	tabChart
	tabSettings
	tabCount
)

const (
	minTerminalWidth = 60
	maxContentWidth  = 160
	minContentHeight = 5

	storageTimeout = 30 * time.Second
)

// Options configure the dashboard.
type Options struct {
	Store store.Store
	// StorageName describes the backend on the settings tab.
	StorageName string
	Config      config.Config
	Labels      i18n.Labels
	// FirstRun shows the setup form before the dashboard.
	FirstRun bool
}

type dataLoadedMsg struct {
	result   *pipeline.LoadResult
	err      error
	loadTime time.Duration
}

type recordSavedMsg struct {
	record model.DailyRecord
	err    error
}

type recordDeletedMsg struct {
	day time.Time
	err error
}

// App is the root Bubble Tea model.
type App struct {
	store       store.Store
	storageName string
	cfg         config.Config
	plan        model.PlanSettings
	labels      i18n.Labels

	// Data
	result   *pipeline.LoadResult
	loaded   bool
	loadErr  error
	loadTime time.Duration

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model

	status    string
	statusErr bool

	// Per-tab state
	entry    entryState
	journal  journalState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
}

// NewApp creates a new dashboard model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	plan, err := opts.Config.Plan.Settings()
	if err != nil {
		plan = model.DefaultPlan()
	}

	a := App{
		store:       opts.Store,
		storageName: opts.StorageName,
		cfg:         opts.Config,
		plan:        plan,
		labels:      opts.Labels,
		spinner:     sp,
		entry:       newEntryState(opts.Labels, model.DailyRecord{Date: model.Day(time.Now())}),
		journal:     newJournalState(opts.Labels),
	}

	if opts.FirstRun {
		a.setupVals = NewSetupValues(opts.Config)
		a.setupForm = NewSetupForm(a.setupVals, opts.Labels)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		loadDataCmd(a.store, a.plan),
		a.entry.form.Init(),
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

func (a *App) tabs() []components.Tab {
	return []components.Tab{
		{Name: a.labels.TabEntry},
		{Name: a.labels.TabJournal},
		{Name: a.labels.TabChart},
		{Name: a.labels.TabSettings},
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.entry.form = a.entry.form.WithWidth(a.formWidth())
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.journal.resize(a.contentWidth(), a.height-6)
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case dataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.loadTime
		a.loadErr = msg.err
		if msg.err == nil {
			a.result = msg.result
			a.journal.setRecords(a.result.Records)
		}
		return a, nil

	case recordSavedMsg:
		if msg.err != nil {
			a.setStatus(msg.err.Error(), true)
			return a, nil
		}
		a.setStatus(fmt.Sprintf("%s: %s", a.labels.Saved, msg.record.Key()), false)
		return a, loadDataCmd(a.store, a.plan)

	case recordDeletedMsg:
		if msg.err != nil {
			a.setStatus(msg.err.Error(), true)
			return a, nil
		}
		a.setStatus(fmt.Sprintf("%s: %s", a.labels.Deleted, msg.day.Format(model.DateLayout)), false)
		return a, loadDataCmd(a.store, a.plan)

	case tea.MouseMsg:
		if a.setupForm != nil || a.showHelp {
			return a, nil
		}
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	// Forward unhandled messages (cursor blinks, etc.) to the live form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabEntry {
		return a.updateEntryForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// The entry form owns every key except esc, which leaves it.
	if a.activeTab == tabEntry {
		if key == "esc" {
			a.activeTab = tabJournal
			return a, nil
		}
		return a.updateEntryForm(msg)
	}

	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if a.activeTab == tabJournal && a.journal.confirmDelete {
		return a.updateJournalConfirm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		a.setStatus("", false)
		return a, loadDataCmd(a.store, a.plan)
	case "left", "shift+tab":
		a.activeTab = (a.activeTab + tabCount - 1) % tabCount
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % tabCount
		return a, nil
	}
	if idx := components.TabIdxByKey(key, tabCount); idx >= 0 {
		a.activeTab = idx
		return a, nil
	}

	switch a.activeTab {
	case tabJournal:
		return a.updateJournalKey(msg)
	case tabSettings:
		return a.updateSettingsKey(msg)
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		backend := a.cfg.Storage.Backend
		if err := a.setupVals.Apply(&a.cfg); err != nil {
			a.setStatus(err.Error(), true)
		} else if err := config.Save(a.cfg); err != nil {
			a.setStatus(err.Error(), true)
		} else if a.cfg.Storage.Backend != backend {
			a.setStatus("storage backend changes apply on next start", false)
		}
		a.applyConfig()
		a.setupForm = nil
		return a, loadDataCmd(a.store, a.plan)
	case huh.StateAborted:
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// applyConfig refreshes everything derived from a.cfg.
func (a *App) applyConfig() {
	if p, err := a.cfg.Plan.Settings(); err == nil {
		a.plan = p
	}
	theme.SetActive(a.cfg.Appearance.Theme)
	if a.result != nil {
		a.result = pipeline.Build(a.result.Records, a.plan, 0)
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) formWidth() int {
	return min(max(a.contentWidth()-4, 20), 80)
}

// tabAtX maps a click on the tab bar to a tab index, or -1.
func (a App) tabAtX(x int) int {
	pos := 1 // leading space
	for i, tab := range a.tabs() {
		w := 3 + lipgloss.Width(tab.Name) // "[n]" + name
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 2
	}
	return -1
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  scalelog needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	body := logoStyle.Render("◈ scalelog") + "\n\n" +
		a.spinner.View() + subtitleStyle.Render(" "+a.storageName)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body))
}

func (a App) viewHelp() string {
	t := theme.Active
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	rows := []struct{ key, desc string }{
		{"1-4 ←/→", "switch tab"},
		{"esc", "leave the entry form"},
		{"enter / e", "edit the selected journal row"},
		{"x", "delete the selected journal row"},
		{"j/k", "move"},
		{"t", "cycle theme (settings)"},
		{"r", "reload from storage"},
		{"q", "quit"},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(keyStyle.Render(fmt.Sprintf("%-12s", r.key)))
		b.WriteString(descStyle.Render(r.desc))
		b.WriteString("\n")
	}

	card := components.ContentCard("Keys", strings.TrimRight(b.String(), "\n"), 50)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewMain() string {
	cw := a.contentWidth()

	header := components.RenderTabBar(a.tabs(), a.activeTab)

	hints := "[?]help  [q]uit"
	if a.activeTab == tabEntry {
		hints = "[esc]journal  [ctrl+c]quit"
	}
	statusBar := components.RenderStatusBar(a.width, hints, a.status, a.statusErr)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil && a.activeTab != tabSettings:
		content = components.ErrorCard(a.labels.Storage, a.loadErr, cw)
	case a.activeTab == tabEntry:
		content = a.renderEntryTab(cw)
	case a.activeTab == tabJournal:
		content = a.renderJournalTab(cw)
	case a.activeTab == tabChart:
		content = a.renderChartTab(cw, contentH)
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(a.width, contentH, lipgloss.Center, lipgloss.Top, content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// ─── Commands ───────────────────────────────────────────────────

func loadDataCmd(st store.Store, plan model.PlanSettings) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		start := time.Now()
		res, err := pipeline.Load(ctx, st, plan, 0)
		return dataLoadedMsg{result: res, err: err, loadTime: time.Since(start)}
	}
}

func saveRecordCmd(st store.Store, r model.DailyRecord) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()
		return recordSavedMsg{record: r, err: st.Upsert(ctx, r)}
	}
}

func deleteRecordCmd(st store.Store, day time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()
		return recordDeletedMsg{day: day, err: st.Delete(ctx, day)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

// tableStyles themes a bubbles table.
func tableStyles() table.Styles {
	t := theme.Active
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Foreground(t.Accent).
		Bold(true)
	s.Cell = s.Cell.Foreground(t.TextPrimary)
	s.Selected = s.Selected.
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(true)
	return s
}
