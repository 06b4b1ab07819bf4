package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/scalelog/internal/cli"
	"github.com/theirongolddev/scalelog/internal/i18n"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/pipeline"
	"github.com/theirongolddev/scalelog/internal/tui/components"
	"github.com/theirongolddev/scalelog/internal/tui/theme"
)

// journalState holds the newest-first table of every record.
type journalState struct {
	labels        i18n.Labels
	table         table.Model
	records       []model.DailyRecord // same order as the table rows
	confirmDelete bool
}

// Minimum widths for the fixed columns; Notes takes what is left.
var journalMinWidths = [10]int{10, 6, 8, 6, 6, 6, 14, 4, 7, 10}

func newJournalState(labels i18n.Labels) journalState {
	t := table.New(
		table.WithColumns(journalColumns(labels, 120)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(tableStyles()),
	)
	return journalState{labels: labels, table: t}
}

// journalColumns sizes the ten columns to fit width. Headers shorter than
// their minimum keep the minimum; Notes absorbs the remainder.
func journalColumns(labels i18n.Labels, width int) []table.Column {
	cols := make([]table.Column, len(labels.Columns))
	used := 0
	for i, title := range labels.Columns[:9] {
		w := max(journalMinWidths[i], min(lipgloss.Width(title), journalMinWidths[i]+6))
		cols[i] = table.Column{Title: truncStr(title, w), Width: w}
		used += w + 2 // cell padding
	}
	notesW := max(width-used-2, journalMinWidths[9])
	cols[9] = table.Column{Title: labels.Columns[9], Width: notesW}
	return cols
}

func journalRow(r model.DailyRecord, notesW int) table.Row {
	weight := ""
	if r.HasWeight() {
		weight = cli.FormatKg(r.WeightKg)
	}
	return table.Row{
		r.Date.Format(model.DateLayout),
		weight,
		cli.FormatCount(r.Calories),
		cli.FormatCount(r.ProteinG),
		cli.FormatCount(r.FatG),
		cli.FormatCount(r.CarbsG),
		r.Workout,
		r.Done.String(),
		cli.FormatCount(r.Steps),
		truncStr(r.Notes, notesW),
	}
}

func (j *journalState) setRecords(records []model.DailyRecord) {
	j.records = pipeline.Recent(records, len(records))
	cols := j.table.Columns()
	notesW := journalMinWidths[9]
	if len(cols) == 10 {
		notesW = cols[9].Width
	}
	rows := make([]table.Row, len(j.records))
	for i, r := range j.records {
		rows[i] = journalRow(r, notesW)
	}
	j.table.SetRows(rows)
	if j.table.Cursor() >= len(rows) {
		j.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (j *journalState) resize(width, height int) {
	if width <= 0 {
		return
	}
	cols := journalColumns(j.labels, width-4)
	j.table.SetColumns(cols)
	j.table.SetWidth(width - 4)
	j.table.SetHeight(max(height-4, 3))
	if len(j.records) > 0 {
		j.setRecords(j.records)
	}
}

func (j journalState) selected() (model.DailyRecord, bool) {
	idx := j.table.Cursor()
	if idx < 0 || idx >= len(j.records) {
		return model.DailyRecord{}, false
	}
	return j.records[idx], true
}

func (a App) updateJournalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "e":
		if r, ok := a.journal.selected(); ok {
			return a.editRecord(r)
		}
		return a, nil
	case "x", "delete":
		if _, ok := a.journal.selected(); ok {
			a.journal.confirmDelete = true
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.journal.table, cmd = a.journal.table.Update(msg)
	return a, cmd
}

func (a App) updateJournalConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.journal.confirmDelete = false
	if msg.String() != "y" {
		return a, nil
	}
	r, ok := a.journal.selected()
	if !ok {
		return a, nil
	}
	return a, deleteRecordCmd(a.store, r.Date)
}

func (a App) renderJournalTab(cw int) string {
	t := theme.Active

	if a.result == nil || len(a.result.Records) == 0 {
		return components.ContentCard(a.labels.TabJournal,
			lipgloss.NewStyle().Foreground(t.TextMuted).Render(a.labels.NoRecords), cw)
	}

	footer := lipgloss.NewStyle().Foreground(t.TextDim).
		Render(fmt.Sprintf("%d · [enter] edit  [x] delete", len(a.result.Records)))
	if a.journal.confirmDelete {
		if r, ok := a.journal.selected(); ok {
			footer = lipgloss.NewStyle().Foreground(t.Warn).Bold(true).
				Render(fmt.Sprintf("Delete %s? [y/N]", r.Key()))
		}
	}

	return components.ContentCard(a.labels.TabJournal, a.journal.table.View()+"\n"+footer, cw)
}
