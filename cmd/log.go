package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/scalelog/internal/cli"
	"github.com/theirongolddev/scalelog/internal/i18n"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/pipeline"
)

var (
	flagLogLimit  int
	flagLogSince  string
	flagLogWeekly bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Latest journal entries, newest first",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVarP(&flagLogLimit, "limit", "n", pipeline.DefaultRecent, "Number of entries to show (0 = all)")
	logCmd.Flags().StringVar(&flagLogSince, "since", "", "Only entries on or after this date")
	logCmd.Flags().BoolVarP(&flagLogWeekly, "weekly", "w", false, "Show weekly averages instead of days")
	rootCmd.AddCommand(logCmd)
}

func runLog(_ *cobra.Command, _ []string) error {
	return withJournal(func(ctx context.Context, j *journal) error {
		res, err := j.load(ctx, 0)
		if err != nil {
			return err
		}

		records := res.Records
		if flagLogSince != "" {
			since, err := parseDateArg(flagLogSince, time.Now())
			if err != nil {
				return err
			}
			records = pipeline.FilterByTime(records, since, time.Time{})
		}

		if len(records) == 0 {
			fmt.Printf("\n  %s\n\n", j.labels.NoRecords)
			return nil
		}

		fmt.Println()
		if flagLogWeekly {
			renderWeeks(pipeline.AggregateWeeks(records), flagLogLimit)
			return nil
		}

		limit := flagLogLimit
		if limit <= 0 {
			limit = len(records)
		}
		renderLatest(j.labels, pipeline.Recent(records, limit))
		return nil
	})
}

// renderLatest prints records, already ordered, with the localized columns.
func renderLatest(labels i18n.Labels, records []model.DailyRecord) {
	rows := make([][]string, len(records))
	for i, r := range records {
		weight := ""
		if r.HasWeight() {
			weight = cli.FormatKg(r.WeightKg)
		}
		rows[i] = []string{
			r.Date.Format(model.DateLayout),
			weight,
			cli.FormatCount(r.Calories),
			cli.FormatCount(r.ProteinG),
			cli.FormatCount(r.FatG),
			cli.FormatCount(r.CarbsG),
			r.Workout,
			r.Done.String(),
			cli.FormatCount(r.Steps),
			r.Notes,
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:     labels.Latest,
		Headers:   labels.Header(),
		Rows:      rows,
		LeftAlign: map[int]bool{6: true, 9: true},
	}))
}

func renderWeeks(weeks []model.WeeklyStats, limit int) {
	if limit > 0 && len(weeks) > limit {
		weeks = weeks[len(weeks)-limit:]
	}

	rows := make([][]string, 0, len(weeks))
	var avgs []float64
	for i := len(weeks) - 1; i >= 0; i-- {
		w := weeks[i]
		rows = append(rows, []string{
			w.WeekStart.Format(model.DateLayout),
			fmt.Sprintf("%d", w.Days),
			cli.FormatOptionalKg(w.AvgWeightKg),
			cli.FormatNumber(int64(w.AvgCalories + 0.5)),
			cli.FormatNumber(int64(w.AvgSteps + 0.5)),
			fmt.Sprintf("%d", w.DoneCount),
		})
	}
	for _, w := range weeks {
		if w.AvgWeightKg != nil {
			avgs = append(avgs, *w.AvgWeightKg)
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Weekly averages",
		Headers: []string{"Week of", "Days", "⌀ kg", "⌀ kcal", "⌀ steps", "✅"},
		Rows:    rows,
	}))
	if len(avgs) > 1 {
		fmt.Printf("\n  ⌀ kg  %s\n", cli.RenderSparkline(avgs))
	}
	fmt.Println()
}
