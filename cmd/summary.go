package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/scalelog/internal/cli"
	"github.com/theirongolddev/scalelog/internal/i18n"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Current weight, total loss, progress and plan",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	return withJournal(func(ctx context.Context, j *journal) error {
		res, err := j.load(ctx, 0)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle("SCALELOG"))
		fmt.Println()

		if len(res.Records) == 0 {
			fmt.Printf("  %s\n", j.labels.NoRecords)
			fmt.Println("  Add one with `scalelog add --weight 82.5`.")
			fmt.Println()
		}

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows:    summaryRows(res.Summary, j.labels),
		}))

		if res.Summary.Progress != nil {
			fmt.Println()
			fmt.Printf("  %s\n", cli.RenderProgressBar(*res.Summary.Progress, 40))
		}

		if len(res.Records) > 0 {
			fmt.Println()
			renderLatest(j.labels, pipeline.Recent(res.Records, 5))
		}
		return nil
	})
}

func summaryRows(s model.Summary, labels i18n.Labels) [][]string {
	current := cli.FormatOptionalKg(s.CurrentKg)
	if s.CurrentKg != nil {
		current += " kg"
	}
	loss := cli.Placeholder
	if s.TotalLossKg != nil {
		loss = cli.FormatKg(*s.TotalLossKg) + " kg"
	}

	rows := [][]string{
		{labels.CurrentWeight, current},
		{labels.TotalLoss, loss},
		{labels.Progress, cli.FormatOptionalPercent(s.Progress)},
		{labels.GoalWeight, cli.FormatKg(s.GoalKg) + " kg"},
		{labels.WeeklyRate, cli.FormatRate(s.WeeklyLossKg, labels.RateUnit)},
		{"---"},
		{labels.Records, cli.FormatNumber(int64(s.Records))},
	}
	if s.DoneCount+s.MissedCount > 0 {
		rows = append(rows, []string{
			labels.Adherence,
			fmt.Sprintf("%s  (%d ✅ / %d ❌)", cli.FormatPercent(s.Adherence), s.DoneCount, s.MissedCount),
		})
	}
	return rows
}
