package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/scalelog/internal/cli"
	"github.com/theirongolddev/scalelog/internal/forecast"
	"github.com/theirongolddev/scalelog/internal/model"
)

var (
	flagPlanDays  int
	flagPlanEvery int
	flagPlanAll   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Projected weight per day, with the actual weight where logged",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().IntVar(&flagPlanDays, "days", forecast.DefaultDays, "Length of the projection in days")
	planCmd.Flags().IntVar(&flagPlanEvery, "every", 7, "Show one row every N days")
	planCmd.Flags().BoolVar(&flagPlanAll, "all", false, "Show every row (same as --every 1)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, _ []string) error {
	if flagPlanDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	every := flagPlanEvery
	if flagPlanAll || every < 1 {
		every = 1
	}

	return withJournal(func(ctx context.Context, j *journal) error {
		res, err := j.load(ctx, flagPlanDays)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("%s · %s → %s kg", j.labels.Plan, j.plan.StartDate.Format(model.DateLayout), cli.FormatKg(j.plan.GoalWeight())),
			Headers: []string{"Date", j.labels.Plan, j.labels.Actual, "Δ"},
			Rows:    planRows(res.Chart, every),
		}))
		fmt.Println()
		return nil
	})
}

// planRows samples points every n days. Days with a logged weight and the
// last day are always kept.
func planRows(points []model.ChartPoint, n int) [][]string {
	var rows [][]string
	for i, p := range points {
		if i%n != 0 && p.ActualKg == nil && i != len(points)-1 {
			continue
		}
		actual, delta := "", ""
		if p.ActualKg != nil {
			actual = cli.FormatKg(*p.ActualKg)
			delta = cli.FormatDelta(*p.ActualKg, p.PlannedKg)
		}
		rows = append(rows, []string{
			p.Date.Format(model.DateLayout),
			cli.FormatKg(p.PlannedKg),
			actual,
			delta,
		})
	}
	return rows
}
