package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/scalelog/internal/cli"
)

var (
	flagChartDays   int
	flagChartWidth  int
	flagChartHeight int
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Plan curve against logged weights",
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().IntVar(&flagChartDays, "days", 120, "Days of the plan to draw")
	chartCmd.Flags().IntVar(&flagChartWidth, "width", 0, "Chart width in columns (default: terminal width)")
	chartCmd.Flags().IntVar(&flagChartHeight, "height", 16, "Chart height in rows")
	rootCmd.AddCommand(chartCmd)
}

func runChart(_ *cobra.Command, _ []string) error {
	if flagChartDays < 2 {
		return fmt.Errorf("--days must be at least 2")
	}

	width := flagChartWidth
	if width <= 0 {
		width = 80
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 20 {
			width = w - 4
		}
	}

	return withJournal(func(ctx context.Context, j *journal) error {
		res, err := j.load(ctx, flagChartDays)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(cli.RenderLineChart(res.Chart, width, flagChartHeight, j.labels.Plan, j.labels.Actual))
		fmt.Println()
		return nil
	})
}
