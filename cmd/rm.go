package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/store"
)

var rmCmd = &cobra.Command{
	Use:     "rm <date>",
	Aliases: []string{"delete"},
	Short:   "Delete the entry for a date",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(_ *cobra.Command, args []string) error {
	day, err := parseDateArg(args[0], time.Now())
	if err != nil {
		return err
	}

	return withJournal(func(ctx context.Context, j *journal) error {
		if err := j.store.Delete(ctx, day); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no entry for %s", day.Format(model.DateLayout))
			}
			return err
		}
		fmt.Printf("  %s: %s\n", j.labels.Deleted, day.Format(model.DateLayout))
		return nil
	})
}
