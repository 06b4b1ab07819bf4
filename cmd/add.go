package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/scalelog/internal/cli"
	"github.com/theirongolddev/scalelog/internal/model"
)

var addFlags struct {
	date     string
	weight   float64
	calories int
	protein  int
	fat      int
	carbs    int
	workout  string
	done     string
	steps    int
	note     string
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Save the entry for a day (replaces any entry for that date)",
	Example: "  scalelog add --weight 82.4 --kcal 1750 --workout \"Marche 10 km\" --done yes\n" +
		"  scalelog add --date 2025-08-01 --steps 12000 --note \"piscine\"",
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	f := addCmd.Flags()
	f.StringVarP(&addFlags.date, "date", "d", "today", "Day of the entry (YYYY-MM-DD, DD.MM.YYYY, today, yesterday)")
	f.Float64VarP(&addFlags.weight, "weight", "w", 0, "Weight in kg (0 = not weighed)")
	f.IntVar(&addFlags.calories, "kcal", 0, "Calories eaten")
	f.IntVar(&addFlags.protein, "protein", 0, "Protein in g")
	f.IntVar(&addFlags.fat, "fat", 0, "Fat in g")
	f.IntVar(&addFlags.carbs, "carbs", 0, "Carbohydrates in g")
	f.StringVar(&addFlags.workout, "workout", "", "Workout type")
	f.StringVar(&addFlags.done, "done", "", "Workout done: yes/no (or ✅/❌)")
	f.IntVar(&addFlags.steps, "steps", 0, "Step count")
	f.StringVar(&addFlags.note, "note", "", "Free-text note")
	rootCmd.AddCommand(addCmd)
}

func recordFromFlags(now time.Time) (model.DailyRecord, error) {
	day, err := parseDateArg(addFlags.date, now)
	if err != nil {
		return model.DailyRecord{}, err
	}
	done, err := model.ParseCompletion(addFlags.done)
	if err != nil {
		return model.DailyRecord{}, err
	}

	r := model.DailyRecord{
		Date:     day,
		WeightKg: addFlags.weight,
		Calories: addFlags.calories,
		ProteinG: addFlags.protein,
		FatG:     addFlags.fat,
		CarbsG:   addFlags.carbs,
		Workout:  addFlags.workout,
		Done:     done,
		Steps:    addFlags.steps,
		Notes:    addFlags.note,
	}.Normalize()
	return r, r.Validate()
}

func runAdd(_ *cobra.Command, _ []string) error {
	r, err := recordFromFlags(time.Now())
	if err != nil {
		return err
	}

	return withJournal(func(ctx context.Context, j *journal) error {
		_, getErr := j.store.Get(ctx, r.Date)
		replaced := getErr == nil

		if err := j.store.Upsert(ctx, r); err != nil {
			return fmt.Errorf("saving %s: %w", r.Key(), err)
		}

		verb := j.labels.Saved
		if replaced {
			verb += " (replaced)"
		}
		weight := j.labels.NotWeighed
		if r.HasWeight() {
			weight = cli.FormatKg(r.WeightKg) + " kg"
		}
		fmt.Printf("  %s: %s  %s\n", verb, r.Key(), weight)
		return nil
	})
}
