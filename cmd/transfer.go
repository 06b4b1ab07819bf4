package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/scalelog/internal/transfer"
)

var (
	flagExportFormat string
	flagImportFormat string
	flagImportDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the journal as CSV, JSON or YAML (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Save every entry from a CSV, JSON or YAML file",
	Long: "Each imported entry replaces the stored entry for its date. The CSV\n" +
		"layout matches the spreadsheet: a header row, then one row per day with\n" +
		"dates as YYYY-MM-DD or DD.MM.YYYY.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "", "csv, json or yaml (default from the file extension, csv on stdout)")
	importCmd.Flags().StringVarP(&flagImportFormat, "format", "f", "", "csv, json or yaml (default from the file extension)")
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Parse and validate without saving")
	rootCmd.AddCommand(exportCmd, importCmd)
}

// resolveFormat picks the explicit format, then the file extension, then fallback.
func resolveFormat(explicit, path string, fallback transfer.Format) (transfer.Format, error) {
	if explicit != "" {
		return transfer.ParseFormat(explicit)
	}
	if path != "" && path != "-" {
		return transfer.FormatFromPath(path)
	}
	if fallback == "" {
		return "", fmt.Errorf("cannot infer format from stdin, pass --format")
	}
	return fallback, nil
}

func runExport(_ *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	format, err := resolveFormat(flagExportFormat, path, transfer.CSV)
	if err != nil {
		return err
	}

	return withJournal(func(ctx context.Context, j *journal) error {
		records, err := j.store.List(ctx)
		if err != nil {
			return fmt.Errorf("loading records: %w", err)
		}

		var w io.Writer = os.Stdout
		if path != "" && path != "-" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		if err := transfer.Export(w, format, records, j.labels.Header()); err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		progress("  Exported %d entries as %s\n", len(records), format)
		return nil
	})
}

func runImport(_ *cobra.Command, args []string) error {
	path := args[0]
	format, err := resolveFormat(flagImportFormat, path, "")
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	records, err := transfer.Import(r, format)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	if flagImportDryRun {
		fmt.Printf("  %d valid entries, nothing saved\n", len(records))
		return nil
	}

	return withJournal(func(ctx context.Context, j *journal) error {
		for i, rec := range records {
			if err := j.store.Upsert(ctx, rec); err != nil {
				return fmt.Errorf("saving %s (%d of %d): %w", rec.Key(), i+1, len(records), err)
			}
		}
		fmt.Printf("  Imported %d entries into %s\n", len(records), j.name)
		return nil
	})
}
