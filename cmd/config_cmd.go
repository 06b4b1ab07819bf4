package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/scalelog/internal/config"
	"github.com/theirongolddev/scalelog/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	plan, err := cfg.Plan.Settings()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Plan]")
	fmt.Printf("    Start date:   %s\n", plan.StartDate.Format(model.DateLayout))
	fmt.Printf("    Start weight: %.1f kg\n", plan.StartWeightKg)
	fmt.Printf("    Target loss:  %.1f kg (goal %.1f kg)\n", plan.TargetLossKg, plan.GoalWeight())
	fmt.Printf("    Weekly loss:  %.2f kg\n", plan.WeeklyLossKg)
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Backend: %s\n", cfg.Storage.Backend)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		fmt.Printf("    File:    %s\n", config.GetSQLitePath(cfg))
	case config.BackendPostgres:
		if dsn := config.GetPostgresDSN(cfg); dsn != "" {
			fmt.Printf("    DSN:     %s\n", maskSecret(dsn))
		} else {
			fmt.Println("    DSN:     not configured")
		}
	}
	fmt.Println()

	if cfg.Storage.Backend == config.BackendSheets || cfg.Sheets.SpreadsheetID != "" {
		fmt.Println("  [Sheets]")
		fmt.Printf("    Spreadsheet: %s\n", cfg.Sheets.SpreadsheetID)
		fmt.Printf("    Sheet:       %s\n", cfg.Sheets.Sheet)
		if tok := config.GetSheetsToken(cfg); tok != "" {
			fmt.Printf("    Token:       %s\n", maskSecret(tok))
		} else {
			fmt.Println("    Token:       not configured")
		}
		fmt.Println()
	}

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:    %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Language: %s\n", labelsFor(cfg).Lang)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address: %s\n", cfg.Daemon.Addr)
	fmt.Println()

	fmt.Println("  Run `scalelog setup` to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:8] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:4] + "..."
	}
	return "****"
}
