// Package cmd implements the scalelog CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/scalelog/internal/config"
	"github.com/theirongolddev/scalelog/internal/i18n"
	"github.com/theirongolddev/scalelog/internal/model"
	"github.com/theirongolddev/scalelog/internal/pipeline"
	"github.com/theirongolddev/scalelog/internal/sheets"
	"github.com/theirongolddev/scalelog/internal/store"
)

var (
	flagBackend string
	flagDB      string
	flagLang    string
	flagQuiet   bool
)

// storageTimeout bounds one command's storage round trips.
const storageTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "scalelog",
	Short: "Weight-loss journal with a projected plan curve",
	Long: "Log daily weight, intake, workouts and steps, and compare them against\n" +
		"a linear weight-loss plan. Entries are keyed by date: saving a date twice\n" +
		"replaces the earlier entry.",
	SilenceUsage: true,
	RunE:         runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBackend, "backend", "b", "", "Storage backend: sqlite, postgres, sheets, memory (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite file or PostgreSQL DSN for the selected backend")
	rootCmd.PersistentFlags().StringVarP(&flagLang, "lang", "l", "", "Label language, fr or en (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig reads the config file and applies the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagBackend != "" {
		cfg.Storage.Backend = flagBackend
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if flagDB != "" {
		if cfg.Storage.Backend == config.BackendPostgres {
			cfg.Storage.PostgresDSN = flagDB
		} else {
			cfg.Storage.SQLitePath = flagDB
		}
	}
	return cfg, nil
}

// labelsFor picks the label language: --lang, then SCALELOG_LANG, then config.
func labelsFor(cfg config.Config) i18n.Labels {
	if flagLang != "" {
		return i18n.For(flagLang)
	}
	return i18n.For(config.GetLanguage(cfg))
}

// openStore returns the configured backend and a short description of it.
func openStore(ctx context.Context, cfg config.Config, labels i18n.Labels) (store.Store, string, error) {
	switch cfg.Storage.Backend {
	case config.BackendSheets:
		client := sheets.NewClient(cfg.Sheets.BaseURL, cfg.Sheets.SpreadsheetID, config.GetSheetsToken(cfg))
		st, err := sheets.NewStore(client, cfg.Sheets.Sheet, labels.Header())
		if err != nil {
			return nil, "", err
		}
		return st, fmt.Sprintf("sheets %s!%s", cfg.Sheets.SpreadsheetID, cfg.Sheets.Sheet), nil

	case config.BackendPostgres:
		st, err := store.Open(ctx, store.Options{Backend: store.BackendPostgres, PostgresDSN: config.GetPostgresDSN(cfg)})
		if err != nil {
			return nil, "", err
		}
		return st, "postgres", nil

	case config.BackendMemory:
		return store.NewMemory(), "memory (not persisted)", nil
	}

	path := config.GetSQLitePath(cfg)
	st, err := store.Open(ctx, store.Options{Backend: store.BackendSQLite, SQLitePath: path})
	if err != nil {
		return nil, "", err
	}
	return st, "sqlite " + path, nil
}

// journal bundles what every data command needs.
type journal struct {
	cfg    config.Config
	labels i18n.Labels
	plan   model.PlanSettings
	store  store.Store
	name   string
}

func openJournal(ctx context.Context) (*journal, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	plan, err := cfg.Plan.Settings()
	if err != nil {
		return nil, err
	}
	labels := labelsFor(cfg)

	st, name, err := openStore(ctx, cfg, labels)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	return &journal{cfg: cfg, labels: labels, plan: plan, store: st, name: name}, nil
}

func (j *journal) Close() {
	_ = j.store.Close()
}

// load reads every record and derives the plan, chart, and summary.
func (j *journal) load(ctx context.Context, days int) (*pipeline.LoadResult, error) {
	progress("  Reading journal from %s...\n", j.name)
	res, err := pipeline.Load(ctx, j.store, j.plan, days)
	if err != nil {
		return nil, err
	}
	progress("  %d entries\n", len(res.Records))
	return res, nil
}

// withJournal opens the journal, runs fn with a storage deadline, and closes it.
func withJournal(fn func(ctx context.Context, j *journal) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	j, err := openJournal(ctx)
	if err != nil {
		return err
	}
	defer j.Close()
	return fn(ctx, j)
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// parseDateArg accepts ISO dates, DD.MM.YYYY, "today" and "yesterday".
func parseDateArg(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today", "aujourd'hui":
		return model.Day(now), nil
	case "yesterday", "hier":
		return model.Day(now).AddDate(0, 0, -1), nil
	}
	if t, err := time.Parse("02.01.2006", strings.TrimSpace(s)); err == nil {
		return t, nil
	}
	return model.ParseDay(s)
}
