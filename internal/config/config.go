package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all scalelog configuration.
type Config struct {
	Plan       PlanConfig       `toml:"plan"`
	Storage    StorageConfig    `toml:"storage"`
	Sheets     SheetsConfig     `toml:"sheets"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// StorageConfig selects where records are kept.
type StorageConfig struct {
	Backend     string `toml:"backend"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// SheetsConfig holds remote spreadsheet settings.
type SheetsConfig struct {
	SpreadsheetID string `toml:"spreadsheet_id,omitempty"`
	Sheet         string `toml:"sheet,omitempty"`
	BaseURL       string `toml:"base_url,omitempty"`
	Token         string `toml:"token,omitempty"`
}

// AppearanceConfig holds theme and language settings.
type AppearanceConfig struct {
	Theme    string `toml:"theme"`
	Language string `toml:"language"`
}

// DaemonConfig holds settings for `scalelog serve`.
type DaemonConfig struct {
	Addr string `toml:"addr"`
}

// Storage backend names.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendSheets   = "sheets"
)

// ErrUnknownBackend is returned by Validate for an unrecognized storage backend.
var ErrUnknownBackend = errors.New("unknown storage backend")

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Plan: DefaultPlanConfig(),
		Storage: StorageConfig{
			Backend: BackendSQLite,
		},
		Sheets: SheetsConfig{
			Sheet: "Journal",
		},
		Appearance: AppearanceConfig{
			Theme:    "flexoki-dark",
			Language: "fr",
		},
		Daemon: DaemonConfig{
			Addr: "127.0.0.1:8765",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scalelog")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "scalelog")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the SQLite journal.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "scalelog")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "scalelog")
}

// DefaultSQLitePath is used when storage.sqlite_path is empty.
func DefaultSQLitePath() string {
	return filepath.Join(DataDir(), "journal.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path with owner-only permissions.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is the user's own config file
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Validate clamps plan values into range and normalizes the storage backend.
func (c *Config) Validate() error {
	if err := c.Plan.clamp(); err != nil {
		return err
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "":
		c.Storage.Backend = BackendSQLite
	case BackendMemory, BackendSQLite, BackendPostgres, BackendSheets:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}

	if c.Sheets.Sheet == "" {
		c.Sheets.Sheet = "Journal"
	}
	return nil
}

// GetSheetsToken returns the spreadsheet token from env var or config, in that order.
func GetSheetsToken(cfg Config) string {
	if tok := os.Getenv("SCALELOG_SHEETS_TOKEN"); tok != "" {
		return tok
	}
	return cfg.Sheets.Token
}

// GetPostgresDSN returns the PostgreSQL DSN from env var or config, in that order.
func GetPostgresDSN(cfg Config) string {
	if dsn := os.Getenv("SCALELOG_POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	return cfg.Storage.PostgresDSN
}

// GetLanguage returns the UI language from env var or config, in that order.
func GetLanguage(cfg Config) string {
	if lang := os.Getenv("SCALELOG_LANG"); lang != "" {
		return lang
	}
	return cfg.Appearance.Language
}

// GetSQLitePath returns the configured journal path or the default one.
func GetSQLitePath(cfg Config) string {
	if cfg.Storage.SQLitePath != "" {
		return cfg.Storage.SQLitePath
	}
	return DefaultSQLitePath()
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
