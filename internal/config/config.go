// Package config defines process configuration and its loading.
//
// Conventions:
// - New returns a Config holding every default.
// - Load layers defaults, an optional YAML file and DAILYBOSS_* env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"time"

	"github.com/okian/dailyboss/internal/adapters/report"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBDriver selects the history backend: sqlite, postgres or memory.
	DBDriver string `koanf:"db_driver"`

	// DBPath is the sqlite history file.
	DBPath string `koanf:"db_path"`

	// DBDSN is the postgres connection string.
	DBDSN string `koanf:"db_dsn"`

	// TotalResin and BossResinCost derive the daily quota.
	TotalResin    int `koanf:"total_resin"`
	BossResinCost int `koanf:"boss_resin_cost"`

	// MaxRepeats caps draws of one boss inside the rolling window.
	MaxRepeats int `koanf:"max_repeats"`

	// WindowDays is the rolling window length for the repeat cap.
	WindowDays int `koanf:"window_days"`

	// RetentionDays bounds how long history rows are kept.
	RetentionDays int `koanf:"retention_days"`

	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `koanf:"seed"`

	// CatalogFile replaces the built-in catalog with a YAML file.
	CatalogFile string `koanf:"catalog_file"`

	// OutputFormat is one of the report formats: text or json.
	OutputFormat string `koanf:"output_format"`

	// PauseOnExit waits for Enter before the process exits.
	PauseOnExit bool `koanf:"pause_on_exit"`

	// MetricsFile, when set, receives a Prometheus textfile dump.
	MetricsFile string `koanf:"metrics_file"`

	// LockTimeoutMS bounds the wait for a concurrent run to finish.
	LockTimeoutMS int `koanf:"lock_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		DBDriver:      "sqlite",
		DBPath:        "genshin_boss_history.db",
		TotalResin:    200,
		BossResinCost: 40,
		MaxRepeats:    3,
		WindowDays:    7,
		RetentionDays: 7,
		OutputFormat:  report.FormatText,
		PauseOnExit:   true,
		LockTimeoutMS: 5000,
	}
}

// LockTimeout returns LockTimeoutMS as a duration.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMS) * time.Millisecond
}
