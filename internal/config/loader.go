package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/dailyboss/internal/adapters/report"
)

const (
	envPrefix  = "DAILYBOSS_"
	envFileVar = "DAILYBOSS_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if DAILYBOSS_CONFIG is set
//  3. env (prefix DAILYBOSS_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// DAILYBOSS_TOTAL_RESIN -> total_resin. Underscores are kept to match
	// the flat koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.BossResinCost <= 0:
		return fmt.Errorf("%w: boss_resin_cost must be positive, got %d", ErrInvalidConfig, c.BossResinCost)
	case c.TotalResin < 0:
		return fmt.Errorf("%w: total_resin must not be negative, got %d", ErrInvalidConfig, c.TotalResin)
	case c.MaxRepeats <= 0:
		return fmt.Errorf("%w: max_repeats must be positive, got %d", ErrInvalidConfig, c.MaxRepeats)
	case c.WindowDays < 0:
		return fmt.Errorf("%w: window_days must not be negative, got %d", ErrInvalidConfig, c.WindowDays)
	case c.RetentionDays < 0:
		return fmt.Errorf("%w: retention_days must not be negative, got %d", ErrInvalidConfig, c.RetentionDays)
	case c.LockTimeoutMS < 0:
		return fmt.Errorf("%w: lock_timeout_ms must not be negative, got %d", ErrInvalidConfig, c.LockTimeoutMS)
	}

	switch strings.ToLower(c.DBDriver) {
	case "sqlite", "memory":
	case "postgres", "pgx":
		if c.DBDSN == "" {
			return fmt.Errorf("%w: db_dsn is required for the postgres driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown db_driver %q", ErrInvalidConfig, c.DBDriver)
	}

	if !report.Supported(c.OutputFormat) {
		return fmt.Errorf("%w: unknown output_format %q", ErrInvalidConfig, c.OutputFormat)
	}
	return nil
}
