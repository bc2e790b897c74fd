package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/okian/dailyboss/internal/adapters/history"
	"github.com/okian/dailyboss/internal/adapters/lock"
	"github.com/okian/dailyboss/internal/adapters/report"
	app "github.com/okian/dailyboss/internal/app"
	"github.com/okian/dailyboss/internal/config"
	"github.com/okian/dailyboss/internal/domain/catalog"
	"github.com/okian/dailyboss/pkg/logger"
	"github.com/okian/dailyboss/pkg/metrics"
)

func main() {
	// Initialize logging; logs go to stderr so stdout carries only the result.
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Load configuration (defaults -> optional file -> env)
	pause := true
	cfg, err := config.Load(ctx)
	if err == nil {
		pause = cfg.PauseOnExit
		err = run(ctx, cfg, os.Stdout)
	}
	if err != nil {
		logger.Get().Error(ctx, "daily boss run failed", logger.Error(err))
	}

	// The console reaches the prompt even after a failure.
	if pause {
		report.Pause(os.Stdin, os.Stderr)
	}
	_ = logger.Sync()
	stop()

	if err != nil {
		os.Exit(1)
	}
}

// run draws or replays today's bosses and writes the result to out.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if lerr := logger.SetLevelString(cfg.LogLevel); lerr != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(lerr))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsFile != "" {
		defer func() {
			if werr := metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
				log.Warn(ctx, "failed to write metrics textfile", logger.String("path", cfg.MetricsFile), logger.Error(werr))
			}
		}()
	}

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := history.Open(history.Options{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.DBDSN,
	})
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	if err := store.Initialize(ctx); err != nil {
		return err
	}

	opts := []app.Option{
		app.WithLogger(logger.Named("app")),
		app.WithQuota(cfg.TotalResin, cfg.BossResinCost),
		app.WithMaxRepeats(cfg.MaxRepeats),
		app.WithWindowDays(cfg.WindowDays),
		app.WithRetentionDays(cfg.RetentionDays),
		app.WithSeed(cfg.Seed),
	}
	if locker, ok := lockerFor(cfg); ok {
		opts = append(opts, app.WithLocker(locker))
	}

	svc, err := app.New(cat, store, opts...)
	if err != nil {
		return err
	}

	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	return report.Render(out, cfg.OutputFormat, res)
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(ctx, cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	logger.Get().Info(ctx, "loaded catalog file",
		logger.String("path", cfg.CatalogFile),
		logger.Int("items", cat.Len()),
	)
	return cat, nil
}

// lockerFor guards the sqlite file. Postgres and memory stores run unlocked.
func lockerFor(cfg *config.Config) (app.Locker, bool) {
	switch strings.ToLower(cfg.DBDriver) {
	case "", history.DriverSQLite:
		return lock.FileLocker{Path: lock.PathFor(cfg.DBPath), Timeout: cfg.LockTimeout()}, true
	default:
		return nil, false
	}
}
