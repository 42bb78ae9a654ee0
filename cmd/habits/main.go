package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"habittracker/internal/repository"
	"habittracker/pkg/config"
	"habittracker/pkg/db"
	"habittracker/pkg/logger"
	"habittracker/pkg/metrics"
	"habittracker/pkg/trace"
)

// app holds the global flags and the per-invocation wiring.
type app struct {
	configDir string
	env       string
	dbPath    string

	now func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(&app{now: time.Now})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "habits",
		Short: "Track daily, weekly and monthly habits",
		Long: `habits keeps a local store of habits and the days they were completed,
and reports streaks across them.

Dates are given as YYYY-MM-DD.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "config", "directory holding base.yaml and environment overrides")
	root.PersistentFlags().StringVar(&a.env, "env", config.GetConfigEnv(), "configuration environment")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database DSN, overrides the configured one")

	root.AddCommand(
		newAddCmd(a),
		newGetCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newCheckCmd(a),
		newLogCmd(a),
		newListCmd(a),
		newStreakCmd(a),
		newSummaryCmd(a),
		newSeedCmd(a),
	)
	return root
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.env, a.configDir)
	if errors.Is(err, config.ErrNoBaseConfig) {
		cfg = config.Default()
		config.OverrideDBFromEnv(&cfg.DB)
		config.OverrideLogFromEnv(&cfg.Log)
		config.OverrideMetricsFromEnv(&cfg.Metrics)
	} else if err != nil {
		return nil, err
	}

	if a.dbPath != "" {
		cfg.DB.DSN = a.dbPath
	}
	return cfg, nil
}

// run wires config, logging and the store for one command and tears them
// down again once fn returns.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, store *repository.HabitStore, log *zap.Logger) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := trace.WithContext(cmd.Context(), trace.GenerateTraceID())
	log = log.With(zap.String("command", cmd.Name()))

	if cfg.Metrics.Textfile != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				log.Warn("Failed to write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
			}
		}()
	}

	conn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		return err
	}

	store := repository.NewHabitStore(conn, log, repository.WithClock(a.now))
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("prepare schema: %w", err)
	}

	return fn(ctx, store, log)
}
