package main

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/spf13/cobra"

	"github.com/jimmwu/stratus/config"
	"github.com/jimmwu/stratus/store"
	"github.com/jimmwu/stratus/telemetry"
)

var (
	daemonInterval   time.Duration
	daemonStorageDir string
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run continuous collection on an interval",
	Long: `Run Stratus in daemon mode, collecting from every configured account
at a fixed interval.

A failed pass is logged and retried at the next tick; only a signal
stops the daemon. Shutdown is graceful on SIGTERM/SIGINT.`,
	Example: `  stratus daemon                 # Collect every 15 minutes
  stratus daemon --interval 5m   # Custom interval`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().DurationVar(&daemonInterval, "interval", 15*time.Minute, "Collection interval")
	daemonCmd.Flags().StringVar(&daemonStorageDir, "storage-dir", "", "Storage directory (overrides config)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	st, err := store.Open(storageDir(cfg, daemonStorageDir))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	logger := telemetry.NewLogger("daemon")
	logger.Info().
		Dur("interval", daemonInterval).
		Int("accounts", len(cfg.Accounts)).
		Msg("daemon starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))
	g.Add(func() error {
		ticker := time.NewTicker(daemonInterval)
		defer ticker.Stop()

		for {
			stats, err := collectOnce(ctx, cfg, st)
			switch {
			case errors.Is(err, context.Canceled):
				return nil
			case err != nil:
				logger.Error().Err(err).Msg("collection pass failed")
			default:
				logger.Info().
					Int("items", stats.Items).
					Int("created", stats.Created).
					Int("updated", stats.Updated).
					Int("unchanged", stats.Unchanged).
					Int("unresolved", stats.Unresolved).
					Int("failed", stats.Failed).
					Int("accounts_failed", stats.AccountsFailed).
					Msg("collection pass complete")
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return nil
			}
		}
	}, func(error) {
		cancel()
	})

	err = g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		logger.Info().Str("signal", sigErr.Signal.String()).Msg("shutting down")
		return nil
	}
	return err
}
