package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jimmwu/stratus/config"
	"github.com/jimmwu/stratus/store"
)

var collectStorageDir string

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection pass over all configured accounts",
	Long: `Poll every configured cloud account once, normalize the raw records
into the canonical schema, and reconcile them into the local inventory.

Exits non-zero when any record failed to persist or came back with an
unresolved identity, so cron jobs and CI surface partial batches.`,
	Example: `  stratus collect                          # Use ./stratus.yaml
  stratus collect --config accounts.yaml   # Explicit config
  stratus collect --storage-dir /var/lib/stratus`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectStorageDir, "storage-dir", "", "Storage directory (overrides config)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	st, err := store.Open(storageDir(cfg, collectStorageDir))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := collectOnce(ctx, cfg, st)
	if err != nil {
		return err
	}

	fmt.Printf("processed %d items: %d created, %d updated, %d unchanged\n",
		stats.Items, stats.Created, stats.Updated, stats.Unchanged)
	if stats.Relationships > 0 {
		fmt.Printf("derived %d relationships\n", stats.Relationships)
	}
	if stats.Failed > 0 || stats.Unresolved > 0 || stats.AccountsFailed > 0 {
		return fmt.Errorf("partial pass: %d records failed, %d unresolved, %d accounts failed",
			stats.Failed, stats.Unresolved, stats.AccountsFailed)
	}
	return nil
}
