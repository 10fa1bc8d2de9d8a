package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jimmwu/stratus/config"
	"github.com/jimmwu/stratus/resolver"
	"github.com/jimmwu/stratus/store"
)

var (
	resolveServer     string
	resolveStorageDir string
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve stored DNS records and persist the answers",
	Long: `Run one resolution pass: query every stored A, AAAA, and CNAME record
against a recursive DNS server and store the answers alongside the
inventory. Useful for spotting records whose live answers drifted from
the provider configuration.`,
	Example: `  stratus resolve                       # Query 8.8.8.8
  stratus resolve --server 1.1.1.1:53   # Custom resolver`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveServer, "server", "8.8.8.8:53", "Recursive DNS server (host:port)")
	resolveCmd.Flags().StringVar(&resolveStorageDir, "storage-dir", "", "Storage directory (overrides config)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	dir := resolveStorageDir
	if dir == "" {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		dir = storageDir(cfg, "")
	}

	st, err := store.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := resolver.New(st, resolveServer).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("queried %d records: %d stored, %d failed, %d skipped\n",
		summary.Queried, summary.Stored, summary.Failed, summary.Skipped)
	if summary.Failed > 0 {
		return fmt.Errorf("%d resolutions failed", summary.Failed)
	}
	return nil
}
