package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jimmwu/stratus/config"
	"github.com/jimmwu/stratus/store"
)

var (
	diffsResourceID string
	diffsLimit      int
	diffsOutput     string
	diffsStorageDir string
)

// diffsCmd represents the diffs command
var diffsCmd = &cobra.Command{
	Use:   "diffs",
	Short: "Show recent resource changes from the audit log",
	Long: `List the most recent entries from the append-only change audit log,
newest first, optionally filtered by resource id.`,
	Example: `  stratus diffs                           # Last 20 changes
  stratus diffs --limit 100               # More history
  stratus diffs --resource-id i-0abc123   # One resource
  stratus diffs --output json             # Machine readable`,
	RunE: runDiffs,
}

func init() {
	rootCmd.AddCommand(diffsCmd)

	diffsCmd.Flags().StringVar(&diffsResourceID, "resource-id", "", "Filter by resource id")
	diffsCmd.Flags().IntVar(&diffsLimit, "limit", 20, "Maximum entries to show (0 = all)")
	diffsCmd.Flags().StringVarP(&diffsOutput, "output", "o", "table", "Output format: table, json")
	diffsCmd.Flags().StringVar(&diffsStorageDir, "storage-dir", "", "Storage directory (overrides config)")
}

func runDiffs(cmd *cobra.Command, args []string) error {
	if diffsOutput != "table" && diffsOutput != "json" {
		return fmt.Errorf("invalid output format: %s (must be table or json)", diffsOutput)
	}

	dir := diffsStorageDir
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

	entries, err := st.ListDiffs(diffsResourceID, diffsLimit)
	if err != nil {
		return err
	}

	if diffsOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("no changes recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHANGED AT\tPROVIDER\tTYPE\tRESOURCE\tFIELDS")
	for _, entry := range entries {
		fields := make([]string, 0, len(entry.ChangedFields))
		for field := range entry.ChangedFields {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			entry.ChangedAt.Format("2006-01-02 15:04:05"),
			entry.Provider,
			entry.ResourceType,
			entry.ResourceID,
			strings.Join(fields, ","),
		)
	}
	return w.Flush()
}
