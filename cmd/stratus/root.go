package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	cfgPath  string
	debugLog bool

	rootCmd = &cobra.Command{
		Use:   "stratus",
		Short: "Multi-Cloud Inventory Collector",
		Long: `Stratus - Multi-Cloud Inventory Collector

Stratus polls cloud provider APIs, normalizes every resource into one
canonical schema, and reconciles the results into a local inventory.
Every field-level change is recorded in an append-only audit log.

Supported providers: AWS (Route53, VPC, EC2, ELB), Cloudflare (DNS),
Alibaba Cloud (Alidns, VPC, ECS, SLB).`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the root command
func init() {
	rootCmd.SetVersionTemplate(`Stratus {{.Version}} - Multi-Cloud Inventory Collector
`)
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "stratus.yaml", "Path to accounts config file")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")

	cobra.OnInitialize(func() {
		if debugLog {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	})
}
