package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimmwu/stratus/config"
	"github.com/jimmwu/stratus/pipeline"
	"github.com/jimmwu/stratus/providers/registry"
	"github.com/jimmwu/stratus/reconcile"
	"github.com/jimmwu/stratus/store"
	"github.com/jimmwu/stratus/telemetry"
	"github.com/jimmwu/stratus/types"
)

// collectStats summarizes one collection pass.
type collectStats struct {
	Items          int
	Created        int
	Updated        int
	Unchanged      int
	Unresolved     int
	Failed         int
	AccountsFailed int
	Relationships  int
}

// collectOnce polls every configured account, pushes all batches through the
// pipeline with a reconciling sink, and derives DNS target relationships per
// account. Account and record failures are isolated: one broken account or
// record never stops the rest of the pass. Only cancellation aborts.
func collectOnce(ctx context.Context, cfg *config.Config, st store.Store) (collectStats, error) {
	logger := telemetry.NewLogger("collect")
	metrics, err := telemetry.NewPipelineMetrics()
	if err != nil {
		return collectStats{}, fmt.Errorf("failed to create metrics: %w", err)
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger), pipeline.WithMetrics(metrics)}
	if !cfg.RetainProviderRaw() {
		opts = append(opts, pipeline.StripProviderRaw())
	}
	processor := pipeline.New(opts...)
	reconciler := reconcile.New(st)

	var stats collectStats
	sink := func(ctx context.Context, item *types.Item) error {
		outcome, err := reconciler.Reconcile(ctx, item)
		if err != nil {
			return err
		}
		metrics.RecordOutcome(ctx, string(outcome), item.Provider)
		switch outcome {
		case reconcile.Created:
			stats.Created++
		case reconcile.Updated:
			stats.Updated++
		case reconcile.Unchanged:
			stats.Unchanged++
		}
		return nil
	}

	for _, acct := range cfg.Accounts {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		collector, err := registry.ForAccount(ctx, acct)
		if err != nil {
			logger.Error().Err(err).Str("account", acct.Name).Msg("collector setup failed")
			stats.AccountsFailed++
			continue
		}

		batches, err := collector.Collect(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return stats, err
			}
			logger.Error().Err(err).Str("account", acct.Name).Msg("collection failed")
			stats.AccountsFailed++
			continue
		}

		var accountItems []types.Item
		for _, batch := range batches {
			items, failures, err := processor.Process(ctx, batch.Provider, batch.ResourceType, batch.Records, batch.Context, sink)
			if err != nil {
				return stats, err
			}
			stats.Items += len(items)
			stats.Failed += len(failures)
			for _, item := range items {
				if item.Unresolved {
					stats.Unresolved++
				}
			}
			accountItems = append(accountItems, items...)
		}

		for _, edge := range pipeline.LinkDNSTargets(accountItems) {
			if err := st.AppendRelationship(&edge); err != nil {
				logger.LogStoreError(ctx, "append_relationship", err)
				stats.Failed++
				continue
			}
			stats.Relationships++
		}
	}

	return stats, nil
}

// storageDir resolves the storage directory: flag wins over config, config
// over the working directory.
func storageDir(cfg *config.Config, override string) string {
	if override != "" {
		return override
	}
	if cfg.StorageDir != "" {
		return cfg.StorageDir
	}
	return "."
}
