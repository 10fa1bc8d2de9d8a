// Package pipeline drives normalize → identify → extract → assemble over a
// batch of raw records for one provider/resource-type/account, optionally
// pushing each produced item into a caller-supplied sink.
package pipeline

import (
	"context"
	"time"

	"github.com/jimmwu/stratus/extract"
	"github.com/jimmwu/stratus/identity"
	"github.com/jimmwu/stratus/normalize"
	"github.com/jimmwu/stratus/telemetry"
	"github.com/jimmwu/stratus/types"
)

// Sink receives each produced item, typically to reconcile it against the
// store. A sink error fails that one item, never the batch.
type Sink func(ctx context.Context, item *types.Item) error

// Failure records one item that could not be sunk.
type Failure struct {
	Index      int
	ResourceID string
	Err        error
}

// Processor assembles canonical items from raw provider records.
type Processor struct {
	registry         *normalize.Registry
	logger           *telemetry.Logger
	metrics          *telemetry.PipelineMetrics
	stripProviderRaw bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the structured logger.
func WithLogger(l *telemetry.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithMetrics sets pipeline metrics.
func WithMetrics(m *telemetry.PipelineMetrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// StripProviderRaw drops the original raw record before persistence. Storage
// size versus debuggability; default is to retain.
func StripProviderRaw() Option {
	return func(p *Processor) { p.stripProviderRaw = true }
}

// New creates a processor with the full normalizer dispatch table.
func New(opts ...Option) *Processor {
	p := &Processor{
		registry: normalize.NewRegistry(),
		logger:   telemetry.NewLogger("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the batch. Output order matches input order and every record
// yields exactly one item: records whose identity cannot be established come
// back flagged unresolved instead of being dropped, and a sink failure is
// accumulated instead of aborting the batch. Cancellation is honored at
// record granularity; previously produced items are returned alongside the
// context error.
func (p *Processor) Process(ctx context.Context, provider, resourceType string, records []map[string]any, cctx types.CollectContext, sink Sink) ([]types.Item, []Failure, error) {
	start := time.Now()
	p.logger.LogBatch(ctx, provider, resourceType, cctx.AccountID, len(records))

	items := make([]types.Item, 0, len(records))
	var failures []Failure

	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			return items, failures, err
		}

		item := p.processRecord(ctx, provider, resourceType, raw, cctx)

		if item.Unresolved {
			p.logger.LogUnresolved(ctx, provider, cctx.AccountID, resourceType, item.UnresolvedReason)
			if p.metrics != nil {
				p.metrics.RecordUnresolved(ctx, provider, resourceType)
			}
		} else if sink != nil {
			if err := sink(ctx, &item); err != nil {
				p.logger.LogRecordFailure(ctx, provider, cctx.AccountID, resourceType, item.ResourceID, err)
				failures = append(failures, Failure{Index: i, ResourceID: item.ResourceID, Err: err})
				if p.metrics != nil {
					p.metrics.RecordFailed(ctx, provider, resourceType)
				}
			}
		}

		if p.metrics != nil {
			p.metrics.RecordProcessed(ctx, provider, resourceType)
		}
		items = append(items, item)
	}

	if p.metrics != nil {
		p.metrics.RecordBatchDuration(ctx, time.Since(start).Seconds(), provider, resourceType)
	}
	return items, failures, nil
}

// processRecord normalizes one raw record and assembles the item. Never
// fails: identity gaps flag the item unresolved.
func (p *Processor) processRecord(_ context.Context, provider, resourceType string, raw map[string]any, cctx types.CollectContext) types.Item {
	canonical := p.registry.Normalize(provider, resourceType, raw, cctx)
	if p.stripProviderRaw {
		canonical.ProviderRaw = nil
	}

	canonical.ResourceID = identity.Synthesize(resourceType, canonical)

	region := canonical.Region
	if region == "" {
		region = cctx.Region
	}

	item := types.Item{
		Provider:         canonical.Provider,
		AccountID:        cctx.AccountID,
		ResourceType:     canonical.ResourceType,
		ResourceID:       canonical.ResourceID,
		Region:           region,
		Status:           canonical.Status,
		Name:             canonical.ResourceName,
		Zone:             canonical.ExtraString("zone_id"),
		DomainName:       canonical.ExtraString("zone_name"),
		VPCID:            canonical.ExtraString("vpc_id"),
		IPAddresses:      extract.IPAddresses(canonical, resourceType),
		Tags:             canonical.Tags,
		ResourceMetadata: canonical.Meta(),
	}

	if item.ResourceID == "" {
		item.Unresolved = true
		item.UnresolvedReason = "no native id and no synthesis rule for resource type"
	}
	return item
}
