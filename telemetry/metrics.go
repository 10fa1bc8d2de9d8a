package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds operational metrics using OTEL semantic conventions
type PipelineMetrics struct {
	recordsProcessed metric.Int64Counter
	recordsFailed    metric.Int64Counter
	unresolved       metric.Int64Counter
	outcomes         metric.Int64Counter
	batchDuration    metric.Float64Histogram
}

// NewPipelineMetrics creates pipeline metrics following OTEL semantic conventions
func NewPipelineMetrics() (*PipelineMetrics, error) {
	meter := otel.Meter("stratus.pipeline")

	recordsProcessed, err := meter.Int64Counter(
		"stratus.pipeline.records",
		metric.WithDescription("Number of raw records processed"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	recordsFailed, err := meter.Int64Counter(
		"stratus.pipeline.records.failed",
		metric.WithDescription("Number of records whose sink invocation failed"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	unresolved, err := meter.Int64Counter(
		"stratus.pipeline.records.unresolved",
		metric.WithDescription("Number of records with no resolvable identity"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	outcomes, err := meter.Int64Counter(
		"stratus.reconcile.outcomes",
		metric.WithDescription("Reconciliation outcomes by kind"),
		metric.WithUnit("{outcome}"),
	)
	if err != nil {
		return nil, err
	}

	batchDuration, err := meter.Float64Histogram(
		"stratus.pipeline.batch.duration",
		metric.WithDescription("Duration of one batch run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		recordsProcessed: recordsProcessed,
		recordsFailed:    recordsFailed,
		unresolved:       unresolved,
		outcomes:         outcomes,
		batchDuration:    batchDuration,
	}, nil
}

// RecordProcessed counts one processed record.
func (m *PipelineMetrics) RecordProcessed(ctx context.Context, provider, resourceType string) {
	m.recordsProcessed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("cloud.provider", provider),
			attribute.String("resource.type", resourceType),
		),
	)
}

// RecordFailed counts one failed sink invocation.
func (m *PipelineMetrics) RecordFailed(ctx context.Context, provider, resourceType string) {
	m.recordsFailed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("cloud.provider", provider),
			attribute.String("resource.type", resourceType),
		),
	)
}

// RecordUnresolved counts one identity-unresolved record.
func (m *PipelineMetrics) RecordUnresolved(ctx context.Context, provider, resourceType string) {
	m.unresolved.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("cloud.provider", provider),
			attribute.String("resource.type", resourceType),
		),
	)
}

// RecordOutcome counts one reconciliation outcome.
func (m *PipelineMetrics) RecordOutcome(ctx context.Context, outcome, provider string) {
	m.outcomes.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("outcome", outcome),
			attribute.String("cloud.provider", provider),
		),
	)
}

// RecordBatchDuration records how long one batch took.
func (m *PipelineMetrics) RecordBatchDuration(ctx context.Context, seconds float64, provider, resourceType string) {
	m.batchDuration.Record(ctx, seconds,
		metric.WithAttributes(
			attribute.String("cloud.provider", provider),
			attribute.String("resource.type", resourceType),
		),
	)
}
