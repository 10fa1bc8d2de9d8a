package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELHook adds trace and span IDs to every log entry
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a new logger with OTEL hooks
func NewLogger(component string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("component", component).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger with context (for trace propagation)
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for pipeline operations

// LogBatch logs the start of one provider/type/account batch.
func (l *Logger) LogBatch(ctx context.Context, provider, resourceType, accountID string, size int) {
	l.WithContext(ctx).Info().
		Str("provider", provider).
		Str("resource_type", resourceType).
		Str("account_id", accountID).
		Int("batch_size", size).
		Msg("processing batch")
}

// LogRecordFailure logs one failed record with enough identity to retry it
// manually.
func (l *Logger) LogRecordFailure(ctx context.Context, provider, accountID, resourceType, resourceID string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("provider", provider).
		Str("account_id", accountID).
		Str("resource_type", resourceType).
		Str("resource_id", resourceID).
		Msg("record failed")
}

// LogUnresolved logs a record whose identity could not be established.
func (l *Logger) LogUnresolved(ctx context.Context, provider, accountID, resourceType, reason string) {
	l.WithContext(ctx).Warn().
		Str("provider", provider).
		Str("account_id", accountID).
		Str("resource_type", resourceType).
		Str("reason", reason).
		Msg("record identity unresolved")
}

// LogStoreError logs a persistence failure.
func (l *Logger) LogStoreError(ctx context.Context, operation string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("operation", operation).
		Msg("store operation failed")
}
