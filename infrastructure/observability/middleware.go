package observability

import (
	"context"
	"time"

	"github.com/felixgeelhaar/checkwise/domain/cache"
	"github.com/felixgeelhaar/checkwise/domain/middleware"
	"github.com/felixgeelhaar/checkwise/domain/telemetry"
)

// TracingMiddleware creates middleware that traces parameter operations.
func TracingMiddleware(tracer telemetry.Tracer) middleware.Middleware {
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
			ctx, span := tracer.StartSpan(ctx, "params."+op.Action,
				telemetry.WithAttributes(
					telemetry.String("params.action", op.Action),
					telemetry.String("params.service", op.Service),
				),
				telemetry.WithSpanKind(telemetry.SpanKindInternal),
			)
			defer span.End()

			if op.Host != "" {
				span.SetAttributes(telemetry.String("params.host", op.Host))
			}

			out, err := next(ctx, op)

			// The handler name is resolved during dispatch, so it is only
			// reliable after the core handler ran.
			if op.HandlerName != "" {
				span.SetAttributes(telemetry.String("params.handler", op.HandlerName))
			}

			if err != nil {
				span.RecordError(err)
				span.SetStatus(telemetry.StatusCodeError, err.Error())
				return out, err
			}

			span.SetStatus(telemetry.StatusCodeOK, "")
			if out != nil {
				if out.Result != nil {
					span.SetAttributes(
						telemetry.Bool("params.valid", out.Result.IsValid()),
						telemetry.Int("params.errors", len(out.Result.Errors())),
						telemetry.Int("params.warnings", len(out.Result.Warnings())),
					)
				}
				if out.Suggestions != nil {
					span.SetAttributes(telemetry.Int("params.suggestions", len(out.Suggestions)))
				}
				if out.RuleID != "" {
					span.SetAttributes(telemetry.String("params.rule_id", out.RuleID))
				}
			}

			return out, nil
		}
	}
}

// MetricsMiddleware creates middleware that records operation metrics.
func MetricsMiddleware(meter telemetry.Meter) middleware.Middleware {
	operationCounter := meter.Counter("checkwise.operations_total",
		telemetry.WithDescription("Total number of parameter operations"),
		telemetry.WithUnit("{operation}"),
	)

	operationDuration := meter.Histogram("checkwise.operation.duration_seconds",
		telemetry.WithDescription("Duration of parameter operations"),
		telemetry.WithUnit("s"),
	)

	errorCounter := meter.Counter("checkwise.operation.errors_total",
		telemetry.WithDescription("Total number of failed parameter operations"),
		telemetry.WithUnit("{error}"),
	)

	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
			start := time.Now()

			out, err := next(ctx, op)

			duration := time.Since(start).Seconds()
			attrs := []telemetry.Attribute{
				telemetry.String("action", op.Action),
				telemetry.String("handler", op.HandlerName),
			}

			status := "success"
			if err != nil {
				status = "error"
				errorCounter.Add(ctx, 1, attrs...)
			} else if out != nil && out.Result != nil && !out.Result.IsValid() {
				status = "invalid"
			}

			attrs = append(attrs, telemetry.String("status", status))
			operationCounter.Add(ctx, 1, attrs...)
			operationDuration.Record(ctx, duration, attrs...)

			return out, err
		}
	}
}

// CombinedMiddleware creates middleware that combines tracing and metrics.
func CombinedMiddleware(tracer telemetry.Tracer, meter telemetry.Meter) middleware.Middleware {
	tracingMw := TracingMiddleware(tracer)
	metricsMw := MetricsMiddleware(meter)

	return func(next middleware.Handler) middleware.Handler {
		// Chain: tracing wraps metrics wraps handler
		return tracingMw(metricsMw(next))
	}
}

// ParameterMetrics provides pre-built metrics for parameter engine operations.
type ParameterMetrics struct {
	// ValidationsTotal counts completed validations.
	ValidationsTotal telemetry.Counter

	// ProblemsFound counts diagnostics reported by validations.
	ProblemsFound telemetry.Counter

	// DefaultsGenerated counts generated default parameter sets.
	DefaultsGenerated telemetry.Counter

	// SuggestionsMade counts generated suggestions.
	SuggestionsMade telemetry.Counter

	// RulesApplied counts parameters persisted as rules.
	RulesApplied telemetry.Counter

	// CacheHits tracks cumulative rule cache hits.
	CacheHits telemetry.Gauge

	// CacheMisses tracks cumulative rule cache misses.
	CacheMisses telemetry.Gauge

	// HandlersRegistered tracks the number of registered handlers.
	HandlersRegistered telemetry.Gauge
}

// NewParameterMetrics creates parameter engine metrics.
func NewParameterMetrics(meter telemetry.Meter) *ParameterMetrics {
	return &ParameterMetrics{
		ValidationsTotal: meter.Counter("checkwise.validations_total",
			telemetry.WithDescription("Total number of parameter validations"),
			telemetry.WithUnit("{validation}"),
		),
		ProblemsFound: meter.Counter("checkwise.problems_found_total",
			telemetry.WithDescription("Total number of diagnostics reported by validations"),
			telemetry.WithUnit("{problem}"),
		),
		DefaultsGenerated: meter.Counter("checkwise.defaults_generated_total",
			telemetry.WithDescription("Total number of generated default parameter sets"),
			telemetry.WithUnit("{result}"),
		),
		SuggestionsMade: meter.Counter("checkwise.suggestions_total",
			telemetry.WithDescription("Total number of generated parameter suggestions"),
			telemetry.WithUnit("{suggestion}"),
		),
		RulesApplied: meter.Counter("checkwise.rules_applied_total",
			telemetry.WithDescription("Total number of parameter sets persisted as rules"),
			telemetry.WithUnit("{rule}"),
		),
		CacheHits: meter.Gauge("checkwise.cache.hits",
			telemetry.WithDescription("Cumulative rule cache hits"),
			telemetry.WithUnit("{hit}"),
		),
		CacheMisses: meter.Gauge("checkwise.cache.misses",
			telemetry.WithDescription("Cumulative rule cache misses"),
			telemetry.WithUnit("{miss}"),
		),
		HandlersRegistered: meter.Gauge("checkwise.handlers_registered",
			telemetry.WithDescription("Number of registered parameter handlers"),
			telemetry.WithUnit("{handler}"),
		),
	}
}

// RecordValidation records a completed validation and its findings.
func (m *ParameterMetrics) RecordValidation(ctx context.Context, handlerName string, errorCount, warningCount int) {
	m.ValidationsTotal.Add(ctx, 1,
		telemetry.String("handler", handlerName),
		telemetry.Bool("valid", errorCount == 0),
	)
	if errorCount > 0 {
		m.ProblemsFound.Add(ctx, int64(errorCount),
			telemetry.String("handler", handlerName),
			telemetry.String("severity", "error"),
		)
	}
	if warningCount > 0 {
		m.ProblemsFound.Add(ctx, int64(warningCount),
			telemetry.String("handler", handlerName),
			telemetry.String("severity", "warning"),
		)
	}
}

// RecordDefaults records a generated default parameter set.
func (m *ParameterMetrics) RecordDefaults(ctx context.Context, handlerName string) {
	m.DefaultsGenerated.Add(ctx, 1, telemetry.String("handler", handlerName))
}

// RecordSuggestions records generated suggestions.
func (m *ParameterMetrics) RecordSuggestions(ctx context.Context, handlerName string, count int) {
	if count <= 0 {
		return
	}
	m.SuggestionsMade.Add(ctx, int64(count), telemetry.String("handler", handlerName))
}

// RecordApply records a persisted rule.
func (m *ParameterMetrics) RecordApply(ctx context.Context, ruleset string) {
	m.RulesApplied.Add(ctx, 1, telemetry.String("ruleset", ruleset))
}

// RecordCacheStats records a snapshot of rule cache statistics.
func (m *ParameterMetrics) RecordCacheStats(ctx context.Context, stats cache.Stats) {
	m.CacheHits.Record(ctx, float64(stats.Hits))
	m.CacheMisses.Record(ctx, float64(stats.Misses))
}

// RecordHandlerCount records the number of registered handlers.
func (m *ParameterMetrics) RecordHandlerCount(ctx context.Context, n int) {
	m.HandlersRegistered.Record(ctx, float64(n))
}
