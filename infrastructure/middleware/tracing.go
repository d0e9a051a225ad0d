package middleware

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/checkwise/domain/middleware"
)

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	// TracerName is the name of the tracer to use.
	TracerName string

	// Tracer is a custom tracer to use. If nil, a new tracer is created.
	Tracer trace.Tracer

	// RecordParams determines if caller parameters should be recorded as span attributes.
	RecordParams bool

	// RecordMessages determines if result diagnostics should be recorded as span attributes.
	RecordMessages bool

	// MaxAttributeSize limits the size of recorded attributes.
	MaxAttributeSize int

	// SpanNamePrefix is prepended to span names.
	SpanNamePrefix string

	// AdditionalAttributes are added to all spans.
	AdditionalAttributes []attribute.KeyValue
}

// DefaultTracingConfig returns a sensible default configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName:       "checkwise",
		RecordParams:     true,
		RecordMessages:   false, // Diagnostics can be large
		MaxAttributeSize: 1024,
		SpanNamePrefix:   "params.",
	}
}

// Tracing returns middleware that creates OpenTelemetry spans for parameter operations.
func Tracing(cfg TracingConfig) middleware.Middleware {
	// Get or create tracer
	tracer := cfg.Tracer
	if tracer == nil {
		tracerName := cfg.TracerName
		if tracerName == "" {
			tracerName = "checkwise"
		}
		tracer = otel.Tracer(tracerName)
	}

	maxSize := cfg.MaxAttributeSize
	if maxSize <= 0 {
		maxSize = 1024
	}

	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
			// Build span name
			spanName := op.Action
			if cfg.SpanNamePrefix != "" {
				spanName = cfg.SpanNamePrefix + spanName
			}

			// Start span
			ctx, span := tracer.Start(ctx, spanName,
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			// Set base attributes
			attrs := []attribute.KeyValue{
				attribute.String("operation.action", op.Action),
				attribute.String("service.description", truncate(op.Service, maxSize)),
			}

			if op.Host != "" {
				attrs = append(attrs, attribute.String("host.name", op.Host))
			}

			// Record parameters if enabled
			if cfg.RecordParams && len(op.Params) > 0 {
				if data, err := json.Marshal(op.Params); err == nil {
					attrs = append(attrs, attribute.String("operation.params", truncate(string(data), maxSize)))
				}
			}

			// Add additional attributes
			attrs = append(attrs, cfg.AdditionalAttributes...)

			span.SetAttributes(attrs...)

			// Run the operation
			out, err := next(ctx, op)

			// The handler name resolves during dispatch
			if op.HandlerName != "" {
				span.SetAttributes(attribute.String("handler.name", op.HandlerName))
			}

			// Record result
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return out, err
			}

			span.SetStatus(codes.Ok, "")

			if out != nil {
				if out.Result != nil {
					span.SetAttributes(
						attribute.Bool("result.valid", out.Result.IsValid()),
						attribute.Int("result.errors", len(out.Result.Errors())),
						attribute.Int("result.warnings", len(out.Result.Warnings())),
					)

					// Record diagnostics if enabled
					if cfg.RecordMessages && len(out.Result.Messages) > 0 {
						if data, merr := json.Marshal(out.Result.Messages); merr == nil {
							span.SetAttributes(attribute.String("result.messages", truncate(string(data), maxSize)))
						}
					}
				}

				if out.Suggestions != nil {
					span.SetAttributes(attribute.Int("result.suggestions", len(out.Suggestions)))
				}

				if out.RuleID != "" {
					span.SetAttributes(attribute.String("rule.id", out.RuleID))
				}
			}

			return out, err
		}
	}
}

// TracingOption configures the tracing middleware.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracer sets a custom tracer.
func WithTracer(tracer trace.Tracer) TracingOption {
	return func(c *TracingConfig) {
		c.Tracer = tracer
	}
}

// WithParamRecording enables or disables parameter recording.
func WithParamRecording(enabled bool) TracingOption {
	return func(c *TracingConfig) {
		c.RecordParams = enabled
	}
}

// WithMessageRecording enables or disables diagnostic recording.
func WithMessageRecording(enabled bool) TracingOption {
	return func(c *TracingConfig) {
		c.RecordMessages = enabled
	}
}

// WithMaxAttributeSize sets the maximum attribute size.
func WithMaxAttributeSize(size int) TracingOption {
	return func(c *TracingConfig) {
		c.MaxAttributeSize = size
	}
}

// WithSpanNamePrefix sets the span name prefix.
func WithSpanNamePrefix(prefix string) TracingOption {
	return func(c *TracingConfig) {
		c.SpanNamePrefix = prefix
	}
}

// WithAdditionalAttributes adds extra attributes to all spans.
func WithAdditionalAttributes(attrs ...attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AdditionalAttributes = append(c.AdditionalAttributes, attrs...)
	}
}

// NewTracing creates tracing middleware with the given options.
func NewTracing(opts ...TracingOption) middleware.Middleware {
	cfg := DefaultTracingConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return Tracing(cfg)
}

// ContextWithSpan creates a context with a span for an operation phase.
// Useful for creating child spans outside of middleware.
func ContextWithSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	tracer := otel.Tracer("checkwise")
	return tracer.Start(ctx, name)
}

// SpanFromContext returns the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent adds an event to the current span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// AddSpanAttributes adds attributes to the current span.
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
}

// RecordSpanError records an error on the current span.
func RecordSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// truncate truncates a string to the specified length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "...[truncated]"
}

// OperationSpanAttributes returns standard attributes for an operation span.
func OperationSpanAttributes(op *middleware.OperationContext) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("operation.action", op.Action),
		attribute.String("service.description", op.Service),
	}
	if op.Host != "" {
		attrs = append(attrs, attribute.String("host.name", op.Host))
	}
	if op.HandlerName != "" {
		attrs = append(attrs, attribute.String("handler.name", op.HandlerName))
	}
	return attrs
}

// StartOperationSpan creates a new span for a parameter operation.
func StartOperationSpan(ctx context.Context, op *middleware.OperationContext) (context.Context, trace.Span) {
	tracer := otel.Tracer("checkwise")
	spanName := "params." + op.Action

	ctx, span := tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(OperationSpanAttributes(op)...),
	)

	return ctx, span
}
