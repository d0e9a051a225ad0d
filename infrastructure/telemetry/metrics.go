// Package telemetry provides observability infrastructure including
// OpenTelemetry metrics support for the checkwise engine.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	operations         metric.Int64Counter
	validationProblems metric.Int64Counter
	dispatchFallbacks  metric.Int64Counter
	rulesApplied       metric.Int64Counter
	cacheHits          metric.Int64Counter
	cacheMisses        metric.Int64Counter
	errors             metric.Int64Counter

	// Histograms
	operationDuration metric.Float64Histogram
	handlerDuration   metric.Float64Histogram
	storeDuration     metric.Float64Histogram

	// Gauges (using UpDownCounter for OpenTelemetry)
	activeOperations   metric.Int64UpDownCounter
	handlersRegistered metric.Int64UpDownCounter

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/checkwise").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// Attributes are default attributes to attach to all metrics.
	Attributes []attribute.KeyValue
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/checkwise",
		MeterVersion: "0.1.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config = DefaultMetricsConfig()
	}

	provider := otel.GetMeterProvider()
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{
		meter: meter,
	}

	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})

	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	// Counters
	mp.operations, err = mp.meter.Int64Counter(
		"checkwise.operations",
		metric.WithDescription("Number of parameter operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	mp.validationProblems, err = mp.meter.Int64Counter(
		"checkwise.validation.problems",
		metric.WithDescription("Number of validation problems found"),
		metric.WithUnit("{problem}"),
	)
	if err != nil {
		return err
	}

	mp.dispatchFallbacks, err = mp.meter.Int64Counter(
		"checkwise.dispatch.fallbacks",
		metric.WithDescription("Number of operations served by the fallback handler"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	mp.rulesApplied, err = mp.meter.Int64Counter(
		"checkwise.rules.applied",
		metric.WithDescription("Number of parameter rules persisted"),
		metric.WithUnit("{rule}"),
	)
	if err != nil {
		return err
	}

	mp.cacheHits, err = mp.meter.Int64Counter(
		"checkwise.cache.hits",
		metric.WithDescription("Number of cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	mp.cacheMisses, err = mp.meter.Int64Counter(
		"checkwise.cache.misses",
		metric.WithDescription("Number of cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return err
	}

	mp.errors, err = mp.meter.Int64Counter(
		"checkwise.errors",
		metric.WithDescription("Number of errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	// Histograms
	mp.operationDuration, err = mp.meter.Float64Histogram(
		"checkwise.operation.duration",
		metric.WithDescription("Duration of parameter operations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.handlerDuration, err = mp.meter.Float64Histogram(
		"checkwise.handler.duration",
		metric.WithDescription("Duration of handler callbacks"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.storeDuration, err = mp.meter.Float64Histogram(
		"checkwise.store.duration",
		metric.WithDescription("Duration of rule store roundtrips"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	// Gauges (UpDownCounters)
	mp.activeOperations, err = mp.meter.Int64UpDownCounter(
		"checkwise.operations.active",
		metric.WithDescription("Number of in-flight parameter operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	mp.handlersRegistered, err = mp.meter.Int64UpDownCounter(
		"checkwise.handlers.registered",
		metric.WithDescription("Number of registered parameter handlers"),
		metric.WithUnit("{handler}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordOperation records a completed parameter operation.
func (mp *MetricsProvider) RecordOperation(ctx context.Context, action string, handlerName string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("operation.action", action),
		attribute.String("handler.name", handlerName),
		attribute.Bool("success", success),
	}

	mp.operations.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.operationDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if !success {
		mp.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error.type", "operation"),
			attribute.String("operation.action", action),
		))
	}
}

// RecordValidationProblems records the errors and warnings a validation produced.
func (mp *MetricsProvider) RecordValidationProblems(ctx context.Context, handlerName string, errorCount, warningCount int) {
	if errorCount > 0 {
		mp.validationProblems.Add(ctx, int64(errorCount), metric.WithAttributes(
			attribute.String("handler.name", handlerName),
			attribute.String("severity", "error"),
		))
	}
	if warningCount > 0 {
		mp.validationProblems.Add(ctx, int64(warningCount), metric.WithAttributes(
			attribute.String("handler.name", handlerName),
			attribute.String("severity", "warning"),
		))
	}
}

// RecordDispatchFallback records an operation answered by the fallback handler.
func (mp *MetricsProvider) RecordDispatchFallback(ctx context.Context, action string) {
	attrs := []attribute.KeyValue{
		attribute.String("operation.action", action),
	}

	mp.dispatchFallbacks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRuleApplied records a persisted parameter rule.
func (mp *MetricsProvider) RecordRuleApplied(ctx context.Context, ruleset string, created bool) {
	attrs := []attribute.KeyValue{
		attribute.String("ruleset", ruleset),
		attribute.Bool("created", created),
	}

	mp.rulesApplied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCacheHit records a cache hit.
func (mp *MetricsProvider) RecordCacheHit(ctx context.Context, cacheName string) {
	attrs := []attribute.KeyValue{
		attribute.String("cache.name", cacheName),
	}

	mp.cacheHits.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCacheMiss records a cache miss.
func (mp *MetricsProvider) RecordCacheMiss(ctx context.Context, cacheName string) {
	attrs := []attribute.KeyValue{
		attribute.String("cache.name", cacheName),
	}

	mp.cacheMisses.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordError records an error.
func (mp *MetricsProvider) RecordError(ctx context.Context, errorType string, details map[string]string) {
	attrs := []attribute.KeyValue{
		attribute.String("error.type", errorType),
	}
	for k, v := range details {
		attrs = append(attrs, attribute.String(k, v))
	}

	mp.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordHandlerDuration records the duration of a handler callback.
func (mp *MetricsProvider) RecordHandlerDuration(ctx context.Context, duration time.Duration, handlerName string, callback string) {
	attrs := []attribute.KeyValue{
		attribute.String("handler.name", handlerName),
		attribute.String("handler.callback", callback),
	}

	mp.handlerDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordStoreDuration records the duration of a rule store roundtrip.
func (mp *MetricsProvider) RecordStoreDuration(ctx context.Context, duration time.Duration, operation string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("store.operation", operation),
		attribute.Bool("success", success),
	}

	mp.storeDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// IncrementActiveOperations increments the in-flight operations counter.
func (mp *MetricsProvider) IncrementActiveOperations(ctx context.Context) {
	mp.activeOperations.Add(ctx, 1)
}

// DecrementActiveOperations decrements the in-flight operations counter.
func (mp *MetricsProvider) DecrementActiveOperations(ctx context.Context) {
	mp.activeOperations.Add(ctx, -1)
}

// RecordHandlerRegistration records a handler joining or leaving the registry.
func (mp *MetricsProvider) RecordHandlerRegistration(ctx context.Context, handlerName string, registered bool) {
	attrs := []attribute.KeyValue{
		attribute.String("handler.name", handlerName),
	}

	if registered {
		mp.handlersRegistered.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		mp.handlersRegistered.Add(ctx, -1, metric.WithAttributes(attrs...))
	}
}

// NoopMetricsProvider is a no-op metrics provider for testing or when metrics are disabled.
type NoopMetricsProvider struct{}

// RecordOperation is a no-op.
func (n *NoopMetricsProvider) RecordOperation(ctx context.Context, action string, handlerName string, success bool, duration time.Duration) {
}

// RecordValidationProblems is a no-op.
func (n *NoopMetricsProvider) RecordValidationProblems(ctx context.Context, handlerName string, errorCount, warningCount int) {
}

// RecordDispatchFallback is a no-op.
func (n *NoopMetricsProvider) RecordDispatchFallback(ctx context.Context, action string) {}

// RecordRuleApplied is a no-op.
func (n *NoopMetricsProvider) RecordRuleApplied(ctx context.Context, ruleset string, created bool) {}

// RecordCacheHit is a no-op.
func (n *NoopMetricsProvider) RecordCacheHit(ctx context.Context, cacheName string) {}

// RecordCacheMiss is a no-op.
func (n *NoopMetricsProvider) RecordCacheMiss(ctx context.Context, cacheName string) {}

// RecordError is a no-op.
func (n *NoopMetricsProvider) RecordError(ctx context.Context, errorType string, details map[string]string) {
}

// RecordHandlerDuration is a no-op.
func (n *NoopMetricsProvider) RecordHandlerDuration(ctx context.Context, duration time.Duration, handlerName string, callback string) {
}

// RecordStoreDuration is a no-op.
func (n *NoopMetricsProvider) RecordStoreDuration(ctx context.Context, duration time.Duration, operation string, success bool) {
}

// IncrementActiveOperations is a no-op.
func (n *NoopMetricsProvider) IncrementActiveOperations(ctx context.Context) {}

// DecrementActiveOperations is a no-op.
func (n *NoopMetricsProvider) DecrementActiveOperations(ctx context.Context) {}

// RecordHandlerRegistration is a no-op.
func (n *NoopMetricsProvider) RecordHandlerRegistration(ctx context.Context, handlerName string, registered bool) {
}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordOperation(ctx context.Context, action string, handlerName string, success bool, duration time.Duration)
	RecordValidationProblems(ctx context.Context, handlerName string, errorCount, warningCount int)
	RecordDispatchFallback(ctx context.Context, action string)
	RecordRuleApplied(ctx context.Context, ruleset string, created bool)
	RecordCacheHit(ctx context.Context, cacheName string)
	RecordCacheMiss(ctx context.Context, cacheName string)
	RecordError(ctx context.Context, errorType string, details map[string]string)
	RecordHandlerDuration(ctx context.Context, duration time.Duration, handlerName string, callback string)
	RecordStoreDuration(ctx context.Context, duration time.Duration, operation string, success bool)
	IncrementActiveOperations(ctx context.Context)
	DecrementActiveOperations(ctx context.Context)
	RecordHandlerRegistration(ctx context.Context, handlerName string, registered bool)
}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = (*NoopMetricsProvider)(nil)
)
