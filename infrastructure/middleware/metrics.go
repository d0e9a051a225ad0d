package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/checkwise/domain/middleware"
	"github.com/felixgeelhaar/checkwise/infrastructure/telemetry"
)

// MetricsConfig configures the metrics middleware.
type MetricsConfig struct {
	// Provider is the metrics provider to use.
	Provider telemetry.Metrics
}

// Metrics creates a middleware that records metrics for parameter operations.
//
// This middleware records:
// - Operation count (with action, handler, and success attributes)
// - Operation duration histogram
// - Validation problem counts (when the outcome carries a result)
//
// Example:
//
//	provider := telemetry.NewMetricsProvider(telemetry.DefaultMetricsConfig())
//	mw := middleware.Metrics(middleware.MetricsConfig{
//	    Provider: provider,
//	})
//
//	svc, _ := api.New(
//	    api.WithMiddleware(mw),
//	)
func Metrics(config MetricsConfig) middleware.Middleware {
	if config.Provider == nil {
		config.Provider = &telemetry.NoopMetricsProvider{}
	}

	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
			start := time.Now()

			// Run the operation
			out, err := next(ctx, op)

			// Record metrics
			duration := time.Since(start)
			success := err == nil && (out == nil || out.Result == nil || out.Result.IsValid())

			config.Provider.RecordOperation(ctx, op.Action, op.HandlerName, success, duration)

			if err == nil && out != nil && out.Result != nil {
				config.Provider.RecordValidationProblems(ctx, op.HandlerName,
					len(out.Result.Errors()), len(out.Result.Warnings()))
			}

			return out, err
		}
	}
}

// MetricsWithCaching creates a cache metrics recorder.
// This should be used in conjunction with the caching middleware.
func MetricsWithCaching(config MetricsConfig) CacheMetricsRecorder {
	if config.Provider == nil {
		config.Provider = &telemetry.NoopMetricsProvider{}
	}

	return &cacheMetricsRecorder{
		provider: config.Provider,
	}
}

// CacheMetricsRecorder records cache-related metrics.
type CacheMetricsRecorder interface {
	RecordHit(ctx context.Context, cacheName string)
	RecordMiss(ctx context.Context, cacheName string)
}

type cacheMetricsRecorder struct {
	provider telemetry.Metrics
}

func (r *cacheMetricsRecorder) RecordHit(ctx context.Context, cacheName string) {
	r.provider.RecordCacheHit(ctx, cacheName)
}

func (r *cacheMetricsRecorder) RecordMiss(ctx context.Context, cacheName string) {
	r.provider.RecordCacheMiss(ctx, cacheName)
}

// FallbackMetricsRecorder records dispatch fallback metrics.
type FallbackMetricsRecorder interface {
	RecordFallback(ctx context.Context, action string)
}

// MetricsFallbackRecorder returns a dispatch fallback metrics recorder.
func MetricsFallbackRecorder(config MetricsConfig) FallbackMetricsRecorder {
	if config.Provider == nil {
		config.Provider = &telemetry.NoopMetricsProvider{}
	}

	return &fallbackMetricsRecorder{
		provider: config.Provider,
	}
}

type fallbackMetricsRecorder struct {
	provider telemetry.Metrics
}

func (r *fallbackMetricsRecorder) RecordFallback(ctx context.Context, action string) {
	r.provider.RecordDispatchFallback(ctx, action)
}

// RegistrationMetricsRecorder records handler registry membership changes.
type RegistrationMetricsRecorder interface {
	RecordChange(ctx context.Context, handlerName string, registered bool)
}

// MetricsRegistrationRecorder returns a registry membership metrics recorder.
func MetricsRegistrationRecorder(config MetricsConfig) RegistrationMetricsRecorder {
	if config.Provider == nil {
		config.Provider = &telemetry.NoopMetricsProvider{}
	}

	return &registrationMetricsRecorder{
		provider: config.Provider,
	}
}

type registrationMetricsRecorder struct {
	provider telemetry.Metrics
}

func (r *registrationMetricsRecorder) RecordChange(ctx context.Context, handlerName string, registered bool) {
	r.provider.RecordHandlerRegistration(ctx, handlerName, registered)
}
