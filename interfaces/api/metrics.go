package api

import (
	inframw "github.com/felixgeelhaar/checkwise/infrastructure/middleware"
	"github.com/felixgeelhaar/checkwise/infrastructure/telemetry"
)

// Metrics types.
type (
	// Metrics is the recording interface the engine emits into.
	Metrics = telemetry.Metrics

	// MetricsProvider records metrics through OpenTelemetry.
	MetricsProvider = telemetry.MetricsProvider

	// MetricsConfig configures a MetricsProvider.
	MetricsConfig = telemetry.MetricsConfig

	// NoopMetricsProvider discards all recordings.
	NoopMetricsProvider = telemetry.NoopMetricsProvider

	// CacheMetricsRecorder counts cache hits and misses.
	CacheMetricsRecorder = inframw.CacheMetricsRecorder

	// FallbackMetricsRecorder counts ruleset dispatch fallbacks.
	FallbackMetricsRecorder = inframw.FallbackMetricsRecorder

	// RegistrationMetricsRecorder counts handler registry changes.
	RegistrationMetricsRecorder = inframw.RegistrationMetricsRecorder
)

// NewMetricsProvider creates a provider on the global meter provider.
// Check Error before use; instrument creation can fail.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	return telemetry.NewMetricsProvider(config)
}

// DefaultMetricsConfig returns the standard meter identity.
func DefaultMetricsConfig() MetricsConfig {
	return telemetry.DefaultMetricsConfig()
}

// WithMetrics wires a metrics provider into the service: store timings go
// to the provider directly and a metrics middleware joins the chain.
func WithMetrics(provider Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = provider
		if c.middleware == nil {
			c.middleware = NewMiddlewareRegistry()
		}
		c.middleware.Use(MetricsMiddleware(provider))
	}
}

// NewCacheMetricsRecorder counts cache hits and misses on the provider.
func NewCacheMetricsRecorder(provider Metrics) CacheMetricsRecorder {
	return inframw.MetricsWithCaching(inframw.MetricsConfig{Provider: provider})
}

// NewFallbackMetricsRecorder counts dispatch fallbacks on the provider.
func NewFallbackMetricsRecorder(provider Metrics) FallbackMetricsRecorder {
	return inframw.MetricsFallbackRecorder(inframw.MetricsConfig{Provider: provider})
}

// NewRegistrationMetricsRecorder counts registry changes on the provider.
func NewRegistrationMetricsRecorder(provider Metrics) RegistrationMetricsRecorder {
	return inframw.MetricsRegistrationRecorder(inframw.MetricsConfig{Provider: provider})
}
