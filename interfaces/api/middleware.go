package api

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/checkwise/domain/cache"

	domainmw "github.com/felixgeelhaar/checkwise/domain/middleware"
	inframw "github.com/felixgeelhaar/checkwise/infrastructure/middleware"
)

// Middleware types.
type (
	// Middleware wraps an operation with cross-cutting behavior.
	Middleware = domainmw.Middleware

	// MiddlewareRegistry assembles middleware into a chain.
	MiddlewareRegistry = domainmw.Registry

	// OperationContext describes the operation a middleware observes.
	OperationContext = domainmw.OperationContext

	// Outcome is what an operation produced.
	Outcome = domainmw.Outcome

	// OperationHandler is the wrapped operation core.
	OperationHandler = domainmw.Handler
)

// Operation names middleware can branch on.
const (
	OpDefaults = domainmw.OpDefaults
	OpValidate = domainmw.OpValidate
	OpSuggest  = domainmw.OpSuggest
	OpApply    = domainmw.OpApply
)

// NewMiddlewareRegistry creates an empty middleware chain.
func NewMiddlewareRegistry() *MiddlewareRegistry {
	return domainmw.NewRegistry()
}

// ChainMiddleware composes middlewares into one; the first runs outermost.
func ChainMiddleware(ms ...Middleware) Middleware {
	return domainmw.Chain(ms...)
}

// NoopMiddleware passes operations through unchanged.
func NoopMiddleware() Middleware {
	return domainmw.Noop()
}

// ValidationMiddleware rejects structurally invalid requests before they
// reach a handler.
func ValidationMiddleware() Middleware {
	return inframw.Validation(inframw.DefaultValidationConfig())
}

// LoggingMiddlewareConfig tunes what LoggingMiddleware records.
type LoggingMiddlewareConfig struct {
	// LogParams includes the full parameter set in log entries.
	LogParams bool

	// LogMessages includes validation messages in log entries.
	LogMessages bool
}

// LoggingMiddleware logs every operation with timing and outcome. A nil
// config logs neither parameters nor messages.
func LoggingMiddleware(config *LoggingMiddlewareConfig) Middleware {
	if config == nil {
		config = &LoggingMiddlewareConfig{}
	}
	return inframw.Logging(inframw.LoggingConfig{
		LogParams:   config.LogParams,
		LogMessages: config.LogMessages,
	})
}

// TracingMiddleware opens an OpenTelemetry span per operation using the
// globally registered tracer provider.
func TracingMiddleware() Middleware {
	return inframw.Tracing(inframw.DefaultTracingConfig())
}

// TracingMiddlewareWithTracer uses an explicit tracer instead of the
// global provider.
func TracingMiddlewareWithTracer(tracer trace.Tracer) Middleware {
	cfg := inframw.DefaultTracingConfig()
	cfg.Tracer = tracer
	return inframw.Tracing(cfg)
}

// MetricsMiddleware records operation counters and durations on the
// provider.
func MetricsMiddleware(provider Metrics) Middleware {
	return inframw.Metrics(inframw.MetricsConfig{Provider: provider})
}

// CachingMiddleware serves repeated defaults requests from the cache.
func CachingMiddleware(c cache.Cache, ttl time.Duration) Middleware {
	return inframw.Caching(inframw.CachingConfig{Cache: c, TTL: ttl})
}
