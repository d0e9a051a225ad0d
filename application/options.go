package application

import (
	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/history"
	"github.com/felixgeelhaar/checkwise/domain/middleware"
	"github.com/felixgeelhaar/checkwise/domain/rule"
	inframw "github.com/felixgeelhaar/checkwise/infrastructure/middleware"
	"github.com/felixgeelhaar/checkwise/infrastructure/telemetry"
)

// Option configures the parameter service.
type Option func(*ServiceConfig)

// WithRegistry sets the handler registry.
func WithRegistry(r handler.Registry) Option {
	return func(c *ServiceConfig) {
		c.Registry = r
	}
}

// WithRuleStore sets the rule store used by Apply.
func WithRuleStore(s rule.Store) Option {
	return func(c *ServiceConfig) {
		c.Rules = s
	}
}

// WithHistoryStore sets the history store.
func WithHistoryStore(s history.Store) Option {
	return func(c *ServiceConfig) {
		c.History = s
	}
}

// WithMiddleware sets a custom middleware registry.
// If not set, the service uses a default chain with:
// - Validation middleware (reject malformed operations before dispatch)
// - Logging middleware (operation timing and results)
func WithMiddleware(m *middleware.Registry) Option {
	return func(c *ServiceConfig) {
		c.Middleware = m
	}
}

// WithMetrics sets the metrics provider for store timings.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *ServiceConfig) {
		c.Metrics = m
	}
}

// WithFallbackRecorder sets the recorder for ruleset dispatch fallbacks.
func WithFallbackRecorder(r inframw.FallbackMetricsRecorder) Option {
	return func(c *ServiceConfig) {
		c.Fallbacks = r
	}
}

// WithRuleFolder sets the backend folder created rules land in.
func WithRuleFolder(folder string) Option {
	return func(c *ServiceConfig) {
		c.RuleFolder = folder
	}
}

// NewServiceWithOptions creates a parameter service with functional options.
func NewServiceWithOptions(opts ...Option) (*ParameterService, error) {
	config := ServiceConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	return NewService(config)
}
