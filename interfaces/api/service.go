// Package api is the public surface of the checkwise parameter engine.
//
// checkwise turns monitoring check services into concrete check parameters.
// A service name such as "Temperature Zone 1" is dispatched to the handler
// whose service patterns match it best; the handler generates context-aware
// defaults, validates proposed parameters, suggests improvements, and
// applies accepted parameter sets as monitoring rules.
//
// # Quick Start
//
//	svc, err := api.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := svc.Defaults(ctx, api.Request{
//	    Service: "Temperature Zone 1",
//	    Host:    "plc-01",
//	    Context: api.Context{"criticality": "production"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Parameters)
//
// Validation follows the same shape:
//
//	res, err = svc.Validate(ctx, api.Request{
//	    Service: "Temperature Zone 1",
//	    Params:  api.Parameters{"levels": api.NewLevels(75, 85)},
//	})
//	for _, msg := range res.Errors() {
//	    fmt.Println(msg.Text)
//	}
//
// Applying parameters needs a rule store; wire one with WithRuleStore or
// load a full runtime from a config file with FromFile.
//
// The package re-exports the domain types the facade trades in, so most
// programs only import api and the occasional storage backend.
package api

import (
	"context"
	"time"

	"github.com/felixgeelhaar/checkwise/application"
	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/history"
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/rule"
	"github.com/felixgeelhaar/checkwise/infrastructure/registry"
	"github.com/felixgeelhaar/checkwise/infrastructure/telemetry"

	domainmw "github.com/felixgeelhaar/checkwise/domain/middleware"
	inframw "github.com/felixgeelhaar/checkwise/infrastructure/middleware"
)

// Request and result types.
type (
	// Request identifies the service an operation targets.
	Request = application.Request

	// ApplyRequest extends Request with persistence details.
	ApplyRequest = application.ApplyRequest

	// ApplyResult reports what Apply persisted.
	ApplyResult = application.ApplyResult

	// Parameters is a check parameter set.
	Parameters = param.Parameters

	// Context carries environmental facts handlers consult.
	Context = param.Context

	// Levels is a warn/crit threshold pair.
	Levels = param.Levels

	// Result collects parameters and validation messages.
	Result = param.Result

	// Message is a single validation finding.
	Message = param.Message

	// Severity grades a validation message.
	Severity = param.Severity

	// ParameterInfo describes one parameter a handler accepts.
	ParameterInfo = param.Info
)

// Handler and dispatch types.
type (
	// Handler generates, validates and optimizes parameters for the
	// services it matches.
	Handler = handler.Handler

	// HandlerRegistry dispatches service names to handlers.
	HandlerRegistry = handler.Registry

	// Registration holds the metadata a registry needs for one handler.
	Registration = handler.Registration

	// Constructor builds a handler instance.
	Constructor = handler.Constructor

	// HandlerView is a read-only registration snapshot.
	HandlerView = handler.View
)

// Rule types.
type (
	// Rule is one persisted parameter assignment.
	Rule = rule.Rule

	// Ruleset groups the rules of one parameter family.
	Ruleset = rule.Ruleset

	// RuleConditions scope a rule to hosts and services.
	RuleConditions = rule.Conditions

	// RuleStore persists rules.
	RuleStore = rule.Store
)

// History types.
type (
	// HistoryRecord is one audited operation.
	HistoryRecord = history.Record

	// HistoryFilter narrows a history listing.
	HistoryFilter = history.Filter

	// HistoryStore persists operation records.
	HistoryStore = history.Store

	// HistoryAction names the operation a record captures.
	HistoryAction = history.Action
)

// Severity levels.
const (
	SeverityInfo    = param.SeverityInfo
	SeverityWarning = param.SeverityWarning
	SeverityError   = param.SeverityError
)

// History actions.
const (
	ActionDefaults = history.ActionDefaults
	ActionValidate = history.ActionValidate
	ActionApply    = history.ActionApply
)

// Errors callers branch on.
var (
	ErrInvalidParameters = application.ErrInvalidParameters
	ErrNoRuleStore       = application.ErrNoRuleStore
	ErrNoHistoryStore    = application.ErrNoHistoryStore
	ErrNoRuleset         = application.ErrNoRuleset
	ErrHandlerNotFound   = handler.ErrHandlerNotFound
	ErrRuleNotFound      = rule.ErrRuleNotFound
	ErrRulesetNotFound   = rule.ErrRulesetNotFound
)

// NewResult creates an empty successful result.
func NewResult(params Parameters) *Result { return param.NewResult(params) }

// NewLevels builds a warn/crit threshold pair.
func NewLevels(warn, crit float64) Levels { return param.NewLevels(warn, crit) }

// AsFloat coerces a parameter value to float64.
func AsFloat(v any) (float64, bool) { return param.AsFloat(v) }

// Service is the facade over the parameter engine. It dispatches requests
// to handlers and, when configured, persists rules and history.
//
// A Service is safe for concurrent use.
type Service struct {
	svc      *application.ParameterService
	defaults param.Context
}

type serviceConfig struct {
	registry   handler.Registry
	rules      rule.Store
	history    history.Store
	middleware *domainmw.Registry
	metrics    telemetry.Metrics
	fallbacks  inframw.FallbackMetricsRecorder
	folder     string
	defaults   param.Context
}

// Option configures a Service.
type Option func(*serviceConfig)

// WithRegistry replaces the process-wide default handler registry.
func WithRegistry(r handler.Registry) Option {
	return func(c *serviceConfig) {
		c.registry = r
	}
}

// WithHandler registers an additional handler on the service's registry.
// Invalid registrations are dropped; use HandlerRegistry.Register directly
// when the error matters.
func WithHandler(reg Registration) Option {
	return func(c *serviceConfig) {
		_ = c.registry.Register(reg)
	}
}

// WithRuleStore enables Apply by providing rule persistence.
func WithRuleStore(s rule.Store) Option {
	return func(c *serviceConfig) {
		c.rules = s
	}
}

// WithHistoryStore enables operation auditing.
func WithHistoryStore(s history.Store) Option {
	return func(c *serviceConfig) {
		c.history = s
	}
}

// WithMiddleware appends middleware to the operation chain. The first
// middleware added runs outermost.
func WithMiddleware(ms ...Middleware) Option {
	return func(c *serviceConfig) {
		if c.middleware == nil {
			c.middleware = domainmw.NewRegistry()
		}
		c.middleware.UseMany(ms...)
	}
}

// WithMiddlewareChain replaces the operation chain wholesale.
func WithMiddlewareChain(r *MiddlewareRegistry) Option {
	return func(c *serviceConfig) {
		c.middleware = r
	}
}

// WithFallbackRecorder records ruleset dispatch fallbacks.
func WithFallbackRecorder(r inframw.FallbackMetricsRecorder) Option {
	return func(c *serviceConfig) {
		c.fallbacks = r
	}
}

// WithRuleFolder sets the backend folder created rules land in.
func WithRuleFolder(folder string) Option {
	return func(c *serviceConfig) {
		c.folder = folder
	}
}

// WithDefaultContext seeds every request with baseline context facts.
// Facts set on the request itself win.
func WithDefaultContext(ctx Context) Option {
	return func(c *serviceConfig) {
		c.defaults = ctx
	}
}

// New creates a Service. Without options it uses the process-wide handler
// registry and no persistence, which is enough for Defaults, Validate and
// Suggest.
func New(opts ...Option) (*Service, error) {
	config := &serviceConfig{
		registry: registry.Default(),
	}
	for _, opt := range opts {
		opt(config)
	}

	svc, err := application.NewService(application.ServiceConfig{
		Registry:   config.registry,
		Rules:      config.rules,
		History:    config.history,
		Middleware: config.middleware,
		Metrics:    config.metrics,
		Fallbacks:  config.fallbacks,
		RuleFolder: config.folder,
	})
	if err != nil {
		return nil, err
	}

	var defaults param.Context
	if len(config.defaults) > 0 {
		defaults = make(param.Context, len(config.defaults))
		for k, v := range config.defaults {
			defaults[k] = v
		}
	}

	return &Service{svc: svc, defaults: defaults}, nil
}

// Defaults generates context-aware default parameters for a service.
func (s *Service) Defaults(ctx context.Context, req Request) (*Result, error) {
	return s.svc.Defaults(ctx, s.merge(req))
}

// Validate checks proposed parameters and reports findings by severity.
func (s *Service) Validate(ctx context.Context, req Request) (*Result, error) {
	return s.svc.Validate(ctx, s.merge(req))
}

// Suggest proposes parameter improvements for a service.
func (s *Service) Suggest(ctx context.Context, req Request) ([]Suggestion, error) {
	return s.svc.Suggest(ctx, s.merge(req))
}

// Apply validates parameters and persists them as a rule. Validation
// errors refuse the apply: the returned result carries the findings and
// the error wraps ErrInvalidParameters.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	req.Request = s.merge(req.Request)
	return s.svc.Apply(ctx, req)
}

// Handlers lists the registered handlers.
func (s *Service) Handlers() []HandlerView {
	return s.svc.Handlers()
}

// History lists audited operations, newest first.
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]*HistoryRecord, error) {
	return s.svc.History(ctx, filter)
}

// PruneHistory deletes records older than the cutoff and reports how many
// were removed.
func (s *Service) PruneHistory(ctx context.Context, before time.Time) (int, error) {
	return s.svc.PruneHistory(ctx, before)
}

func (s *Service) merge(req Request) Request {
	if len(s.defaults) == 0 {
		return req
	}
	merged := make(param.Context, len(s.defaults)+len(req.Context))
	for k, v := range s.defaults {
		merged[k] = v
	}
	for k, v := range req.Context {
		merged[k] = v
	}
	req.Context = merged
	return req
}
