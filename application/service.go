// Package application provides the orchestration layer for parameter
// operations.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/history"
	"github.com/felixgeelhaar/checkwise/domain/middleware"
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/rule"
	"github.com/felixgeelhaar/checkwise/domain/suggestion"
	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
	inframw "github.com/felixgeelhaar/checkwise/infrastructure/middleware"
	"github.com/felixgeelhaar/checkwise/infrastructure/telemetry"
)

var (
	// ErrInvalidParameters indicates apply refused to persist parameters
	// that failed validation.
	ErrInvalidParameters = errors.New("parameters failed validation")

	// ErrNoRuleStore indicates an operation needing rule persistence ran
	// without a configured rule store.
	ErrNoRuleStore = errors.New("no rule store configured")

	// ErrNoHistoryStore indicates a history query ran without a configured
	// history store.
	ErrNoHistoryStore = errors.New("no history store configured")

	// ErrNoRuleset indicates apply could not resolve a ruleset for the rule.
	ErrNoRuleset = errors.New("no ruleset resolved for apply")
)

// ParameterService is the main orchestration service for parameter
// operations. It dispatches to handlers through the registry, runs every
// operation through the middleware chain, persists rules, and records
// history.
type ParameterService struct {
	registry   handler.Registry
	rules      rule.Store
	history    history.Store
	middleware *middleware.Registry
	metrics    telemetry.Metrics
	fallbacks  inframw.FallbackMetricsRecorder
	folder     string
}

// ServiceConfig contains configuration for the parameter service.
type ServiceConfig struct {
	// Registry dispatches service names to handlers. Required.
	Registry handler.Registry

	// Rules persists applied parameters. Optional; Apply fails without it.
	Rules rule.Store

	// History records operations for auditing. Optional.
	History history.Store

	// Middleware overrides the default operation chain.
	Middleware *middleware.Registry

	// Metrics records store timings. Optional.
	Metrics telemetry.Metrics

	// Fallbacks records ruleset dispatch fallbacks. Optional.
	Fallbacks inframw.FallbackMetricsRecorder

	// RuleFolder is the backend folder created rules land in.
	RuleFolder string
}

// NewService creates a parameter service with the given configuration.
func NewService(config ServiceConfig) (*ParameterService, error) {
	if config.Registry == nil {
		return nil, errors.New("registry is required")
	}

	s := &ParameterService{
		registry:   config.Registry,
		rules:      config.Rules,
		history:    config.History,
		middleware: config.Middleware,
		metrics:    config.Metrics,
		fallbacks:  config.Fallbacks,
		folder:     config.RuleFolder,
	}

	// Set defaults
	if s.middleware == nil {
		s.middleware = defaultMiddlewareChain()
	}
	if s.metrics == nil {
		s.metrics = &telemetry.NoopMetricsProvider{}
	}
	if s.folder == "" {
		s.folder = "/"
	}

	return s, nil
}

// defaultMiddlewareChain creates the default operation chain: reject
// malformed operations before dispatch, then log every operation.
func defaultMiddlewareChain() *middleware.Registry {
	registry := middleware.NewRegistry()

	registry.Use(inframw.Validation(inframw.DefaultValidationConfig()))

	registry.Use(inframw.Logging(inframw.LoggingConfig{
		LogParams:   false,
		LogMessages: false,
	}))

	return registry
}

// Request describes one parameter operation.
type Request struct {
	// Service is the service description the operation targets.
	Service string

	// Host is the target host name, when known.
	Host string

	// Ruleset narrows dispatch to handlers serving it.
	Ruleset string

	// Params are the caller-supplied parameters.
	Params param.Parameters

	// Context carries environment hints like criticality or engine.
	Context param.Context
}

// ApplyRequest describes an apply operation.
type ApplyRequest struct {
	Request

	// Folder overrides the service's default rule folder.
	Folder string

	// Comment documents the created rule.
	Comment string

	// RuleID updates an existing rule instead of creating one.
	RuleID string
}

// ApplyResult reports the outcome of an apply operation.
type ApplyResult struct {
	// Result carries the validation outcome for the parameters.
	Result *param.Result `json:"result"`

	// RuleID is the persisted rule's backend ID.
	RuleID string `json:"rule_id,omitempty"`

	// Applied reports whether the rule was persisted.
	Applied bool `json:"applied"`
}

// Defaults generates recommended parameters for the service.
func (s *ParameterService) Defaults(ctx context.Context, req Request) (*param.Result, error) {
	op := &middleware.OperationContext{
		Action:  middleware.OpDefaults,
		Service: req.Service,
		Host:    req.Host,
		Context: req.Context,
	}

	core := func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
		h, err := s.dispatch(ctx, op, req.Ruleset)
		if err != nil {
			return nil, err
		}
		res, err := h.DefaultParameters(op.Service, op.Context)
		if err != nil {
			return nil, fmt.Errorf("default parameters: %w", err)
		}
		return &middleware.Outcome{Result: res}, nil
	}

	out, err := s.run(ctx, op, core)
	s.record(ctx, history.ActionDefaults, op, out, err)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Validate checks caller-supplied parameters and reports diagnostics.
func (s *ParameterService) Validate(ctx context.Context, req Request) (*param.Result, error) {
	op := &middleware.OperationContext{
		Action:  middleware.OpValidate,
		Service: req.Service,
		Host:    req.Host,
		Params:  req.Params,
		Context: req.Context,
	}

	core := func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
		h, err := s.dispatch(ctx, op, req.Ruleset)
		if err != nil {
			return nil, err
		}
		res, err := h.ValidateParameters(op.Params, op.Service, op.Context)
		if err != nil {
			return nil, fmt.Errorf("validate parameters: %w", err)
		}
		return &middleware.Outcome{Result: res}, nil
	}

	out, err := s.run(ctx, op, core)
	s.record(ctx, history.ActionValidate, op, out, err)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Suggest proposes parameter adjustments for the service. Suggestions are
// never applied automatically.
func (s *ParameterService) Suggest(ctx context.Context, req Request) ([]suggestion.Suggestion, error) {
	op := &middleware.OperationContext{
		Action:  middleware.OpSuggest,
		Service: req.Service,
		Host:    req.Host,
		Params:  req.Params,
		Context: req.Context,
	}

	core := func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
		h, err := s.dispatch(ctx, op, req.Ruleset)
		if err != nil {
			return nil, err
		}
		suggestions, err := h.Suggestions(op.Service, op.Params, op.Context)
		if err != nil {
			return nil, fmt.Errorf("suggest parameters: %w", err)
		}
		return &middleware.Outcome{Suggestions: suggestions}, nil
	}

	out, err := s.run(ctx, op, core)
	if err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// Apply validates the parameters and persists them as a rule. Parameters
// that fail validation are never persisted; the returned result carries
// the diagnostics alongside ErrInvalidParameters.
func (s *ParameterService) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if s.rules == nil {
		return nil, ErrNoRuleStore
	}

	op := &middleware.OperationContext{
		Action:  middleware.OpApply,
		Service: req.Service,
		Host:    req.Host,
		Params:  req.Params,
		Context: req.Context,
	}

	// The validation result outlives the chain so refusals still reach
	// the history record and the caller.
	var validation *param.Result

	core := func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
		h, err := s.dispatch(ctx, op, req.Ruleset)
		if err != nil {
			return nil, err
		}

		res, err := h.ValidateParameters(op.Params, op.Service, op.Context)
		if err != nil {
			return nil, fmt.Errorf("validate parameters: %w", err)
		}
		validation = res

		if !res.IsValid() {
			return nil, fmt.Errorf("%w: %d problems", ErrInvalidParameters, len(res.Errors()))
		}

		ruleID, err := s.persist(ctx, req, h, res)
		if err != nil {
			return nil, err
		}

		return &middleware.Outcome{Result: res, RuleID: ruleID}, nil
	}

	out, err := s.run(ctx, op, core)
	s.recordApply(ctx, op, out, validation, err)
	if err != nil {
		if validation != nil && errors.Is(err, ErrInvalidParameters) {
			return &ApplyResult{Result: validation}, err
		}
		return nil, err
	}

	return &ApplyResult{
		Result:  out.Result,
		RuleID:  out.RuleID,
		Applied: true,
	}, nil
}

// persist writes the validated parameters to the rule store.
func (s *ParameterService) persist(ctx context.Context, req ApplyRequest, h handler.Handler, res *param.Result) (string, error) {
	ruleset := req.Ruleset
	if ruleset == "" {
		if supported := h.SupportedRulesets(); len(supported) > 0 {
			ruleset = supported[0]
		}
	}
	if ruleset == "" {
		return "", fmt.Errorf("%w: handler %s serves no rulesets", ErrNoRuleset, h.Name())
	}

	// Canonical types from normalization, raw parameters otherwise.
	value := res.Normalized
	if len(value) == 0 {
		value = res.Parameters
	}

	folder := req.Folder
	if folder == "" {
		folder = s.folder
	}

	conditions := rule.Conditions{
		ServiceDescription: []string{req.Service},
	}
	if req.Host != "" {
		conditions.HostName = []string{req.Host}
	}

	r := &rule.Rule{
		ID:         req.RuleID,
		Ruleset:    ruleset,
		Folder:     folder,
		Conditions: conditions,
		Value:      value,
		Comment:    req.Comment,
	}

	var (
		ruleID    = req.RuleID
		operation = "create_rule"
		err       error
	)

	start := time.Now()
	if req.RuleID != "" {
		operation = "update_rule"
		err = s.rules.UpdateRule(ctx, r)
	} else {
		ruleID, err = s.rules.CreateRule(ctx, r)
	}
	s.metrics.RecordStoreDuration(ctx, time.Since(start), operation, err == nil)

	if err != nil {
		return "", fmt.Errorf("%s: %w", operation, err)
	}

	logging.Info().
		Add(logging.Service(req.Service)).
		Add(logging.HandlerName(h.Name())).
		Add(logging.Ruleset(ruleset)).
		Add(logging.RuleID(ruleID)).
		Msg("rule persisted")

	return ruleID, nil
}

// Handlers returns registration metadata for every known handler.
func (s *ParameterService) Handlers() []handler.View {
	return s.registry.List(false)
}

// History returns recorded operations matching the filter, newest first.
func (s *ParameterService) History(ctx context.Context, filter history.Filter) ([]*history.Record, error) {
	if s.history == nil {
		return nil, ErrNoHistoryStore
	}
	return s.history.List(ctx, filter)
}

// PruneHistory removes records older than the given time and reports how
// many were removed.
func (s *ParameterService) PruneHistory(ctx context.Context, before time.Time) (int, error) {
	if s.history == nil {
		return 0, ErrNoHistoryStore
	}
	return s.history.Prune(ctx, before)
}

// run executes the operation through the middleware chain.
func (s *ParameterService) run(ctx context.Context, op *middleware.OperationContext, core middleware.Handler) (*middleware.Outcome, error) {
	h := s.middleware.Chain()(core)
	return h(ctx, op)
}

// dispatch resolves the best handler for the operation and stamps its name
// on the context.
func (s *ParameterService) dispatch(ctx context.Context, op *middleware.OperationContext, ruleset string) (handler.Handler, error) {
	h := s.registry.BestHandler(op.Service, ruleset)
	if h == nil {
		return nil, fmt.Errorf("%w: no handler matches service %q", handler.ErrHandlerNotFound, op.Service)
	}
	op.HandlerName = h.Name()

	// A handler that does not serve the requested ruleset means dispatch
	// fell back to service-only matching.
	if ruleset != "" && s.fallbacks != nil && !supportsRuleset(h, ruleset) {
		s.fallbacks.RecordFallback(ctx, op.Action)
	}

	return h, nil
}

func supportsRuleset(h handler.Handler, ruleset string) bool {
	for _, name := range h.SupportedRulesets() {
		if name == ruleset {
			return true
		}
	}
	return false
}

// record appends a history record for the operation.
func (s *ParameterService) record(ctx context.Context, action history.Action, op *middleware.OperationContext, out *middleware.Outcome, opErr error) {
	if s.history == nil {
		return
	}

	rec := history.NewRecord(action, op.Service, op.HandlerName)
	rec.Host = op.Host
	if opErr == nil && out != nil && out.Result != nil {
		rec.Valid = out.Result.IsValid()
		rec.ErrorCount = len(out.Result.Errors())
		rec.WarningCount = len(out.Result.Warnings())
	}
	if out != nil {
		rec.RuleID = out.RuleID
	}

	if err := s.history.Append(ctx, rec); err != nil {
		logging.Warn().
			Add(logging.Action(action)).
			Add(logging.Service(op.Service)).
			Add(logging.ErrorField(err)).
			Msg("history append failed")
	}
}

// recordApply appends the apply history record. Refused applies keep their
// validation counts even though the chain returned an error.
func (s *ParameterService) recordApply(ctx context.Context, op *middleware.OperationContext, out *middleware.Outcome, validation *param.Result, opErr error) {
	if s.history == nil {
		return
	}

	rec := history.NewRecord(history.ActionApply, op.Service, op.HandlerName)
	rec.Host = op.Host
	if validation != nil {
		rec.Valid = validation.IsValid()
		rec.ErrorCount = len(validation.Errors())
		rec.WarningCount = len(validation.Warnings())
	}
	if opErr == nil && out != nil {
		rec.RuleID = out.RuleID
	}

	if err := s.history.Append(ctx, rec); err != nil {
		logging.Warn().
			Add(logging.Action(history.ActionApply)).
			Add(logging.Service(op.Service)).
			Add(logging.ErrorField(err)).
			Msg("history append failed")
	}
}
