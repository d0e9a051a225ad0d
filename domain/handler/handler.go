// Package handler defines the contract all parameter handlers implement.
package handler

import (
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/suggestion"
)

// Handler produces and validates monitoring check parameters for a family
// of services. Implementations are stateless after construction, safe for
// concurrent use, and perform no I/O.
type Handler interface {
	// Name returns the stable string identifier for the handler.
	Name() string

	// ServicePatterns returns the ordered, case-insensitive, unanchored
	// regular expressions used to match service names.
	ServicePatterns() []string

	// SupportedRulesets returns the ruleset names the handler serves.
	// Matching is by exact name.
	SupportedRulesets() []string

	// DefaultParameters returns recommended parameters for the service.
	// The context can select a profile or tighten and loosen thresholds.
	DefaultParameters(service string, ctx param.Context) (*param.Result, error)

	// ValidateParameters checks user-supplied parameters and reports
	// diagnostics. A non-nil error means the handler itself failed, not
	// that the parameters are invalid.
	ValidateParameters(params param.Parameters, service string, ctx param.Context) (*param.Result, error)

	// ParameterInfo returns documentation for a single parameter.
	ParameterInfo(name string) (param.Info, bool)

	// Suggestions proposes parameter adjustments for the service.
	Suggestions(service string, current param.Parameters, ctx param.Context) ([]suggestion.Suggestion, error)
}
