// Package middleware provides composable middleware for parameter operations.
package middleware

import (
	"context"

	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/suggestion"
)

// Operation names for OperationContext.Action.
const (
	OpDefaults = "defaults"
	OpValidate = "validate"
	OpSuggest  = "suggest"
	OpApply    = "apply"
)

// OperationContext describes a parameter operation as it flows through the chain.
type OperationContext struct {
	// Action names the operation: defaults, validate, suggest or apply.
	Action string
	// Service is the service description the operation targets.
	Service string
	// Host is the host name, empty when the caller did not supply one.
	Host string
	// HandlerName is the dispatched handler. Empty until dispatch resolves,
	// so middleware running before the core handler must not rely on it.
	HandlerName string
	// Params holds the caller-supplied parameters for validate and apply.
	Params param.Parameters
	// Context carries evaluation context such as profile or criticality.
	Context param.Context
}

// Outcome is what an operation produced. Exactly one of Result and
// Suggestions is populated, depending on the action.
type Outcome struct {
	// Result carries parameters and diagnostics for defaults, validate and apply.
	Result *param.Result
	// Suggestions carries the proposals of a suggest operation.
	Suggestions []suggestion.Suggestion
	// RuleID identifies the persisted rule after a successful apply.
	RuleID string
}

// Handler runs a parameter operation and returns its outcome.
type Handler func(ctx context.Context, op *OperationContext) (*Outcome, error)

// Middleware wraps a Handler with additional behavior.
// Middleware can:
// - Execute code before the next handler
// - Execute code after the next handler
// - Short-circuit by not calling next
// - Modify the operation context
// - Transform outcomes or errors
type Middleware func(next Handler) Handler

// Chain composes multiple middleware into a single middleware.
// Middleware are executed in the order provided, with each wrapping the next.
// For example, Chain(A, B, C) produces: A -> B -> C -> handler
func Chain(middlewares ...Middleware) Middleware {
	return func(final Handler) Handler {
		// Build chain from right to left so execution is left to right
		handler := final
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}

// Noop returns a middleware that does nothing, just passes through.
func Noop() Middleware {
	return func(next Handler) Handler {
		return next
	}
}
