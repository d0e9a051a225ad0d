// Package middleware provides pre-built middleware implementations.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/checkwise/domain/middleware"
)

// Validation errors.
var (
	// ErrEmptyService indicates an operation without a service description.
	ErrEmptyService = errors.New("service description is empty")

	// ErrMissingParameters indicates an operation that requires parameters got none.
	ErrMissingParameters = errors.New("parameters are required")

	// ErrServiceTooLong indicates a service description over the configured limit.
	ErrServiceTooLong = errors.New("service description too long")
)

// ValidationConfig configures the operation validation middleware.
type ValidationConfig struct {
	// RequireService rejects operations whose service description is empty.
	// Default: true
	RequireService bool

	// RequireParams rejects validate and apply operations without parameters.
	// Default: true
	RequireParams bool

	// MaxServiceLength rejects service descriptions over this many bytes.
	// Zero disables the check.
	MaxServiceLength int
}

// DefaultValidationConfig returns a sensible default configuration.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		RequireService:   true,
		RequireParams:    true,
		MaxServiceLength: 0,
	}
}

// Validation returns middleware that guards operations before they reach
// dispatch.
//
// This ensures:
// - The service description is present (dispatch has nothing to match otherwise)
// - Validate and apply operations carry parameters to work on
// - Oversized service descriptions are rejected early (when configured)
func Validation(cfg ValidationConfig) middleware.Middleware {
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
			if cfg.RequireService && strings.TrimSpace(op.Service) == "" {
				return nil, fmt.Errorf("%w: %s operation needs a service description", ErrEmptyService, op.Action)
			}

			if cfg.MaxServiceLength > 0 && len(op.Service) > cfg.MaxServiceLength {
				return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrServiceTooLong, len(op.Service), cfg.MaxServiceLength)
			}

			if cfg.RequireParams && requiresParams(op.Action) && len(op.Params) == 0 {
				return nil, fmt.Errorf("%w: %s operation needs parameters", ErrMissingParameters, op.Action)
			}

			return next(ctx, op)
		}
	}
}

// requiresParams reports whether an action consumes caller-supplied parameters.
func requiresParams(action string) bool {
	return action == middleware.OpValidate || action == middleware.OpApply
}
