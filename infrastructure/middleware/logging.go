package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/checkwise/domain/middleware"
	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
)

// LoggingConfig configures the logging middleware.
type LoggingConfig struct {
	// LogParams logs the operation parameters (may contain credentials).
	LogParams bool
	// LogMessages logs the result diagnostics (may be large).
	LogMessages bool
}

// Logging returns middleware that logs parameter operations.
func Logging(cfg LoggingConfig) middleware.Middleware {
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
			start := time.Now()

			// Log start
			entry := logging.Info().
				Add(logging.Str("action", op.Action)).
				Add(logging.Service(op.Service))

			if op.Host != "" {
				entry = entry.Add(logging.Str("host", op.Host))
			}

			if cfg.LogParams && len(op.Params) > 0 {
				if data, err := json.Marshal(op.Params); err == nil {
					entry = entry.Add(logging.Str("params", string(data)))
				}
			}

			entry.Msg("running parameter operation")

			// Execute
			out, err := next(ctx, op)
			duration := time.Since(start)

			// Log result
			if err != nil {
				logging.Error().
					Add(logging.Str("action", op.Action)).
					Add(logging.Service(op.Service)).
					Add(logging.ErrorField(err)).
					Add(logging.Duration(duration)).
					Msg("parameter operation failed")
				return out, err
			}

			logEntry := logging.Info().
				Add(logging.Str("action", op.Action)).
				Add(logging.HandlerName(op.HandlerName)).
				Add(logging.Duration(duration))

			if out != nil {
				if out.Result != nil {
					logEntry = logEntry.
						Add(logging.Valid(out.Result.IsValid())).
						Add(logging.MessageCounts(len(out.Result.Errors()), len(out.Result.Warnings())))

					if cfg.LogMessages && len(out.Result.Messages) > 0 {
						if data, merr := json.Marshal(out.Result.Messages); merr == nil {
							// Truncate large diagnostics
							text := string(data)
							if len(text) > 500 {
								text = text[:500] + "..."
							}
							logEntry = logEntry.Add(logging.Str("messages", text))
						}
					}
				}
				if out.Suggestions != nil {
					logEntry = logEntry.Add(logging.Int("suggestions", len(out.Suggestions)))
				}
				if out.RuleID != "" {
					logEntry = logEntry.Add(logging.RuleID(out.RuleID))
				}
			}

			logEntry.Msg("parameter operation completed")

			return out, err
		}
	}
}
