package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/checkwise/domain/cache"
	"github.com/felixgeelhaar/checkwise/domain/middleware"
	"github.com/felixgeelhaar/checkwise/domain/param"
)

// defaultsCacheName labels cache metrics emitted by the caching middleware.
const defaultsCacheName = "defaults"

// CachingConfig configures the caching middleware.
type CachingConfig struct {
	// Cache stores serialized outcomes. Nil disables caching.
	Cache cache.Cache

	// TTL bounds entry lifetime. Zero means no expiration.
	TTL time.Duration

	// Recorder receives hit and miss counts. Optional.
	Recorder CacheMetricsRecorder
}

// cachedOutcome is the serialized form of a defaults outcome.
type cachedOutcome struct {
	Handler string        `json:"handler"`
	Result  *param.Result `json:"result"`
}

// Caching returns middleware that caches defaults outcomes.
// Only defaults operations are cached: their outcome depends solely on the
// service description and context, while validate, suggest, and apply depend
// on caller parameters or mutate the rule store.
func Caching(cfg CachingConfig) middleware.Middleware {
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, op *middleware.OperationContext) (*middleware.Outcome, error) {
			// Skip if cache not provided
			if cfg.Cache == nil {
				return next(ctx, op)
			}

			// Only defaults outcomes are deterministic per service and context
			if op.Action != middleware.OpDefaults {
				return next(ctx, op)
			}

			key := defaultsKey(op)

			// Check cache
			if data, ok, err := cfg.Cache.Get(ctx, key); err == nil && ok {
				var cached cachedOutcome
				if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
					if cfg.Recorder != nil {
						cfg.Recorder.RecordHit(ctx, defaultsCacheName)
					}
					op.HandlerName = cached.Handler
					return &middleware.Outcome{Result: cached.Result}, nil
				}
			}

			if cfg.Recorder != nil {
				cfg.Recorder.RecordMiss(ctx, defaultsCacheName)
			}

			// Run the operation
			out, err := next(ctx, op)
			if err != nil || out == nil || out.Result == nil {
				return out, err
			}

			// Store in cache. Write failures are not fatal to the operation.
			if data, jsonErr := json.Marshal(cachedOutcome{Handler: op.HandlerName, Result: out.Result}); jsonErr == nil {
				_ = cfg.Cache.Set(ctx, key, data, cache.SetOptions{TTL: cfg.TTL})
			}

			return out, err
		}
	}
}

// defaultsKey generates a unique key for a defaults invocation.
// The host is excluded: defaults depend only on service and context.
func defaultsKey(op *middleware.OperationContext) string {
	h := sha256.New()
	h.Write([]byte(op.Action))
	h.Write([]byte(":"))
	h.Write([]byte(op.Service))
	h.Write([]byte(":"))
	if len(op.Context) > 0 {
		// json.Marshal sorts map keys, so the encoding is deterministic.
		if data, err := json.Marshal(op.Context); err == nil {
			h.Write(data)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
