package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/checkwise/domain/cache"
	domainconfig "github.com/felixgeelhaar/checkwise/domain/config"
	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/history"
	"github.com/felixgeelhaar/checkwise/domain/middleware"
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/rule"
	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
	inframw "github.com/felixgeelhaar/checkwise/infrastructure/middleware"
	"github.com/felixgeelhaar/checkwise/infrastructure/observability"
	"github.com/felixgeelhaar/checkwise/infrastructure/registry"
	"github.com/felixgeelhaar/checkwise/infrastructure/rulestore"
	"github.com/felixgeelhaar/checkwise/infrastructure/storage/badger"
	"github.com/felixgeelhaar/checkwise/infrastructure/storage/memory"
	"github.com/felixgeelhaar/checkwise/infrastructure/storage/postgres"
	"github.com/felixgeelhaar/checkwise/infrastructure/storage/redis"
	"github.com/felixgeelhaar/checkwise/infrastructure/telemetry"
)

// Builder builds runtime components from configuration.
type Builder struct {
	config *domainconfig.Config
}

// NewBuilder creates a new configuration builder.
func NewBuilder(config *domainconfig.Config) *Builder {
	return &Builder{config: config}
}

// BuildResult contains the built components from configuration.
type BuildResult struct {
	// Registry dispatches service names to parameter handlers.
	Registry *registry.Registry
	// RuleStore persists monitoring rules. Nil when no backend URL is
	// configured; apply operations then refuse to persist.
	RuleStore rule.Store
	// History records evaluation outcomes.
	History history.Store
	// HistoryRetention prunes records older than this age (0 = keep forever).
	HistoryRetention time.Duration
	// Cache backs the response cache and the rule read-through cache.
	Cache cache.Cache
	// Middleware is the assembled operation chain.
	Middleware *middleware.Registry
	// Metrics receives operation telemetry.
	Metrics telemetry.Metrics
	// Fallbacks records ruleset dispatch fallbacks.
	Fallbacks inframw.FallbackMetricsRecorder
	// Registrations records handler registration changes.
	Registrations inframw.RegistrationMetricsRecorder
	// Provider manages telemetry export. Nil when observability is disabled.
	Provider *observability.Provider
	// MatchLimit caps how many handlers a lookup returns.
	MatchLimit int
	// Context is the default evaluation context merged into every request.
	Context param.Context
	// Transport selects how the tool server is exposed.
	Transport string
	// Addr is the listen address for the http transport.
	Addr string

	closers []func(context.Context) error
}

// Close releases the built components in reverse build order.
func (r *BuildResult) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build builds the runtime components from configuration. Stores that
// open connections use ctx; partially built components are closed on
// failure.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	result := &BuildResult{}

	if err := b.assemble(ctx, result); err != nil {
		if cerr := result.Close(ctx); cerr != nil {
			logging.Warn().
				Add(logging.ErrorField(cerr)).
				Msg("closing partially built components")
		}
		return nil, err
	}
	return result, nil
}

func (b *Builder) assemble(ctx context.Context, result *BuildResult) error {
	// Observability first: the metrics provider and the tracing
	// middleware read the globals it installs.
	if err := b.buildObservability(result); err != nil {
		return fmt.Errorf("building observability: %w", err)
	}

	if err := b.buildMetrics(result); err != nil {
		return fmt.Errorf("building metrics: %w", err)
	}

	if err := b.buildRegistry(result); err != nil {
		return fmt.Errorf("building registry: %w", err)
	}

	if err := b.buildHistory(ctx, result); err != nil {
		return fmt.Errorf("building history store: %w", err)
	}

	if err := b.buildCache(result); err != nil {
		return fmt.Errorf("building cache: %w", err)
	}

	if err := b.buildRuleStore(result); err != nil {
		return fmt.Errorf("building rule store: %w", err)
	}

	b.buildMiddleware(result)
	b.buildServer(result)

	return nil
}

func (b *Builder) buildObservability(result *BuildResult) error {
	obs := b.config.Observability
	if !obs.Enabled {
		return nil
	}

	serviceName := obs.ServiceName
	if serviceName == "" {
		serviceName = "checkwise"
	}

	ratio := obs.SampleRatio
	if ratio <= 0 {
		// The zero value means the field was omitted, not sample-nothing.
		ratio = 1.0
	}

	opts := []observability.Option{
		observability.WithServiceName(serviceName),
		observability.WithSampleRate(ratio),
	}
	switch {
	case obs.Stdout:
		opts = append(opts, observability.WithStdoutTracing())
	case obs.Endpoint != "":
		opts = append(opts, observability.WithTracing(observability.ExporterOTLP, obs.Endpoint))
		if obs.Insecure {
			opts = append(opts, observability.WithTracingInsecure())
		}
	default:
		opts = append(opts, observability.WithNoopTracing())
	}

	provider, err := observability.New(opts...)
	if err != nil {
		return err
	}

	result.Provider = provider
	result.closers = append(result.closers, provider.Shutdown)
	return nil
}

func (b *Builder) buildMetrics(result *BuildResult) error {
	if b.config.Observability.Enabled {
		mp := telemetry.NewMetricsProvider(telemetry.DefaultMetricsConfig())
		if err := mp.Error(); err != nil {
			return err
		}
		result.Metrics = mp
	} else {
		result.Metrics = &telemetry.NoopMetricsProvider{}
	}

	mwCfg := inframw.MetricsConfig{Provider: result.Metrics}
	result.Fallbacks = inframw.MetricsFallbackRecorder(mwCfg)
	result.Registrations = inframw.MetricsRegistrationRecorder(mwCfg)
	return nil
}

func (b *Builder) buildRegistry(result *BuildResult) error {
	reg := registry.Default()
	if result.Registrations != nil {
		reg.SetRecorder(result.Registrations)
	}

	for name, priority := range b.config.Registry.Priorities {
		if !reg.SetPriority(name, priority) {
			return fmt.Errorf("unknown handler: %s", name)
		}
	}
	for _, name := range b.config.Registry.Disabled {
		if !reg.Disable(name) {
			return fmt.Errorf("unknown handler: %s", name)
		}
	}

	result.Registry = reg
	result.MatchLimit = b.config.Registry.MatchLimit
	if result.MatchLimit <= 0 {
		result.MatchLimit = handler.DefaultMatchLimit
	}
	return nil
}

func (b *Builder) buildHistory(ctx context.Context, result *BuildResult) error {
	hc := b.config.History

	var store history.Store
	switch hc.Backend {
	case "", "memory":
		var opts []memory.HistoryOption
		if hc.MaxRecords > 0 {
			opts = append(opts, memory.WithMaxRecords(hc.MaxRecords))
		}
		store = memory.NewHistoryStore(opts...)
	case "badger":
		if hc.Path == "" {
			return errors.New("badger backend needs a path")
		}
		st, err := badger.NewHistoryStore(badger.Config{Dir: hc.Path})
		if err != nil {
			return err
		}
		store = st
	case "postgres":
		if hc.DSN == "" {
			return errors.New("postgres backend needs a dsn")
		}
		st, err := postgres.OpenDSN(ctx, hc.DSN, "")
		if err != nil {
			return err
		}
		store = st
	default:
		return fmt.Errorf("unknown history backend: %s", hc.Backend)
	}

	result.History = store
	result.HistoryRetention = hc.Retention.Duration()
	result.closers = append(result.closers, func(context.Context) error {
		return store.Close()
	})
	return nil
}

func (b *Builder) buildCache(result *BuildResult) error {
	cc := b.config.Cache

	switch cc.Backend {
	case "", "memory":
		mc := memory.NewCache(memory.WithJanitor(time.Minute))
		result.Cache = mc
		result.closers = append(result.closers, func(context.Context) error {
			return mc.Close()
		})
	case "redis":
		if cc.Addr == "" {
			return errors.New("redis backend needs an addr")
		}
		cfg := redis.DefaultConfig()
		cfg.Addr = cc.Addr
		cfg.Password = cc.Password
		cfg.DB = cc.DB
		if cc.KeyPrefix != "" {
			cfg.KeyPrefix = cc.KeyPrefix
		}
		rc, err := redis.NewCache(cfg)
		if err != nil {
			return err
		}
		result.Cache = rc
		result.closers = append(result.closers, func(context.Context) error {
			return rc.Close()
		})
	default:
		return fmt.Errorf("unknown cache backend: %s", cc.Backend)
	}
	return nil
}

func (b *Builder) buildRuleStore(result *BuildResult) error {
	rs := b.config.RuleStore
	if rs.URL == "" {
		return nil
	}

	cfg := rulestore.DefaultConfig()
	cfg.BaseURL = rs.URL
	cfg.Token = rs.Token
	if rs.Timeout > 0 {
		cfg.Timeout = rs.Timeout.Duration()
	}
	// An all-zero resilience section keeps the client defaults.
	if rs.Resilience != (domainconfig.ResilienceConfig{}) {
		applyResilience(&cfg, rs.Resilience)
	}

	client, err := rulestore.New(cfg)
	if err != nil {
		return err
	}

	result.RuleStore = client
	if ttl := rs.CacheTTL.Duration(); ttl > 0 {
		result.RuleStore = rulestore.NewCachedStore(client, result.Cache, ttl)
	}
	return nil
}

// applyResilience maps the configured resilience settings onto the client
// configuration. Disabled sections zero the corresponding knobs.
func applyResilience(cfg *rulestore.Config, rc domainconfig.ResilienceConfig) {
	if rc.Retry.Enabled {
		if rc.Retry.MaxAttempts > 0 {
			cfg.RetryMaxAttempts = rc.Retry.MaxAttempts
		}
		if d := rc.Retry.InitialDelay.Duration(); d > 0 {
			cfg.RetryInitialDelay = d
		}
		if rc.Retry.Multiplier > 0 {
			cfg.RetryMultiplier = rc.Retry.Multiplier
		}
	} else {
		cfg.RetryMaxAttempts = 0
	}

	if rc.CircuitBreaker.Enabled {
		if rc.CircuitBreaker.Threshold > 0 {
			cfg.BreakerThreshold = rc.CircuitBreaker.Threshold
		}
		if d := rc.CircuitBreaker.Timeout.Duration(); d > 0 {
			cfg.BreakerTimeout = d
		}
	} else {
		cfg.BreakerThreshold = 0
	}

	if rc.Bulkhead.Enabled {
		if rc.Bulkhead.MaxConcurrent > 0 {
			cfg.MaxConcurrent = rc.Bulkhead.MaxConcurrent
		}
	} else {
		cfg.MaxConcurrent = 0
	}
}

func (b *Builder) buildMiddleware(result *BuildResult) {
	chain := middleware.NewRegistry()
	chain.Use(inframw.Validation(inframw.DefaultValidationConfig()))
	chain.Use(inframw.Logging(inframw.LoggingConfig{}))

	if b.config.Observability.Enabled {
		chain.Use(inframw.Tracing(inframw.DefaultTracingConfig()))
		chain.Use(inframw.Metrics(inframw.MetricsConfig{Provider: result.Metrics}))
	}

	if ttl := b.config.Cache.TTL.Duration(); ttl > 0 {
		chain.Use(inframw.Caching(inframw.CachingConfig{
			Cache:    result.Cache,
			TTL:      ttl,
			Recorder: inframw.MetricsWithCaching(inframw.MetricsConfig{Provider: result.Metrics}),
		}))
	}

	result.Middleware = chain
}

func (b *Builder) buildServer(result *BuildResult) {
	result.Transport = b.config.Server.Transport
	if result.Transport == "" {
		result.Transport = "stdio"
	}
	result.Addr = b.config.Server.Addr
	if result.Addr == "" {
		result.Addr = ":8080"
	}

	if len(b.config.Context) > 0 {
		result.Context = make(param.Context, len(b.config.Context))
		for k, v := range b.config.Context {
			result.Context[k] = v
		}
	}
}

// BuildLogging translates the logging section into a logger configuration.
func (b *Builder) BuildLogging() logging.Config {
	lc := logging.DefaultConfig()
	if b.config.Logging.Level != "" {
		lc.Level = b.config.Logging.Level
	}
	if b.config.Logging.Format != "" {
		lc.Format = b.config.Logging.Format
	}
	lc.NoColor = b.config.Logging.NoColor
	return lc
}

// DefaultConfig returns a minimal default configuration.
func DefaultConfig() *domainconfig.Config {
	return &domainconfig.Config{
		Logging: domainconfig.LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		History: domainconfig.HistoryConfig{
			Backend:    "memory",
			MaxRecords: 10000,
		},
		Cache: domainconfig.CacheConfig{
			Backend: "memory",
			TTL:     domainconfig.Duration(5 * time.Minute),
		},
		Server: domainconfig.ServerConfig{
			Transport: "stdio",
			Addr:      ":8080",
		},
	}
}
