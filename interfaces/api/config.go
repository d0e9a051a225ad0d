package api

import (
	"context"
	"fmt"

	domainconfig "github.com/felixgeelhaar/checkwise/domain/config"
	infraconfig "github.com/felixgeelhaar/checkwise/infrastructure/config"

	"github.com/felixgeelhaar/checkwise/application"
	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
)

// Configuration types.
type (
	// Config is the full engine configuration.
	Config = domainconfig.Config

	// LoggingConfig tunes log level and format.
	LoggingConfig = domainconfig.LoggingConfig

	// RegistryConfig tunes handler dispatch.
	RegistryConfig = domainconfig.RegistryConfig

	// RuleStoreConfig points at the monitoring backend's rule API.
	RuleStoreConfig = domainconfig.RuleStoreConfig

	// ResilienceConfig tunes retry, circuit breaking and concurrency for
	// the rule store client.
	ResilienceConfig = domainconfig.ResilienceConfig

	// HistoryConfig selects and tunes the history backend.
	HistoryConfig = domainconfig.HistoryConfig

	// CacheConfig selects and tunes the cache backend.
	CacheConfig = domainconfig.CacheConfig

	// ObservabilityConfig enables tracing and metrics.
	ObservabilityConfig = domainconfig.ObservabilityConfig

	// ServerConfig tunes the MCP server transport.
	ServerConfig = domainconfig.ServerConfig

	// Duration is a duration that marshals as a string like "30s".
	Duration = domainconfig.Duration

	// ConfigLoader reads configuration from YAML or JSON.
	ConfigLoader = infraconfig.Loader

	// ConfigLoaderOption tunes a ConfigLoader.
	ConfigLoaderOption = infraconfig.LoaderOption

	// ConfigFormat names a configuration encoding.
	ConfigFormat = infraconfig.Format

	// ConfigWatcher reloads a configuration file when it changes on disk.
	ConfigWatcher = infraconfig.Watcher

	// ConfigBuilder constructs engine components from configuration.
	ConfigBuilder = infraconfig.Builder

	// BuildResult holds the components a ConfigBuilder assembled.
	BuildResult = infraconfig.BuildResult

	// ConfigSchema is a JSON Schema document.
	ConfigSchema = infraconfig.JSONSchema
)

// Configuration errors.
var (
	ErrConfigNotFound    = domainconfig.ErrConfigNotFound
	ErrInvalidFormat     = domainconfig.ErrInvalidFormat
	ErrUnsupportedFormat = domainconfig.ErrUnsupportedFormat
	ErrValidationFailed  = domainconfig.ErrValidationFailed
	ErrMissingEnvVar     = domainconfig.ErrMissingEnvVar
	ErrBuildFailed       = domainconfig.ErrBuildFailed
)

// NewConfigLoader creates a loader with env expansion and validation on.
func NewConfigLoader() *ConfigLoader {
	return infraconfig.NewLoader()
}

// NewConfigLoaderWithOptions creates a loader with explicit settings.
func NewConfigLoaderWithOptions(opts ...ConfigLoaderOption) *ConfigLoader {
	return infraconfig.NewLoaderWithOptions(opts...)
}

// ConfigWithEnvExpansion toggles ${VAR} expansion during loading.
func ConfigWithEnvExpansion(enabled bool) ConfigLoaderOption {
	return infraconfig.WithEnvExpansion(enabled)
}

// ConfigWithStrictEnv makes loading fail on unset environment variables.
func ConfigWithStrictEnv(enabled bool) ConfigLoaderOption {
	return infraconfig.WithStrictEnv(enabled)
}

// ConfigWithValidation toggles configuration validation after decoding.
func ConfigWithValidation(enabled bool) ConfigLoaderOption {
	return infraconfig.WithValidation(enabled)
}

// WatchConfig watches a configuration file and invokes onChange with each
// successfully reloaded configuration. Close the watcher to stop it.
func WatchConfig(path string, onChange func(*Config)) (*ConfigWatcher, error) {
	w, err := infraconfig.NewWatcher(path, nil, onChange)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}

// NewConfigBuilder creates a component builder for a configuration.
func NewConfigBuilder(cfg *Config) *ConfigBuilder {
	return infraconfig.NewBuilder(cfg)
}

// DefaultConfig returns a minimal working configuration: memory-backed
// history and cache, stdio server, no rule store.
func DefaultConfig() *Config {
	return infraconfig.DefaultConfig()
}

// GenerateConfigSchema describes the configuration as a JSON Schema.
func GenerateConfigSchema() *ConfigSchema {
	return infraconfig.GenerateSchema()
}

// ConfigSchemaJSON renders the configuration schema as indented JSON.
func ConfigSchemaJSON() (string, error) {
	return infraconfig.SchemaJSON()
}

// ExpandEnv substitutes ${VAR} and ${VAR:-default} references.
func ExpandEnv(input string) string {
	return infraconfig.ExpandEnv(input)
}

// ExpandEnvStrict is ExpandEnv but fails on unset variables without a
// default.
func ExpandEnvStrict(input string) (string, error) {
	return infraconfig.ExpandEnvStrict(input)
}

// Runtime is a fully assembled engine: the service, a reviewer when rule
// persistence is configured, and the underlying components.
type Runtime struct {
	// Service answers parameter operations.
	Service *Service

	// Reviewer audits existing rules. Nil without a rule store.
	Reviewer *Reviewer

	// Build exposes the assembled components, including the MCP server
	// settings and history retention.
	Build *BuildResult
}

// Close releases the runtime's components.
func (r *Runtime) Close(ctx context.Context) error {
	return r.Build.Close(ctx)
}

// FromFile loads a configuration file and assembles a runtime from it.
func FromFile(ctx context.Context, path string) (*Runtime, error) {
	cfg, err := NewConfigLoader().LoadFile(path)
	if err != nil {
		return nil, err
	}
	return FromConfig(ctx, cfg)
}

// FromConfig assembles a runtime from an in-memory configuration. Logging
// is initialized from the config's logging section unless a prior Init
// already claimed it.
func FromConfig(ctx context.Context, cfg *Config) (*Runtime, error) {
	builder := infraconfig.NewBuilder(cfg)
	logging.Init(builder.BuildLogging())

	result, err := builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	svc, err := application.NewServiceWithOptions(
		application.WithRegistry(result.Registry),
		application.WithRuleStore(result.RuleStore),
		application.WithHistoryStore(result.History),
		application.WithMiddleware(result.Middleware),
		application.WithMetrics(result.Metrics),
		application.WithFallbackRecorder(result.Fallbacks),
	)
	if err != nil {
		closeBuild(ctx, result)
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	runtime := &Runtime{
		Service: &Service{svc: svc, defaults: result.Context},
		Build:   result,
	}

	if result.RuleStore != nil {
		reviewer, err := NewReviewer(result.RuleStore, result.Registry)
		if err != nil {
			closeBuild(ctx, result)
			return nil, fmt.Errorf("%w: %v", ErrBuildFailed, err)
		}
		runtime.Reviewer = reviewer
	}

	return runtime, nil
}

func closeBuild(ctx context.Context, result *BuildResult) {
	if err := result.Close(ctx); err != nil {
		logging.Warn().
			Add(logging.ErrorField(err)).
			Msg("closing components after failed assembly")
	}
}
