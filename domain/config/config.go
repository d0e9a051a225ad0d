// Package config provides domain models for checkwise configuration.
package config

import "time"

// Config is the complete checkwise configuration.
type Config struct {
	// Logging configures log output.
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
	// Registry tunes handler registration and matching.
	Registry RegistryConfig `json:"registry,omitempty" yaml:"registry,omitempty"`
	// RuleStore configures the monitoring backend client.
	RuleStore RuleStoreConfig `json:"rule_store,omitempty" yaml:"rule_store,omitempty"`
	// History configures evaluation history persistence.
	History HistoryConfig `json:"history,omitempty" yaml:"history,omitempty"`
	// Cache configures the response cache.
	Cache CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
	// Observability configures tracing and metrics.
	Observability ObservabilityConfig `json:"observability,omitempty" yaml:"observability,omitempty"`
	// Server configures the tool server transport.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`
	// Context is the default evaluation context merged into every request,
	// for example environment or criticality.
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is the minimum level (trace, debug, info, warn, error, fatal).
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format selects json or console output.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	// NoColor disables colored console output.
	NoColor bool `json:"no_color,omitempty" yaml:"no_color,omitempty"`
}

// RegistryConfig tunes handler registration and matching.
type RegistryConfig struct {
	// MatchLimit caps how many handlers a lookup returns (0 = default).
	MatchLimit int `json:"match_limit,omitempty" yaml:"match_limit,omitempty"`
	// Disabled lists built-in handlers to disable at startup.
	Disabled []string `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	// Priorities overrides built-in handler priorities by name.
	Priorities map[string]int `json:"priorities,omitempty" yaml:"priorities,omitempty"`
}

// RuleStoreConfig configures the monitoring backend client. An empty URL
// disables rule persistence.
type RuleStoreConfig struct {
	// URL is the backend base URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Token is the bearer token for authentication.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
	// Timeout is the per-request timeout.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// CacheTTL enables read-through caching of GET responses when positive.
	CacheTTL Duration `json:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty"`
	// Resilience configures retry, circuit breaker and bulkhead behavior.
	Resilience ResilienceConfig `json:"resilience,omitempty" yaml:"resilience,omitempty"`
}

// ResilienceConfig contains resilience settings for backend calls.
type ResilienceConfig struct {
	// Retry configures retry behavior.
	Retry RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
	// CircuitBreaker configures circuit breaker behavior.
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
	// Bulkhead configures concurrency limiting.
	Bulkhead BulkheadConfig `json:"bulkhead,omitempty" yaml:"bulkhead,omitempty"`
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// Enabled enables retry.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// MaxAttempts is the maximum number of attempts.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	// InitialDelay is the first retry delay.
	InitialDelay Duration `json:"initial_delay,omitempty" yaml:"initial_delay,omitempty"`
	// Multiplier is the backoff multiplier.
	Multiplier float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// Enabled enables the circuit breaker.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Threshold is the failure count before the circuit opens.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// Timeout is how long the circuit stays open.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// BulkheadConfig configures concurrency limiting.
type BulkheadConfig struct {
	// Enabled enables the bulkhead.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// MaxConcurrent is the maximum concurrent backend calls.
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
}

// HistoryConfig configures evaluation history persistence.
type HistoryConfig struct {
	// Backend selects the store: memory, badger or postgres.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	// Path is the on-disk directory for the badger backend.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// DSN is the connection string for the postgres backend.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	// Retention prunes records older than this age (0 = keep forever).
	Retention Duration `json:"retention,omitempty" yaml:"retention,omitempty"`
	// MaxRecords caps the in-memory backend (0 = unbounded).
	MaxRecords int `json:"max_records,omitempty" yaml:"max_records,omitempty"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Backend selects the cache: memory or redis.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	// Addr is the redis server address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
	// Password is the redis password.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// DB is the redis database number.
	DB int `json:"db,omitempty" yaml:"db,omitempty"`
	// KeyPrefix namespaces cache keys.
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
	// TTL is the default entry lifetime.
	TTL Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// ObservabilityConfig configures tracing and metrics.
type ObservabilityConfig struct {
	// Enabled turns telemetry export on.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// ServiceName identifies this process in telemetry.
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty"`
	// Endpoint is the OTLP gRPC collector endpoint.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// Insecure disables TLS for the collector connection.
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	// SampleRatio is the trace sampling ratio in [0, 1].
	SampleRatio float64 `json:"sample_ratio,omitempty" yaml:"sample_ratio,omitempty"`
	// Stdout exports spans to stdout instead of a collector.
	Stdout bool `json:"stdout,omitempty" yaml:"stdout,omitempty"`
}

// ServerConfig configures the tool server transport.
type ServerConfig struct {
	// Transport selects stdio or http.
	Transport string `json:"transport,omitempty" yaml:"transport,omitempty"`
	// Addr is the listen address for the http transport.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
