package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates checkwise configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *Config) ValidationErrors {
	v.errors = nil

	v.validateLogging(config)
	v.validateRegistry(config)
	v.validateRuleStore(config)
	v.validateHistory(config)
	v.validateCache(config)
	v.validateObservability(config)
	v.validateServer(config)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validateLogging(config *Config) {
	if config.Logging.Level != "" {
		validLevels := map[string]bool{
			"trace": true, "debug": true, "info": true,
			"warn": true, "error": true, "fatal": true,
		}
		if !validLevels[strings.ToLower(config.Logging.Level)] {
			v.addError("logging.level", fmt.Sprintf("invalid level: %s", config.Logging.Level))
		}
	}
	if config.Logging.Format != "" {
		validFormats := map[string]bool{"json": true, "console": true}
		if !validFormats[strings.ToLower(config.Logging.Format)] {
			v.addError("logging.format", fmt.Sprintf("invalid format: %s", config.Logging.Format))
		}
	}
}

func (v *Validator) validateRegistry(config *Config) {
	if config.Registry.MatchLimit < 0 {
		v.addError("registry.match_limit", "match_limit must be non-negative")
	}
	for name, priority := range config.Registry.Priorities {
		if priority < 0 {
			v.addError(fmt.Sprintf("registry.priorities.%s", name), "priority must be non-negative")
		}
	}
}

func (v *Validator) validateRuleStore(config *Config) {
	rs := config.RuleStore
	if rs.URL != "" {
		u, err := url.Parse(rs.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			v.addError("rule_store.url", fmt.Sprintf("invalid URL: %s", rs.URL))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			v.addError("rule_store.url", fmt.Sprintf("unsupported scheme: %s", u.Scheme))
		}
	}
	if rs.Timeout < 0 {
		v.addError("rule_store.timeout", "timeout must be non-negative")
	}
	if rs.CacheTTL < 0 {
		v.addError("rule_store.cache_ttl", "cache_ttl must be non-negative")
	}

	if rs.Resilience.Retry.Enabled {
		if rs.Resilience.Retry.MaxAttempts <= 0 {
			v.addError("rule_store.resilience.retry.max_attempts", "max_attempts must be positive when enabled")
		}
		if rs.Resilience.Retry.Multiplier != 0 && rs.Resilience.Retry.Multiplier < 1 {
			v.addError("rule_store.resilience.retry.multiplier", "multiplier must be >= 1")
		}
	}
	if rs.Resilience.CircuitBreaker.Enabled && rs.Resilience.CircuitBreaker.Threshold <= 0 {
		v.addError("rule_store.resilience.circuit_breaker.threshold", "threshold must be positive when enabled")
	}
	if rs.Resilience.Bulkhead.Enabled && rs.Resilience.Bulkhead.MaxConcurrent <= 0 {
		v.addError("rule_store.resilience.bulkhead.max_concurrent", "max_concurrent must be positive when enabled")
	}
}

func (v *Validator) validateHistory(config *Config) {
	h := config.History
	switch h.Backend {
	case "", "memory":
	case "badger":
		if h.Path == "" {
			v.addError("history.path", "path is required for the badger backend")
		}
	case "postgres":
		if h.DSN == "" {
			v.addError("history.dsn", "dsn is required for the postgres backend")
		}
	default:
		v.addError("history.backend", fmt.Sprintf("unknown backend: %s", h.Backend))
	}
	if h.Retention < 0 {
		v.addError("history.retention", "retention must be non-negative")
	}
	if h.MaxRecords < 0 {
		v.addError("history.max_records", "max_records must be non-negative")
	}
}

func (v *Validator) validateCache(config *Config) {
	c := config.Cache
	switch c.Backend {
	case "", "memory":
	case "redis":
		if c.Addr == "" {
			v.addError("cache.addr", "addr is required for the redis backend")
		}
	default:
		v.addError("cache.backend", fmt.Sprintf("unknown backend: %s", c.Backend))
	}
	if c.DB < 0 {
		v.addError("cache.db", "db must be non-negative")
	}
	if c.TTL < 0 {
		v.addError("cache.ttl", "ttl must be non-negative")
	}
}

func (v *Validator) validateObservability(config *Config) {
	o := config.Observability
	if !o.Enabled {
		return
	}
	if o.SampleRatio < 0 || o.SampleRatio > 1 {
		v.addError("observability.sample_ratio", "sample_ratio must be between 0 and 1")
	}
	if o.Endpoint == "" && !o.Stdout {
		v.addError("observability.endpoint", "endpoint is required unless stdout export is enabled")
	}
}

func (v *Validator) validateServer(config *Config) {
	s := config.Server
	switch s.Transport {
	case "", "stdio":
	case "http":
		if s.Addr == "" {
			v.addError("server.addr", "addr is required for the http transport")
		}
	default:
		v.addError("server.transport", fmt.Sprintf("unknown transport: %s", s.Transport))
	}
}
