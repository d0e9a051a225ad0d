package config

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDuration_JSON(t *testing.T) {
	tests := []struct {
		name string
		dur  Duration
		want string
	}{
		{name: "seconds", dur: Duration(30 * time.Second), want: `"30s"`},
		{name: "minutes", dur: Duration(5 * time.Minute), want: `"5m0s"`},
		{name: "zero", dur: Duration(0), want: `"0s"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.dur)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}

			var back Duration
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if back != tt.dur {
				t.Errorf("round-trip = %v, want %v", back.Duration(), tt.dur.Duration())
			}
		})
	}
}

func TestDuration_UnmarshalJSONErrors(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"not-a-duration"`), &d); err == nil {
		t.Error("Unmarshal() accepted invalid duration")
	}
	if err := json.Unmarshal([]byte(`null`), &d); err != nil {
		t.Errorf("Unmarshal(null) error = %v, want nil", err)
	}
}

func TestConfig_UnmarshalYAML(t *testing.T) {
	input := `
logging:
  level: debug
  format: console
registry:
  match_limit: 5
  disabled: [network_service]
  priorities:
    temperature: 1
rule_store:
  url: https://monitoring.example.com/api
  token: secret
  timeout: 10s
  cache_ttl: 1m
  resilience:
    retry:
      enabled: true
      max_attempts: 3
      initial_delay: 500ms
      multiplier: 2.0
    circuit_breaker:
      enabled: true
      threshold: 5
      timeout: 30s
    bulkhead:
      enabled: true
      max_concurrent: 8
history:
  backend: badger
  path: /var/lib/checkwise/history
  retention: 720h
cache:
  backend: redis
  addr: localhost:6379
  key_prefix: "checkwise:"
  ttl: 5m
observability:
  enabled: true
  service_name: checkwise
  endpoint: localhost:4317
  insecure: true
  sample_ratio: 0.25
server:
  transport: http
  addr: :8080
context:
  environment: production
`

	var cfg Config
	if err := yaml.Unmarshal([]byte(input), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Registry.MatchLimit != 5 {
		t.Errorf("Registry.MatchLimit = %d, want 5", cfg.Registry.MatchLimit)
	}
	if len(cfg.Registry.Disabled) != 1 || cfg.Registry.Disabled[0] != "network_service" {
		t.Errorf("Registry.Disabled = %v", cfg.Registry.Disabled)
	}
	if cfg.Registry.Priorities["temperature"] != 1 {
		t.Errorf("Registry.Priorities = %v", cfg.Registry.Priorities)
	}
	if cfg.RuleStore.Timeout.Duration() != 10*time.Second {
		t.Errorf("RuleStore.Timeout = %v, want 10s", cfg.RuleStore.Timeout.Duration())
	}
	if !cfg.RuleStore.Resilience.Retry.Enabled || cfg.RuleStore.Resilience.Retry.MaxAttempts != 3 {
		t.Errorf("Retry = %+v", cfg.RuleStore.Resilience.Retry)
	}
	if cfg.RuleStore.Resilience.Retry.InitialDelay.Duration() != 500*time.Millisecond {
		t.Errorf("InitialDelay = %v", cfg.RuleStore.Resilience.Retry.InitialDelay.Duration())
	}
	if cfg.History.Backend != "badger" || cfg.History.Retention.Duration() != 720*time.Hour {
		t.Errorf("History = %+v", cfg.History)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL.Duration() != 5*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if !cfg.Observability.Enabled || cfg.Observability.SampleRatio != 0.25 {
		t.Errorf("Observability = %+v", cfg.Observability)
	}
	if cfg.Server.Transport != "http" || cfg.Server.Addr != ":8080" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Context["environment"] != "production" {
		t.Errorf("Context = %v", cfg.Context)
	}
}

func TestConfig_MarshalYAMLRoundTrip(t *testing.T) {
	original := Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		RuleStore: RuleStoreConfig{
			URL:     "https://monitoring.example.com",
			Timeout: Duration(15 * time.Second),
		},
		History: HistoryConfig{Backend: "memory", MaxRecords: 1000},
	}

	data, err := yaml.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var back Config
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.RuleStore.Timeout != original.RuleStore.Timeout {
		t.Errorf("Timeout = %v, want %v", back.RuleStore.Timeout.Duration(), original.RuleStore.Timeout.Duration())
	}
	if back.History.MaxRecords != 1000 {
		t.Errorf("MaxRecords = %d, want 1000", back.History.MaxRecords)
	}
}
