package telemetry_test

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/checkwise/domain/telemetry"
)

func TestAttributeHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attr  telemetry.Attribute
		key   string
		value any
	}{
		{"String", telemetry.String("handler", "filesystem"), "handler", "filesystem"},
		{"Int", telemetry.Int("errors", 2), "errors", 2},
		{"Int64", telemetry.Int64("records", int64(1048576)), "records", int64(1048576)},
		{"Float64", telemetry.Float64("sample_ratio", 0.25), "sample_ratio", 0.25},
		{"Bool", telemetry.Bool("valid", true), "valid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.attr.Key != tt.key {
				t.Errorf("Key = %s, want %s", tt.attr.Key, tt.key)
			}
			if tt.attr.Value != tt.value {
				t.Errorf("Value = %v, want %v", tt.attr.Value, tt.value)
			}
		})
	}
}

func TestWithAttributes(t *testing.T) {
	t.Parallel()

	t.Run("adds attributes to config", func(t *testing.T) {
		t.Parallel()

		opt := telemetry.WithAttributes(
			telemetry.String("service", "Filesystem /var"),
			telemetry.Int("warnings", 1),
		)

		config := &telemetry.SpanConfig{}
		opt.ApplySpan(config)

		if len(config.Attributes) != 2 {
			t.Fatalf("Attributes len = %d, want 2", len(config.Attributes))
		}
		if config.Attributes[0].Key != "service" {
			t.Errorf("Attributes[0].Key = %s, want service", config.Attributes[0].Key)
		}
	})

	t.Run("appends to existing attributes", func(t *testing.T) {
		t.Parallel()

		config := &telemetry.SpanConfig{
			Attributes: []telemetry.Attribute{telemetry.String("action", "validate")},
		}

		opt := telemetry.WithAttributes(telemetry.Bool("valid", false))
		opt.ApplySpan(config)

		if len(config.Attributes) != 2 {
			t.Fatalf("Attributes len = %d, want 2", len(config.Attributes))
		}
	})
}

func TestWithSpanKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kind telemetry.SpanKind
	}{
		{"Internal", telemetry.SpanKindInternal},
		{"Server", telemetry.SpanKindServer},
		{"Client", telemetry.SpanKindClient},
		{"Producer", telemetry.SpanKindProducer},
		{"Consumer", telemetry.SpanKindConsumer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opt := telemetry.WithSpanKind(tt.kind)

			config := &telemetry.SpanConfig{}
			opt.ApplySpan(config)

			if config.Kind != tt.kind {
				t.Errorf("Kind = %d, want %d", config.Kind, tt.kind)
			}
		})
	}
}

func TestSpanKindConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     telemetry.SpanKind
		expected int
	}{
		{"Unspecified", telemetry.SpanKindUnspecified, 0},
		{"Internal", telemetry.SpanKindInternal, 1},
		{"Server", telemetry.SpanKindServer, 2},
		{"Client", telemetry.SpanKindClient, 3},
		{"Producer", telemetry.SpanKindProducer, 4},
		{"Consumer", telemetry.SpanKindConsumer, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if int(tt.kind) != tt.expected {
				t.Errorf("%s = %d, want %d", tt.name, tt.kind, tt.expected)
			}
		})
	}
}

func TestStatusCodeConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		code     telemetry.StatusCode
		expected int
	}{
		{"Unset", telemetry.StatusCodeUnset, 0},
		{"OK", telemetry.StatusCodeOK, 1},
		{"Error", telemetry.StatusCodeError, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if int(tt.code) != tt.expected {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestMetricOptions(t *testing.T) {
	t.Parallel()

	t.Run("WithDescription", func(t *testing.T) {
		t.Parallel()

		opt := telemetry.WithDescription("Total number of parameter validations")

		config := &telemetry.MetricConfig{}
		opt.ApplyMetric(config)

		if config.Description != "Total number of parameter validations" {
			t.Errorf("Description = %s", config.Description)
		}
	})

	t.Run("WithUnit", func(t *testing.T) {
		t.Parallel()

		opt := telemetry.WithUnit("s")

		config := &telemetry.MetricConfig{}
		opt.ApplyMetric(config)

		if config.Unit != "s" {
			t.Errorf("Unit = %s, want s", config.Unit)
		}
	})
}

func TestSpanOptionFunc(t *testing.T) {
	t.Parallel()

	customOpt := telemetry.SpanOptionFunc(func(c *telemetry.SpanConfig) {
		c.Kind = telemetry.SpanKindClient
		c.Attributes = append(c.Attributes, telemetry.String("backend", "redis"))
	})

	config := &telemetry.SpanConfig{}
	customOpt.ApplySpan(config)

	if config.Kind != telemetry.SpanKindClient {
		t.Errorf("Kind = %d, want SpanKindClient", config.Kind)
	}
	if len(config.Attributes) != 1 {
		t.Errorf("Attributes len = %d, want 1", len(config.Attributes))
	}
}

func TestMetricOptionFunc(t *testing.T) {
	t.Parallel()

	customOpt := telemetry.MetricOptionFunc(func(c *telemetry.MetricConfig) {
		c.Description = "Duration of handler dispatch"
		c.Unit = "ms"
	})

	config := &telemetry.MetricConfig{}
	customOpt.ApplyMetric(config)

	if config.Description != "Duration of handler dispatch" {
		t.Errorf("Description = %s", config.Description)
	}
	if config.Unit != "ms" {
		t.Errorf("Unit = %s, want ms", config.Unit)
	}
}

func TestDomainErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{
			name: "ErrExporterFailed",
			err:  telemetry.ErrExporterFailed,
			msg:  "telemetry exporter failed",
		},
		{
			name: "ErrShutdownFailed",
			err:  telemetry.ErrShutdownFailed,
			msg:  "telemetry shutdown failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.err.Error() != tt.msg {
				t.Errorf("%s.Error() = %s, want %s", tt.name, tt.err.Error(), tt.msg)
			}
			if !errors.Is(tt.err, tt.err) {
				t.Errorf("errors.Is(%s, %s) = false", tt.name, tt.name)
			}
		})
	}
}
