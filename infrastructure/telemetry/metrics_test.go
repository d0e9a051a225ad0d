package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupTestMetrics sets up a test meter provider and returns it along with a reader.
func setupTestMetrics(t *testing.T) (*metric.ManualReader, *MetricsProvider) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)

	mp := NewMetricsProvider(DefaultMetricsConfig())
	if mp.Error() != nil {
		t.Fatalf("failed to create metrics provider: %v", mp.Error())
	}

	return reader, mp
}

func TestNewMetricsProvider(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	if mp == nil {
		t.Fatal("NewMetricsProvider returned nil")
	}
	if mp.Error() != nil {
		t.Errorf("unexpected error: %v", mp.Error())
	}
}

func TestMetricsProvider_RecordOperation(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()

	// Record a successful operation
	mp.RecordOperation(ctx, "validate", "filesystem", true, 100*time.Millisecond)

	// Record a failed operation
	mp.RecordOperation(ctx, "apply", "cpu", false, 50*time.Millisecond)

	// Collect and verify metrics
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	// Verify we have metrics
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "checkwise.operations" {
				found = true
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok {
					t.Errorf("expected Sum[int64], got %T", m.Data)
					continue
				}
				// We recorded 2 operations
				var total int64
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
				if total != 2 {
					t.Errorf("expected 2 operations, got %d", total)
				}
			}
		}
	}
	if !found {
		t.Error("checkwise.operations metric not found")
	}
}

func TestMetricsProvider_RecordValidationProblems(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()

	mp.RecordValidationProblems(ctx, "filesystem", 2, 1)
	mp.RecordValidationProblems(ctx, "cpu", 0, 0)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "checkwise.validation.problems" {
				found = true
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok {
					t.Errorf("expected Sum[int64], got %T", m.Data)
					continue
				}
				var total int64
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
				if total != 3 {
					t.Errorf("expected 3 problems, got %d", total)
				}
			}
		}
	}
	if !found {
		t.Error("checkwise.validation.problems metric not found")
	}
}

func TestMetricsProvider_RecordDispatchFallback(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()

	mp.RecordDispatchFallback(ctx, "defaults")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "checkwise.dispatch.fallbacks" {
				found = true
			}
		}
	}
	if !found {
		t.Error("checkwise.dispatch.fallbacks metric not found")
	}
}

func TestMetricsProvider_RecordRuleApplied(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()

	mp.RecordRuleApplied(ctx, "checkgroup_parameters:filesystem", true)
	mp.RecordRuleApplied(ctx, "checkgroup_parameters:filesystem", false)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "checkwise.rules.applied" {
				found = true
			}
		}
	}
	if !found {
		t.Error("checkwise.rules.applied metric not found")
	}
}

func TestMetricsProvider_RecordCacheHitMiss(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()

	mp.RecordCacheHit(ctx, "defaults")
	mp.RecordCacheMiss(ctx, "rules")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	foundHits := false
	foundMisses := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "checkwise.cache.hits" {
				foundHits = true
			}
			if m.Name == "checkwise.cache.misses" {
				foundMisses = true
			}
		}
	}
	if !foundHits {
		t.Error("checkwise.cache.hits metric not found")
	}
	if !foundMisses {
		t.Error("checkwise.cache.misses metric not found")
	}
}

func TestMetricsProvider_RecordActiveOperations(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()

	mp.IncrementActiveOperations(ctx)
	mp.IncrementActiveOperations(ctx)
	mp.DecrementActiveOperations(ctx)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "checkwise.operations.active" {
				found = true
			}
		}
	}
	if !found {
		t.Error("checkwise.operations.active metric not found")
	}
}

func TestMetricsProvider_RecordHandlerRegistration(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()

	mp.RecordHandlerRegistration(ctx, "filesystem", true)
	mp.RecordHandlerRegistration(ctx, "filesystem", false)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "checkwise.handlers.registered" {
				found = true
			}
		}
	}
	if !found {
		t.Error("checkwise.handlers.registered metric not found")
	}
}

func TestMetricsProvider_RecordError(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()

	mp.RecordError(ctx, "validation", map[string]string{
		"handler.name": "filesystem",
		"reason":       "invalid levels",
	})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "checkwise.errors" {
				found = true
			}
		}
	}
	if !found {
		t.Error("checkwise.errors metric not found")
	}
}

func TestMetricsProvider_RecordDurations(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()

	mp.RecordHandlerDuration(ctx, 50*time.Millisecond, "filesystem", "validate")
	mp.RecordStoreDuration(ctx, 1*time.Second, "put", true)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	foundHandler := false
	foundStore := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "checkwise.handler.duration" {
				foundHandler = true
			}
			if m.Name == "checkwise.store.duration" {
				foundStore = true
			}
		}
	}
	if !foundHandler {
		t.Error("checkwise.handler.duration metric not found")
	}
	if !foundStore {
		t.Error("checkwise.store.duration metric not found")
	}
}

func TestNoopMetricsProvider(t *testing.T) {
	// Verify that NoopMetricsProvider doesn't panic
	noop := &NoopMetricsProvider{}
	ctx := context.Background()

	noop.RecordOperation(ctx, "validate", "filesystem", true, time.Second)
	noop.RecordValidationProblems(ctx, "filesystem", 1, 2)
	noop.RecordDispatchFallback(ctx, "defaults")
	noop.RecordRuleApplied(ctx, "checkgroup_parameters:filesystem", true)
	noop.RecordCacheHit(ctx, "defaults")
	noop.RecordCacheMiss(ctx, "defaults")
	noop.RecordError(ctx, "type", nil)
	noop.RecordHandlerDuration(ctx, time.Second, "filesystem", "defaults")
	noop.RecordStoreDuration(ctx, time.Second, "get", true)
	noop.IncrementActiveOperations(ctx)
	noop.DecrementActiveOperations(ctx)
	noop.RecordHandlerRegistration(ctx, "filesystem", true)
}

func TestDefaultMetricsConfig(t *testing.T) {
	config := DefaultMetricsConfig()

	if config.MeterName == "" {
		t.Error("MeterName should not be empty")
	}
	if config.MeterVersion == "" {
		t.Error("MeterVersion should not be empty")
	}
}
