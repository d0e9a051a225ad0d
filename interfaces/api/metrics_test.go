package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/checkwise/interfaces/api"
)

func TestNewMetricsProvider(t *testing.T) {
	provider := api.NewMetricsProvider(api.DefaultMetricsConfig())
	if provider == nil {
		t.Fatal("expected a provider")
	}
	if err := provider.Error(); err != nil {
		t.Fatalf("instrument init: %v", err)
	}

	// The global meter provider is a no-op by default; recording must
	// still be safe.
	ctx := context.Background()
	provider.RecordOperation(ctx, "defaults", "thermo", true, 5*time.Millisecond)
	provider.RecordValidationProblems(ctx, "thermo", 1, 2)
	provider.RecordRuleApplied(ctx, "checkgroup_temperature", true)
}

func TestWithMetrics(t *testing.T) {
	h := newFakeHandler()
	svc, err := api.New(
		api.WithRegistry(api.NewRegistry()),
		api.WithHandler(registration(h)),
		api.WithMetrics(&api.NoopMetricsProvider{}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := svc.Defaults(context.Background(), api.Request{Service: "Temperature Zone 1"}); err != nil {
		t.Fatalf("Defaults through metrics middleware: %v", err)
	}
}

func TestMetricsRecorders(t *testing.T) {
	provider := &api.NoopMetricsProvider{}
	ctx := context.Background()

	cacheRec := api.NewCacheMetricsRecorder(provider)
	if cacheRec == nil {
		t.Fatal("expected a cache recorder")
	}
	cacheRec.RecordHit(ctx, "defaults")
	cacheRec.RecordMiss(ctx, "defaults")

	fallbackRec := api.NewFallbackMetricsRecorder(provider)
	if fallbackRec == nil {
		t.Fatal("expected a fallback recorder")
	}
	fallbackRec.RecordFallback(ctx, "apply")

	regRec := api.NewRegistrationMetricsRecorder(provider)
	if regRec == nil {
		t.Fatal("expected a registration recorder")
	}
	regRec.RecordChange(ctx, "thermo", true)
}
