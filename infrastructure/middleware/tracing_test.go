package middleware_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	domainmw "github.com/felixgeelhaar/checkwise/domain/middleware"
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/suggestion"
	mw "github.com/felixgeelhaar/checkwise/infrastructure/middleware"
)

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}

func TestTracing(t *testing.T) {
	t.Parallel()

	t.Run("passes outcome through", func(t *testing.T) {
		t.Parallel()

		middleware := mw.Tracing(mw.TracingConfig{Tracer: testTracer()})

		res := param.NewResult(param.Parameters{"levels": []any{80.0, 90.0}})
		handler := middleware(createTestHandler(&domainmw.Outcome{Result: res, RuleID: "rule-7"}, nil))

		op := &domainmw.OperationContext{
			Action:  domainmw.OpValidate,
			Service: "Filesystem /var",
			Host:    "web-01",
			Params:  param.Parameters{"levels": []any{80.0, 90.0}},
		}

		out, err := handler(context.Background(), op)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Result != res || out.RuleID != "rule-7" {
			t.Error("expected outcome to pass through unchanged")
		}
	})

	t.Run("passes errors through", func(t *testing.T) {
		t.Parallel()

		middleware := mw.Tracing(mw.TracingConfig{Tracer: testTracer()})

		handlerErr := errors.New("no handler matched")
		handler := middleware(createTestHandler(nil, handlerErr))

		op := &domainmw.OperationContext{Action: domainmw.OpDefaults, Service: "nonsense"}
		_, err := handler(context.Background(), op)
		if !errors.Is(err, handlerErr) {
			t.Fatalf("error = %v, want %v", err, handlerErr)
		}
	})

	t.Run("records params when enabled", func(t *testing.T) {
		t.Parallel()

		middleware := mw.Tracing(mw.TracingConfig{
			Tracer:       testTracer(),
			RecordParams: true,
		})

		handler := middleware(createTestHandler(&domainmw.Outcome{Result: param.NewResult(nil)}, nil))

		op := &domainmw.OperationContext{
			Action:  domainmw.OpValidate,
			Service: "PostgreSQL Sessions",
			Params:  param.Parameters{"levels_sessions": []any{100.0, 200.0}},
		}
		if _, err := handler(context.Background(), op); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("records messages when enabled", func(t *testing.T) {
		t.Parallel()

		middleware := mw.Tracing(mw.TracingConfig{
			Tracer:         testTracer(),
			RecordMessages: true,
		})

		res := param.NewResult(nil)
		res.AddError("levels", "unknown parameter")
		handler := middleware(createTestHandler(&domainmw.Outcome{Result: res}, nil))

		op := &domainmw.OperationContext{
			Action:  domainmw.OpValidate,
			Service: "CPU load",
			Params:  param.Parameters{"levels": []any{80.0, 90.0}},
		}
		if _, err := handler(context.Background(), op); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("records suggestion outcomes", func(t *testing.T) {
		t.Parallel()

		middleware := mw.Tracing(mw.TracingConfig{Tracer: testTracer()})

		suggestions := []suggestion.Suggestion{
			suggestion.New(suggestion.KindTightenThreshold, "levels", "headroom unused"),
			suggestion.New(suggestion.KindAddParameter, "trend_range", "enable trending"),
		}
		handler := middleware(createTestHandler(&domainmw.Outcome{Suggestions: suggestions}, nil))

		op := &domainmw.OperationContext{Action: domainmw.OpSuggest, Service: "Filesystem /var"}
		out, err := handler(context.Background(), op)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Suggestions) != 2 {
			t.Errorf("suggestions = %d, want 2", len(out.Suggestions))
		}
	})

	t.Run("truncates oversized service descriptions", func(t *testing.T) {
		t.Parallel()

		middleware := mw.Tracing(mw.TracingConfig{
			Tracer:           testTracer(),
			MaxAttributeSize: 16,
		})

		handler := middleware(createTestHandler(&domainmw.Outcome{Result: param.NewResult(nil)}, nil))

		op := &domainmw.OperationContext{
			Action:  domainmw.OpDefaults,
			Service: strings.Repeat("long description ", 100),
		}
		if _, err := handler(context.Background(), op); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestNewTracing(t *testing.T) {
	t.Parallel()

	middleware := mw.NewTracing(
		mw.WithTracer(testTracer()),
		mw.WithTracerName("custom"),
		mw.WithParamRecording(false),
		mw.WithMessageRecording(true),
		mw.WithMaxAttributeSize(256),
		mw.WithSpanNamePrefix("checks."),
		mw.WithAdditionalAttributes(attribute.String("deployment", "test")),
	)

	handler := middleware(createTestHandler(&domainmw.Outcome{Result: param.NewResult(nil)}, nil))

	op := &domainmw.OperationContext{Action: domainmw.OpDefaults, Service: "CPU load"}
	out, err := handler(context.Background(), op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil || out.Result == nil {
		t.Error("expected outcome from downstream handler")
	}
}

func TestDefaultTracingConfig(t *testing.T) {
	t.Parallel()

	cfg := mw.DefaultTracingConfig()
	if cfg.TracerName != "checkwise" {
		t.Errorf("TracerName = %s, want checkwise", cfg.TracerName)
	}
	if !cfg.RecordParams {
		t.Error("expected RecordParams to default on")
	}
	if cfg.RecordMessages {
		t.Error("expected RecordMessages to default off")
	}
	if cfg.MaxAttributeSize != 1024 {
		t.Errorf("MaxAttributeSize = %d, want 1024", cfg.MaxAttributeSize)
	}
	if cfg.SpanNamePrefix != "params." {
		t.Errorf("SpanNamePrefix = %s, want params.", cfg.SpanNamePrefix)
	}
}

func TestTracingOptions(t *testing.T) {
	t.Parallel()

	cfg := mw.DefaultTracingConfig()

	mw.WithTracerName("other")(&cfg)
	mw.WithParamRecording(false)(&cfg)
	mw.WithMessageRecording(true)(&cfg)
	mw.WithMaxAttributeSize(64)(&cfg)
	mw.WithSpanNamePrefix("ops.")(&cfg)
	mw.WithAdditionalAttributes(attribute.String("env", "ci"))(&cfg)

	if cfg.TracerName != "other" {
		t.Errorf("TracerName = %s, want other", cfg.TracerName)
	}
	if cfg.RecordParams {
		t.Error("expected RecordParams off")
	}
	if !cfg.RecordMessages {
		t.Error("expected RecordMessages on")
	}
	if cfg.MaxAttributeSize != 64 {
		t.Errorf("MaxAttributeSize = %d, want 64", cfg.MaxAttributeSize)
	}
	if cfg.SpanNamePrefix != "ops." {
		t.Errorf("SpanNamePrefix = %s, want ops.", cfg.SpanNamePrefix)
	}
	if len(cfg.AdditionalAttributes) != 1 {
		t.Errorf("AdditionalAttributes = %d, want 1", len(cfg.AdditionalAttributes))
	}
}

func TestSpanHelpers(t *testing.T) {
	t.Parallel()

	ctx, span := mw.ContextWithSpan(context.Background(), "dispatch.match")
	if span == nil {
		t.Fatal("expected a span")
	}
	defer span.End()

	if mw.SpanFromContext(ctx) == nil {
		t.Error("expected span from context")
	}

	mw.AddSpanEvent(ctx, "rule.matched", attribute.String("rule.id", "rule-7"))
	mw.AddSpanAttributes(ctx, attribute.Int("candidates", 3))
	mw.RecordSpanError(ctx, errors.New("rule store unavailable"))
}

func TestOperationSpanAttributes(t *testing.T) {
	t.Parallel()

	op := &domainmw.OperationContext{
		Action:  domainmw.OpValidate,
		Service: "Filesystem /var",
	}

	attrs := mw.OperationSpanAttributes(op)
	if len(attrs) != 2 {
		t.Fatalf("attrs = %d, want 2", len(attrs))
	}
	if attrs[0].Key != "operation.action" || attrs[0].Value.AsString() != "validate" {
		t.Errorf("attrs[0] = %s=%s", attrs[0].Key, attrs[0].Value.AsString())
	}

	op.Host = "web-01"
	op.HandlerName = "filesystem"
	attrs = mw.OperationSpanAttributes(op)
	if len(attrs) != 4 {
		t.Fatalf("attrs with host and handler = %d, want 4", len(attrs))
	}
}

func TestStartOperationSpan(t *testing.T) {
	t.Parallel()

	op := &domainmw.OperationContext{
		Action:  domainmw.OpDefaults,
		Service: "CPU Temperature",
		Host:    "db-01",
	}

	ctx, span := mw.StartOperationSpan(context.Background(), op)
	if span == nil {
		t.Fatal("expected a span")
	}
	span.End()

	if ctx == nil {
		t.Fatal("expected a context")
	}
}
