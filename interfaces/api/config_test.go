package api_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/checkwise/infrastructure/registry"
	"github.com/felixgeelhaar/checkwise/interfaces/api"
)

func TestFromConfig(t *testing.T) {
	t.Run("assembles a working runtime", func(t *testing.T) {
		registry.ResetDefault()
		t.Cleanup(registry.ResetDefault)

		ctx := context.Background()
		runtime, err := api.FromConfig(ctx, api.DefaultConfig())
		if err != nil {
			t.Fatalf("FromConfig: %v", err)
		}
		t.Cleanup(func() {
			if err := runtime.Close(context.Background()); err != nil {
				t.Errorf("Close: %v", err)
			}
		})

		if runtime.Service == nil {
			t.Fatal("expected a service")
		}
		if runtime.Reviewer != nil {
			t.Error("no rule store configured, reviewer should be nil")
		}
		if runtime.Build.Transport != "stdio" {
			t.Errorf("transport = %q", runtime.Build.Transport)
		}

		res, err := runtime.Service.Defaults(ctx, api.Request{Service: "Temperature Zone 1"})
		if err != nil {
			t.Fatalf("Defaults: %v", err)
		}
		if !res.Success {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("builds a reviewer with a rule store", func(t *testing.T) {
		registry.ResetDefault()
		t.Cleanup(registry.ResetDefault)

		cfg := api.DefaultConfig()
		cfg.RuleStore.URL = "http://localhost:5000/check_mk/api/1.0"

		runtime, err := api.FromConfig(context.Background(), cfg)
		if err != nil {
			t.Fatalf("FromConfig: %v", err)
		}
		t.Cleanup(func() { _ = runtime.Close(context.Background()) })

		if runtime.Reviewer == nil {
			t.Fatal("expected a reviewer")
		}
	})

	t.Run("wraps build failures", func(t *testing.T) {
		registry.ResetDefault()
		t.Cleanup(registry.ResetDefault)

		cfg := api.DefaultConfig()
		cfg.History.Backend = "cassandra"

		_, err := api.FromConfig(context.Background(), cfg)
		if !errors.Is(err, api.ErrBuildFailed) {
			t.Fatalf("expected ErrBuildFailed, got %v", err)
		}
	})
}

func TestFromFile(t *testing.T) {
	t.Run("loads yaml and assembles", func(t *testing.T) {
		registry.ResetDefault()
		t.Cleanup(registry.ResetDefault)

		path := filepath.Join(t.TempDir(), "checkwise.yaml")
		content := `
logging:
  level: error
history:
  backend: memory
  max_records: 100
cache:
  backend: memory
server:
  transport: stdio
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}

		runtime, err := api.FromFile(context.Background(), path)
		if err != nil {
			t.Fatalf("FromFile: %v", err)
		}
		t.Cleanup(func() { _ = runtime.Close(context.Background()) })

		if runtime.Service == nil {
			t.Fatal("expected a service")
		}
	})

	t.Run("reports missing files", func(t *testing.T) {
		_, err := api.FromFile(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, api.ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestConfigSchemaJSON(t *testing.T) {
	out, err := api.ConfigSchemaJSON()
	if err != nil {
		t.Fatalf("ConfigSchemaJSON: %v", err)
	}
	for _, section := range []string{"logging", "rule_store", "history", "cache", "observability", "server"} {
		if !strings.Contains(out, `"`+section+`"`) {
			t.Errorf("schema misses section %q", section)
		}
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("CHECKWISE_TEST_TOKEN", "secret")

	if got := api.ExpandEnv("token: ${CHECKWISE_TEST_TOKEN}"); got != "token: secret" {
		t.Errorf("ExpandEnv = %q", got)
	}

	if _, err := api.ExpandEnvStrict("${CHECKWISE_TEST_UNSET_VAR}"); !errors.Is(err, api.ErrMissingEnvVar) {
		t.Fatalf("expected ErrMissingEnvVar, got %v", err)
	}
}
