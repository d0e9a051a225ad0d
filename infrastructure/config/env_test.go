package config

import (
	"errors"
	"os"
	"testing"

	domainconfig "github.com/felixgeelhaar/checkwise/domain/config"
)

func TestExpandEnv_Simple(t *testing.T) {
	os.Setenv("TEST_VAR", "hello")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bracket syntax", input: "${TEST_VAR}", want: "hello"},
		{name: "dollar syntax", input: "$TEST_VAR", want: "hello"},
		{name: "embedded in text", input: "prefix-${TEST_VAR}-suffix", want: "prefix-hello-suffix"},
		{name: "multiple references", input: "${TEST_VAR} and $TEST_VAR", want: "hello and hello"},
		{name: "no references", input: "plain text", want: "plain text"},
		{name: "unset variable", input: "${TEST_UNSET_VAR}", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandEnv_DefaultValue(t *testing.T) {
	os.Setenv("TEST_SET", "actual")
	defer os.Unsetenv("TEST_SET")
	os.Unsetenv("TEST_UNSET")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "set variable ignores default", input: "${TEST_SET:-fallback}", want: "actual"},
		{name: "unset variable uses default", input: "${TEST_UNSET:-fallback}", want: "fallback"},
		{name: "default with colon", input: "${TEST_UNSET:-http://example.com}", want: "http://example.com"},
		{name: "empty default", input: "${TEST_UNSET:-}", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandEnv_Required(t *testing.T) {
	os.Unsetenv("TEST_REQUIRED")

	_, err := ExpandEnvStrict("${TEST_REQUIRED:?token is required}")
	if !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Fatalf("error = %v, want ErrMissingEnvVar", err)
	}

	// The required form fails even without strict mode.
	_, err = expandEnv("${TEST_REQUIRED:?token is required}", false)
	if !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Errorf("non-strict required error = %v, want ErrMissingEnvVar", err)
	}

	os.Setenv("TEST_REQUIRED", "present")
	defer os.Unsetenv("TEST_REQUIRED")
	got, err := ExpandEnvStrict("${TEST_REQUIRED:?token is required}")
	if err != nil || got != "present" {
		t.Errorf("ExpandEnvStrict() = %q, %v", got, err)
	}
}

func TestExpandEnv_Strict(t *testing.T) {
	os.Unsetenv("TEST_STRICT_A")
	os.Unsetenv("TEST_STRICT_B")

	_, err := ExpandEnvStrict("${TEST_STRICT_A} $TEST_STRICT_B")
	if !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Fatalf("error = %v, want ErrMissingEnvVar", err)
	}

	// Defaults satisfy strict mode.
	got, err := ExpandEnvStrict("${TEST_STRICT_A:-ok}")
	if err != nil || got != "ok" {
		t.Errorf("ExpandEnvStrict() = %q, %v", got, err)
	}
}
