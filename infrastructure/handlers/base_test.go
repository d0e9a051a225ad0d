package handlers

import (
	"testing"

	"github.com/felixgeelhaar/checkwise/domain/param"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	groups := []keywordGroup{
		{subtype: "specific", keywords: []string{"alpha beta", "gamma"}},
		{subtype: "broad", keywords: []string{"alpha"}},
	}

	tests := []struct {
		name    string
		service string
		ctx     param.Context
		want    string
	}{
		{
			name:    "first group wins",
			service: "Alpha Beta Monitor",
			want:    "specific",
		},
		{
			name:    "later group matches",
			service: "Alpha Standalone",
			want:    "broad",
		},
		{
			name:    "case insensitive",
			service: "GAMMA RAY",
			want:    "specific",
		},
		{
			name:    "no match falls back",
			service: "unrelated",
			want:    "fallback",
		},
		{
			name:    "context override wins",
			service: "Alpha Beta Monitor",
			ctx:     param.Context{"kind": "Broad"},
			want:    "broad",
		},
		{
			name:    "empty override ignored",
			service: "Gamma",
			ctx:     param.Context{"kind": ""},
			want:    "specific",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classify(tt.service, tt.ctx, "kind", "fallback", groups)
			if got != tt.want {
				t.Errorf("classify(%q) = %q, want %q", tt.service, got, tt.want)
			}
		})
	}
}

func TestContextFactor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  param.Context
		want float64
	}{
		{name: "nil context", ctx: nil, want: 1},
		{name: "empty context", ctx: param.Context{}, want: 1},
		{name: "production tightens", ctx: param.Context{"environment": "production"}, want: 0.9},
		{name: "high criticality tightens", ctx: param.Context{"criticality": "high"}, want: 0.9},
		{name: "development loosens", ctx: param.Context{"environment": "development"}, want: 1.1},
		{name: "low criticality loosens", ctx: param.Context{"criticality": "low"}, want: 1.1},
		{name: "staging neutral", ctx: param.Context{"environment": "staging"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := contextFactor(tt.ctx); got != tt.want {
				t.Errorf("contextFactor(%v) = %v, want %v", tt.ctx, got, tt.want)
			}
		})
	}
}

func TestValidateLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    any
		inverted bool
		ok       bool
		errors   int
	}{
		{name: "ordered pair", value: []any{float64(80), float64(90)}, ok: true},
		{name: "equal pair rejected", value: param.Levels{80, 80}, ok: false, errors: 1},
		{name: "inverted order rejected", value: param.Levels{90, 80}, ok: false, errors: 1},
		{name: "inverted mode accepts descending", value: param.Levels{300, 100}, inverted: true, ok: true},
		{name: "inverted mode rejects ascending", value: param.Levels{100, 300}, inverted: true, ok: false, errors: 1},
		{name: "not a pair", value: "80:90", ok: false, errors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := param.NewResult(nil)
			_, ok := validateLevels(r, "levels", tt.value, tt.inverted)
			if ok != tt.ok {
				t.Errorf("validateLevels ok = %v, want %v", ok, tt.ok)
			}
			if got := len(r.Errors()); got != tt.errors {
				t.Errorf("errors = %d, want %d", got, tt.errors)
			}
		})
	}
}

func TestValidateHostname(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		ok   bool
	}{
		{name: "plain", host: "db01.example.com", ok: true},
		{name: "single label", host: "localhost", ok: true},
		{name: "empty", host: "", ok: false},
		{name: "leading dot", host: ".example.com", ok: false},
		{name: "trailing dot", host: "example.com.", ok: false},
		{name: "consecutive dots", host: "ex..ample.com", ok: false},
		{name: "space", host: "bad host", ok: false},
		{name: "underscore", host: "db_01.example.com", ok: false},
		{name: "long label", host: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.com", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := param.NewResult(nil)
			ok := validateHostname(r, "hostname", tt.host)
			if ok != tt.ok {
				t.Errorf("validateHostname(%q) = %v, want %v", tt.host, ok, tt.ok)
			}
			if !tt.ok && !r.HasErrors() {
				t.Error("expected an error message for invalid hostname")
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  int
		ok    bool
	}{
		{name: "valid int", value: 5432, want: 5432, ok: true},
		{name: "valid float", value: float64(443), want: 443, ok: true},
		{name: "zero", value: 0, ok: false},
		{name: "too large", value: 70000, ok: false},
		{name: "negative", value: -1, ok: false},
		{name: "fractional", value: 80.5, ok: false},
		{name: "string", value: "8080", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := param.NewResult(nil)
			got, ok := validatePort(r, "port", tt.value)
			if ok != tt.ok {
				t.Fatalf("validatePort(%v) ok = %v, want %v", tt.value, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("validatePort(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateChoice(t *testing.T) {
	t.Parallel()

	choices := []string{"c", "f", "k"}

	r := param.NewResult(nil)
	if !validateChoice(r, "output_unit", "f", choices) {
		t.Error("expected f to be a valid choice")
	}
	if r.HasErrors() {
		t.Error("valid choice should not add errors")
	}

	r = param.NewResult(nil)
	if validateChoice(r, "output_unit", "x", choices) {
		t.Error("expected x to be rejected")
	}
	if len(r.Errors()) != 1 {
		t.Errorf("errors = %d, want 1", len(r.Errors()))
	}
	if r.Errors()[0].SuggestedFix == "" {
		t.Error("choice error should carry a suggested fix")
	}
}

func TestWarnUnknownSortsKeys(t *testing.T) {
	t.Parallel()

	known := map[string]param.Info{"levels": {Name: "levels"}}
	params := param.Parameters{"zeta": 1, "alpha": 2, "levels": param.Levels{1, 2}}

	r := param.NewResult(nil)
	warnUnknown(r, params, known)

	warnings := r.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("warnings = %d, want 2", len(warnings))
	}
	if warnings[0].Field != "alpha" || warnings[1].Field != "zeta" {
		t.Errorf("unknown keys not reported in sorted order: %v", warnings)
	}
}
