package handlers

import (
	"testing"

	"github.com/felixgeelhaar/checkwise/domain/param"
)

func TestCommandInjectionScreening(t *testing.T) {
	t.Parallel()

	h, err := NewCustomCheckHandler()
	if err != nil {
		t.Fatalf("NewCustomCheckHandler() error = %v", err)
	}

	tests := []struct {
		name     string
		command  string
		valid    bool
		messages bool
	}{
		{
			name:     "command chaining rejected",
			command:  "check_disk; rm -rf /",
			valid:    false,
			messages: true,
		},
		{
			name:     "and chaining rejected",
			command:  "check_foo && rm x",
			valid:    false,
			messages: true,
		},
		{
			name:     "backtick substitution rejected",
			command:  "echo `whoami`",
			valid:    false,
			messages: true,
		},
		{
			name:     "dollar substitution rejected",
			command:  "check_foo $(cat /etc/passwd)",
			valid:    false,
			messages: true,
		},
		{
			name:     "clean plugin invocation",
			command:  "check_disk -w 80% -c 90% /var",
			valid:    true,
			messages: false,
		},
		{
			name:     "quoted specials tolerated with warning",
			command:  `check_http -u "https://example.com?a=1&b=2"`,
			valid:    true,
			messages: true,
		},
		{
			name:     "unbalanced quote warns",
			command:  `check_foo "unterminated`,
			valid:    true,
			messages: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := h.ValidateParameters(param.Parameters{"command_line": tt.command}, "MRPE test", nil)
			if err != nil {
				t.Fatalf("ValidateParameters error = %v", err)
			}
			if result.IsValid() != tt.valid {
				t.Errorf("IsValid() = %v, want %v (%v)", result.IsValid(), tt.valid, result.Messages)
			}
			if tt.messages && len(result.Messages) == 0 {
				t.Error("expected diagnostics referencing the command")
			}
			if !tt.messages && len(result.Messages) != 0 {
				t.Errorf("expected a clean result, got %v", result.Messages)
			}
			for _, msg := range result.Messages {
				if msg.Field != "command_line" {
					t.Errorf("diagnostic should reference command_line, got field %q", msg.Field)
				}
			}
		})
	}
}

func TestParseNagiosRange(t *testing.T) {
	t.Parallel()

	valid := []string{"10", "10:", "~:10", "10:20", "@10:20", ":10", "0", "-5:5"}
	for _, s := range valid {
		t.Run("valid "+s, func(t *testing.T) {
			t.Parallel()

			if err := parseNagiosRange(s); err != nil {
				t.Errorf("parseNagiosRange(%q) = %v, want nil", s, err)
			}
		})
	}

	invalid := []string{"", "@", "abc", "20:10", "10:20:30", "~:", "@:"}
	for _, s := range invalid {
		t.Run("invalid "+s, func(t *testing.T) {
			t.Parallel()

			if err := parseNagiosRange(s); err == nil {
				t.Errorf("parseNagiosRange(%q) = nil, want error", s)
			}
		})
	}
}

func TestCustomCheckNagiosRangeParameters(t *testing.T) {
	t.Parallel()

	h, _ := NewCustomCheckHandler()

	good, err := h.ValidateParameters(param.Parameters{
		"command_line": "check_load",
		"warning":      "10:20",
		"critical":     "@20:40",
	}, "Nagios check_load", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}
	if !good.IsValid() {
		t.Errorf("valid ranges rejected: %v", good.Messages)
	}

	bad, err := h.ValidateParameters(param.Parameters{
		"command_line": "check_load",
		"warning":      "20:10",
	}, "Nagios check_load", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}
	if bad.IsValid() {
		t.Error("start exceeding end must be rejected")
	}
}

func TestCustomCheckClassification(t *testing.T) {
	t.Parallel()

	h, _ := NewCustomCheckHandler()

	tests := []struct {
		service string
		ctx     param.Context
		wantKey string
	}{
		{service: "MRPE check_load", wantKey: "interval"},
		{service: "Nagios plugin disk", wantKey: "timeout"},
		{service: "Backup script daily", wantKey: "timeout"},
		{service: "Local heartbeat", wantKey: "interval"},
		{service: "Whatever thing", wantKey: "interval"},
		{service: "Whatever thing", ctx: param.Context{"check_type": "script"}, wantKey: "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			t.Parallel()

			result, err := h.DefaultParameters(tt.service, tt.ctx)
			if err != nil {
				t.Fatalf("DefaultParameters error = %v", err)
			}
			if _, ok := result.Parameters[tt.wantKey]; !ok {
				t.Errorf("expected %q in defaults, got %v", tt.wantKey, result.Parameters)
			}
		})
	}
}

func TestCustomCheckDefaultsRoundTrip(t *testing.T) {
	t.Parallel()

	h, _ := NewCustomCheckHandler()

	services := []string{"MRPE test", "Nagios check_disk", "Custom script backup", "Local check"}
	for _, service := range services {
		t.Run(service, func(t *testing.T) {
			t.Parallel()

			defaults, err := h.DefaultParameters(service, nil)
			if err != nil {
				t.Fatalf("DefaultParameters error = %v", err)
			}
			validated, err := h.ValidateParameters(defaults.Parameters, service, nil)
			if err != nil {
				t.Fatalf("ValidateParameters error = %v", err)
			}
			if !validated.IsValid() {
				t.Errorf("generated defaults failed validation: %v", validated.Messages)
			}
		})
	}
}

func TestCustomCheckTimeout(t *testing.T) {
	t.Parallel()

	h, _ := NewCustomCheckHandler()

	result, err := h.ValidateParameters(param.Parameters{"timeout": -5}, "Local check", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}
	if result.IsValid() {
		t.Error("negative timeout must be rejected")
	}

	result, err = h.ValidateParameters(param.Parameters{"timeout": "soon"}, "Local check", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}
	if result.IsValid() {
		t.Error("non-numeric timeout must be rejected")
	}
}

func TestCustomCheckSuggestions(t *testing.T) {
	t.Parallel()

	h, _ := NewCustomCheckHandler()

	suggestions, err := h.Suggestions("MRPE check_load", param.Parameters{"command_line": "check_load"}, nil)
	if err != nil {
		t.Fatalf("Suggestions error = %v", err)
	}

	byParam := map[string]bool{}
	for _, s := range suggestions {
		byParam[s.Parameter] = true
	}
	if !byParam["timeout"] {
		t.Errorf("expected a timeout suggestion for a command without one, got %v", byParam)
	}
	if !byParam["critical"] {
		t.Errorf("expected a critical-range suggestion for an MRPE check, got %v", byParam)
	}
}
