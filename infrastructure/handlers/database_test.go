package handlers

import (
	"testing"

	"github.com/felixgeelhaar/checkwise/domain/param"
)

func TestDatabaseEngineClassification(t *testing.T) {
	t.Parallel()

	h, err := NewDatabaseHandler()
	if err != nil {
		t.Fatalf("NewDatabaseHandler() error = %v", err)
	}

	tests := []struct {
		service  string
		ctx      param.Context
		wantPort any
		wantKey  string
	}{
		{service: "Oracle Tablespace USERS", wantPort: 1521, wantKey: "magic"},
		{service: "MySQL InnoDB Buffer Pool", wantPort: 3306, wantKey: "bufferpool_hit_rate"},
		{service: "PostgreSQL Sessions", wantPort: 5432, wantKey: "levels"},
		{service: "MongoDB Connections", wantPort: 27017, wantKey: "levels"},
		{service: "MSSQL Page Life Expectancy", wantPort: 1433, wantKey: "page_life_expectancy"},
		{service: "Redis Memory Usage", wantPort: 6379, wantKey: "levels"},
		{service: "Database Connections", wantPort: nil, wantKey: "levels"},
		{service: "Sessions", ctx: param.Context{"engine": "oracle"}, wantPort: 1521, wantKey: "levels"},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			t.Parallel()

			result, err := h.DefaultParameters(tt.service, tt.ctx)
			if err != nil {
				t.Fatalf("DefaultParameters(%q) error = %v", tt.service, err)
			}
			if tt.wantPort == nil {
				if _, ok := result.Parameters["port"]; ok {
					t.Errorf("generic engine should not default a port, got %v", result.Parameters["port"])
				}
			} else if got := result.Parameters["port"]; got != tt.wantPort {
				t.Errorf("port = %v, want %v", got, tt.wantPort)
			}
			if _, ok := result.Parameters[tt.wantKey]; !ok {
				t.Errorf("expected %q in defaults, got %v", tt.wantKey, result.Parameters)
			}
		})
	}
}

func TestDatabaseDefaultsRoundTrip(t *testing.T) {
	t.Parallel()

	h, _ := NewDatabaseHandler()

	for engine, eng := range databaseEngines {
		for family := range eng.families {
			engine, family := engine, family
			t.Run(engine+"/"+family, func(t *testing.T) {
				t.Parallel()

				ctx := param.Context{"engine": engine, "metric": family}
				defaults, err := h.DefaultParameters("Database check", ctx)
				if err != nil {
					t.Fatalf("DefaultParameters error = %v", err)
				}
				validated, err := h.ValidateParameters(defaults.Parameters, "Database check", ctx)
				if err != nil {
					t.Fatalf("ValidateParameters error = %v", err)
				}
				if !validated.IsValid() {
					t.Errorf("defaults for %s/%s failed validation: %v", engine, family, validated.Messages)
				}
			})
		}
	}
}

func TestDatabaseMagicFactor(t *testing.T) {
	t.Parallel()

	h, _ := NewDatabaseHandler()

	tests := []struct {
		name  string
		magic any
		valid bool
	}{
		{name: "typical", magic: 0.9, valid: true},
		{name: "upper bound inclusive", magic: 1, valid: true},
		{name: "zero", magic: 0, valid: false},
		{name: "negative", magic: -0.5, valid: false},
		{name: "above one", magic: 1.5, valid: false},
		{name: "not a number", magic: "big", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := h.ValidateParameters(param.Parameters{"magic": tt.magic}, "Oracle Tablespace USERS", nil)
			if err != nil {
				t.Fatalf("ValidateParameters error = %v", err)
			}
			if result.IsValid() != tt.valid {
				t.Errorf("magic=%v IsValid() = %v, want %v (%v)", tt.magic, result.IsValid(), tt.valid, result.Messages)
			}
		})
	}
}

func TestDatabaseBufferPoolHitRate(t *testing.T) {
	t.Parallel()

	h, _ := NewDatabaseHandler()

	tests := []struct {
		name  string
		value any
		valid bool
	}{
		{name: "descending percentages", value: param.Levels{95, 90}, valid: true},
		{name: "ascending rejected", value: param.Levels{90, 95}, valid: false},
		{name: "over one hundred", value: param.Levels{110, 90}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := h.ValidateParameters(param.Parameters{"bufferpool_hit_rate": tt.value},
				"MySQL InnoDB Buffer Pool", nil)
			if err != nil {
				t.Fatalf("ValidateParameters error = %v", err)
			}
			if result.IsValid() != tt.valid {
				t.Errorf("IsValid() = %v, want %v (%v)", result.IsValid(), tt.valid, result.Messages)
			}
		})
	}
}

func TestDatabasePageLifeExpectancyInverted(t *testing.T) {
	t.Parallel()

	h, _ := NewDatabaseHandler()

	good, err := h.ValidateParameters(param.Parameters{"page_life_expectancy": param.Levels{300, 100}},
		"MSSQL Page Life Expectancy", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}
	if !good.IsValid() {
		t.Errorf("descending page life expectancy should be valid: %v", good.Messages)
	}

	bad, err := h.ValidateParameters(param.Parameters{"page_life_expectancy": param.Levels{100, 300}},
		"MSSQL Page Life Expectancy", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}
	if bad.IsValid() {
		t.Error("ascending page life expectancy must be rejected; warning must exceed critical")
	}
}

func TestDatabaseConnectionValidation(t *testing.T) {
	t.Parallel()

	h, _ := NewDatabaseHandler()

	tests := []struct {
		name   string
		params param.Parameters
		valid  bool
	}{
		{
			name:   "full connection",
			params: param.Parameters{"hostname": "db01.example.com", "port": 5432, "username": "monitor"},
			valid:  true,
		},
		{
			name:   "empty hostname",
			params: param.Parameters{"hostname": ""},
			valid:  false,
		},
		{
			name:   "underscore hostname",
			params: param.Parameters{"hostname": "db_01"},
			valid:  false,
		},
		{
			name:   "port out of range",
			params: param.Parameters{"port": 70000},
			valid:  false,
		},
		{
			name:   "port zero",
			params: param.Parameters{"port": 0},
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := h.ValidateParameters(tt.params, "PostgreSQL Sessions", nil)
			if err != nil {
				t.Fatalf("ValidateParameters error = %v", err)
			}
			if result.IsValid() != tt.valid {
				t.Errorf("IsValid() = %v, want %v (%v)", result.IsValid(), tt.valid, result.Messages)
			}
		})
	}
}

func TestDatabaseUnknownParameterWarns(t *testing.T) {
	t.Parallel()

	h, _ := NewDatabaseHandler()

	result, err := h.ValidateParameters(param.Parameters{"frobnicate": 1}, "MySQL Connections", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}
	if !result.IsValid() {
		t.Errorf("unknown parameters are advisory, not blocking: %v", result.Messages)
	}
	if !result.HasWarnings() {
		t.Error("expected a warning for the unrecognized parameter")
	}
}

func TestDatabaseSuggestions(t *testing.T) {
	t.Parallel()

	h, _ := NewDatabaseHandler()

	current := param.Parameters{"levels": param.Levels{85, 95}}
	suggestions, err := h.Suggestions("Oracle Tablespace USERS", current, nil)
	if err != nil {
		t.Fatalf("Suggestions error = %v", err)
	}

	byParam := map[string]bool{}
	for _, s := range suggestions {
		byParam[s.Parameter] = true
	}
	for _, want := range []string{"hostname", "magic", "levels"} {
		if !byParam[want] {
			t.Errorf("expected a suggestion for %q, got %v", want, byParam)
		}
	}
}
