package handlers

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/felixgeelhaar/checkwise/domain/param"
)

func TestConvertToCelsius(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		warn, crit float64
		unit       string
		wantWarn   float64
		wantCrit   float64
	}{
		{name: "fahrenheit", warn: 32, crit: 212, unit: "f", wantWarn: 0, wantCrit: 100},
		{name: "kelvin", warn: 273.15, crit: 373.15, unit: "k", wantWarn: 0, wantCrit: 100},
		{name: "celsius passthrough", warn: 70, crit: 80, unit: "c", wantWarn: 70, wantCrit: 80},
		{name: "unknown unit passthrough", warn: 70, crit: 80, unit: "", wantWarn: 70, wantCrit: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			warn, crit := convertToCelsius(tt.warn, tt.crit, tt.unit)
			if math.Abs(warn-tt.wantWarn) > 1e-9 || math.Abs(crit-tt.wantCrit) > 1e-9 {
				t.Errorf("convertToCelsius(%g, %g, %q) = (%g, %g), want (%g, %g)",
					tt.warn, tt.crit, tt.unit, warn, crit, tt.wantWarn, tt.wantCrit)
			}
		})
	}
}

func TestTemperatureProfileSelection(t *testing.T) {
	t.Parallel()

	h, err := NewTemperatureHandler()
	if err != nil {
		t.Fatalf("NewTemperatureHandler() error = %v", err)
	}

	tests := []struct {
		service    string
		wantLevels param.Levels
	}{
		{service: "CPU Temperature", wantLevels: param.Levels{80, 90}},
		{service: "GPU Temp", wantLevels: param.Levels{85, 95}},
		{service: "Disk Temperature sda", wantLevels: param.Levels{50, 60}},
		{service: "PSU thermal zone", wantLevels: param.Levels{60, 70}},
		{service: "Memory DIMM A1 Temp", wantLevels: param.Levels{70, 80}},
		{service: "Ambient Temperature", wantLevels: param.Levels{30, 35}},
		{service: "Temperature Zone 9", wantLevels: param.Levels{70, 80}},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			t.Parallel()

			result, err := h.DefaultParameters(tt.service, nil)
			if err != nil {
				t.Fatalf("DefaultParameters(%q) error = %v", tt.service, err)
			}
			got, ok := param.AsLevels(result.Parameters["levels"])
			if !ok {
				t.Fatalf("defaults for %q have no levels: %v", tt.service, result.Parameters)
			}
			if got != tt.wantLevels {
				t.Errorf("levels = %v, want %v", got, tt.wantLevels)
			}
		})
	}
}

func TestTemperatureSensorOverride(t *testing.T) {
	t.Parallel()

	h, _ := NewTemperatureHandler()

	result, err := h.DefaultParameters("CPU Temperature", param.Context{"sensor_type": "disk"})
	if err != nil {
		t.Fatalf("DefaultParameters error = %v", err)
	}
	got, _ := param.AsLevels(result.Parameters["levels"])
	if got != (param.Levels{50, 60}) {
		t.Errorf("context override should select the disk profile, got levels %v", got)
	}
}

func TestTemperatureDefaultsRoundTrip(t *testing.T) {
	t.Parallel()

	h, _ := NewTemperatureHandler()

	services := []string{
		"CPU Temperature",
		"GPU Temperature",
		"Disk Temperature",
		"PSU thermal",
		"Motherboard temp",
		"Case temp",
		"Memory DIMM temp",
		"Ambient Temperature",
		"Temperature Zone 1",
	}

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

func TestTemperatureContextAdjustment(t *testing.T) {
	t.Parallel()

	h, _ := NewTemperatureHandler()

	prod, err := h.DefaultParameters("CPU Temperature", param.Context{"environment": "production"})
	if err != nil {
		t.Fatalf("DefaultParameters error = %v", err)
	}
	got, _ := param.AsLevels(prod.Parameters["levels"])
	if got != (param.Levels{72, 81}) {
		t.Errorf("production levels = %v, want [72, 81]", got)
	}

	dev, err := h.DefaultParameters("CPU Temperature", param.Context{"environment": "development"})
	if err != nil {
		t.Fatalf("DefaultParameters error = %v", err)
	}
	got, _ = param.AsLevels(dev.Parameters["levels"])
	if got != (param.Levels{88, 99}) {
		t.Errorf("development levels = %v, want [88, 99]", got)
	}
}

func TestTemperatureTrendPolicy(t *testing.T) {
	t.Parallel()

	h, _ := NewTemperatureHandler()

	plain, _ := h.DefaultParameters("CPU Temperature", nil)
	if _, ok := plain.Parameters["trend_compute"]; ok {
		t.Error("trend_compute should be filtered out without a trending request")
	}
	filtered := false
	for _, msg := range plain.Infos() {
		if strings.Contains(msg.Text, "trend_compute") {
			filtered = true
		}
	}
	if !filtered {
		t.Error("expected an info message describing the removed feature")
	}

	trending, _ := h.DefaultParameters("CPU Temperature", param.Context{"trending": true})
	if _, ok := trending.Parameters["trend_compute"]; !ok {
		t.Error("trend_compute should survive when trending is requested")
	}
}

func TestTemperatureUnitBoundsWarning(t *testing.T) {
	t.Parallel()

	h, _ := NewTemperatureHandler()

	// 300°F is about 148.9°C, far above the generic profile's 100°C bound.
	result, err := h.ValidateParameters(param.Parameters{
		"levels":      param.Levels{280, 300},
		"output_unit": "f",
	}, "Temperature Zone 1", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}

	if !result.IsValid() {
		t.Errorf("out-of-range temperature should warn, not fail: %v", result.Messages)
	}
	if !result.HasWarnings() {
		t.Error("expected a bounds warning for 300°F against the generic profile")
	}
}

func TestTemperatureValidationErrors(t *testing.T) {
	t.Parallel()

	h, _ := NewTemperatureHandler()

	tests := []struct {
		name   string
		params param.Parameters
	}{
		{
			name:   "missing levels",
			params: param.Parameters{},
		},
		{
			name:   "inverted upper levels",
			params: param.Parameters{"levels": param.Levels{90, 80}},
		},
		{
			name: "lower levels in wrong order",
			params: param.Parameters{
				"levels":       param.Levels{70, 80},
				"levels_lower": param.Levels{0, 5},
			},
		},
		{
			name: "bad unit",
			params: param.Parameters{
				"levels":      param.Levels{70, 80},
				"output_unit": "x",
			},
		},
		{
			name: "bad device handling choice",
			params: param.Parameters{
				"levels":                 param.Levels{70, 80},
				"device_levels_handling": "magic",
			},
		},
		{
			name: "trend compute not a map",
			params: param.Parameters{
				"levels":        param.Levels{70, 80},
				"trend_compute": "yes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := h.ValidateParameters(tt.params, "CPU Temperature", nil)
			if err != nil {
				t.Fatalf("ValidateParameters error = %v", err)
			}
			if result.IsValid() {
				t.Errorf("expected validation to fail, messages: %v", result.Messages)
			}
			if !result.Success {
				t.Error("structural failures must not flip Success")
			}
		})
	}
}

func TestTemperatureGapWarning(t *testing.T) {
	t.Parallel()

	h, _ := NewTemperatureHandler()

	result, err := h.ValidateParameters(param.Parameters{
		"levels":       param.Levels{10, 90},
		"levels_lower": param.Levels{5, 0},
	}, "Temperature Zone 1", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}

	if !result.IsValid() {
		t.Fatalf("thin gap should warn, not fail: %v", result.Messages)
	}
	found := false
	for _, msg := range result.Warnings() {
		if strings.Contains(msg.Text, "flapping") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a flap-risk warning, got %v", result.Messages)
	}
}

func TestTemperatureIdempotence(t *testing.T) {
	t.Parallel()

	h, _ := NewTemperatureHandler()
	params := param.Parameters{
		"levels":       param.Levels{150, 160},
		"levels_lower": param.Levels{5, 0},
		"output_unit":  "f",
		"extra":        true,
	}

	first, err := h.ValidateParameters(params, "CPU Temperature", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}
	second, err := h.ValidateParameters(params, "CPU Temperature", nil)
	if err != nil {
		t.Fatalf("ValidateParameters error = %v", err)
	}

	if first.IsValid() != second.IsValid() {
		t.Error("IsValid differs between identical calls")
	}
	if !reflect.DeepEqual(first.Messages, second.Messages) {
		t.Errorf("messages differ between identical calls:\n%v\n%v", first.Messages, second.Messages)
	}
	if !reflect.DeepEqual(first.Normalized, second.Normalized) {
		t.Errorf("normalized parameters differ between identical calls:\n%v\n%v", first.Normalized, second.Normalized)
	}
}

func TestTemperatureParameterInfo(t *testing.T) {
	t.Parallel()

	h, _ := NewTemperatureHandler()

	info, ok := h.ParameterInfo("levels")
	if !ok {
		t.Fatal("ParameterInfo(levels) not found")
	}
	if info.Unit != "°C" {
		t.Errorf("Unit = %q, want °C", info.Unit)
	}
	if _, ok := h.ParameterInfo("bogus"); ok {
		t.Error("ParameterInfo(bogus) should not be found")
	}
}

func TestTemperatureSuggestions(t *testing.T) {
	t.Parallel()

	h, _ := NewTemperatureHandler()

	current := param.Parameters{"levels": param.Levels{95, 120}}
	suggestions, err := h.Suggestions("CPU Temperature", current, nil)
	if err != nil {
		t.Fatalf("Suggestions error = %v", err)
	}

	var kinds []string
	for _, s := range suggestions {
		kinds = append(kinds, string(s.Kind)+":"+s.Parameter)
	}
	wantTighten := false
	wantLower := false
	for _, k := range kinds {
		if k == "tighten_threshold:levels" {
			wantTighten = true
		}
		if k == "add_parameter:levels_lower" {
			wantLower = true
		}
	}
	if !wantTighten {
		t.Errorf("expected a tighten suggestion for loose levels, got %v", kinds)
	}
	if !wantLower {
		t.Errorf("expected a levels_lower suggestion, got %v", kinds)
	}
}
