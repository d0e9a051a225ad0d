package param_test

import (
	"testing"

	"github.com/felixgeelhaar/checkwise/domain/param"
)

func TestAsLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  param.Levels
		ok    bool
	}{
		{
			name:  "native levels",
			value: param.NewLevels(70, 80),
			want:  param.Levels{70, 80},
			ok:    true,
		},
		{
			name:  "float array",
			value: [2]float64{1.5, 2.5},
			want:  param.Levels{1.5, 2.5},
			ok:    true,
		},
		{
			name:  "float slice",
			value: []float64{10, 20},
			want:  param.Levels{10, 20},
			ok:    true,
		},
		{
			name:  "int slice",
			value: []int{10, 20},
			want:  param.Levels{10, 20},
			ok:    true,
		},
		{
			name:  "json decoded slice",
			value: []any{float64(80), float64(90)},
			want:  param.Levels{80, 90},
			ok:    true,
		},
		{
			name:  "mixed numeric slice",
			value: []any{80, 90.5},
			want:  param.Levels{80, 90.5},
			ok:    true,
		},
		{
			name:  "wrong arity",
			value: []any{float64(80)},
			ok:    false,
		},
		{
			name:  "non numeric member",
			value: []any{"80", float64(90)},
			ok:    false,
		},
		{
			name:  "wrong type",
			value: "80:90",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := param.AsLevels(tt.value)
			if ok != tt.ok {
				t.Fatalf("AsLevels(%v) ok = %v, want %v", tt.value, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("AsLevels(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLevelsScale(t *testing.T) {
	t.Parallel()

	got := param.NewLevels(80, 90).Scale(0.9)
	want := param.Levels{72, 81}
	if got != want {
		t.Errorf("Scale(0.9) = %v, want %v", got, want)
	}

	// Scaling rounds to one decimal place.
	got = param.NewLevels(35, 40).Scale(1.1)
	want = param.Levels{38.5, 44}
	if got != want {
		t.Errorf("Scale(1.1) = %v, want %v", got, want)
	}
}

func TestAsFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{name: "float64", value: 1.5, want: 1.5, ok: true},
		{name: "int", value: 42, want: 42, ok: true},
		{name: "int64", value: int64(7), want: 7, ok: true},
		{name: "string", value: "1.5", ok: false},
		{name: "bool", value: true, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := param.AsFloat(tt.value)
			if ok != tt.ok {
				t.Fatalf("AsFloat(%v) ok = %v, want %v", tt.value, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("AsFloat(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParametersClone(t *testing.T) {
	t.Parallel()

	orig := param.Parameters{
		"levels": param.NewLevels(70, 80),
		"trend_compute": map[string]any{
			"period": 30,
		},
		"tags": []any{"a", "b"},
	}

	clone := orig.Clone()
	clone["levels"] = param.NewLevels(1, 2)
	clone["trend_compute"].(map[string]any)["period"] = 60
	clone["tags"].([]any)[0] = "c"

	if orig["levels"].(param.Levels) != param.NewLevels(70, 80) {
		t.Error("Clone should not share top-level values")
	}
	if orig["trend_compute"].(map[string]any)["period"] != 30 {
		t.Error("Clone should deep-copy nested maps")
	}
	if orig["tags"].([]any)[0] != "a" {
		t.Error("Clone should deep-copy slices")
	}
}

func TestParametersCloneNil(t *testing.T) {
	t.Parallel()

	var p param.Parameters
	if p.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "true", value: true, want: true},
		{name: "false", value: false, want: false},
		{name: "yes", value: "yes", want: true},
		{name: "no", value: "no", want: false},
		{name: "one", value: 1, want: true},
		{name: "zero", value: 0, want: false},
		{name: "nil", value: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := param.Truthy(tt.value); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
