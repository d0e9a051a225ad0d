package handlers

import (
	"testing"

	"github.com/felixgeelhaar/checkwise/domain/param"
)

func TestApplyParameterPolicies(t *testing.T) {
	t.Parallel()

	t.Run("strips trend compute by default", func(t *testing.T) {
		t.Parallel()

		params := param.Parameters{
			"levels":        param.Levels{70, 80},
			"trend_compute": map[string]any{"period": 30},
		}

		filtered, applied := ApplyParameterPolicies(params, nil)

		if _, ok := filtered["trend_compute"]; ok {
			t.Error("trend_compute should be removed when trending is not requested")
		}
		if len(applied) != 1 {
			t.Fatalf("applied = %d descriptions, want 1", len(applied))
		}
		if _, ok := params["trend_compute"]; !ok {
			t.Error("input parameters must not be mutated")
		}
	})

	t.Run("keeps trend compute when requested", func(t *testing.T) {
		t.Parallel()

		params := param.Parameters{
			"trend_compute": map[string]any{"period": 30},
		}
		ctx := param.Context{"trending": true}

		filtered, applied := ApplyParameterPolicies(params, ctx)

		if _, ok := filtered["trend_compute"]; !ok {
			t.Error("trend_compute should survive when trending is requested")
		}
		if len(applied) != 0 {
			t.Errorf("applied = %v, want none", applied)
		}
	})

	t.Run("no optional features means no filters", func(t *testing.T) {
		t.Parallel()

		filtered, applied := ApplyParameterPolicies(param.Parameters{"levels": param.Levels{1, 2}}, nil)

		if len(filtered) != 1 {
			t.Errorf("filtered = %v, want the untouched input", filtered)
		}
		if len(applied) != 0 {
			t.Errorf("applied = %v, want none", applied)
		}
	})

	t.Run("truthy string requests trending", func(t *testing.T) {
		t.Parallel()

		params := param.Parameters{"trend_compute": map[string]any{"period": 30}}
		filtered, _ := ApplyParameterPolicies(params, param.Context{"trending": "yes"})

		if _, ok := filtered["trend_compute"]; !ok {
			t.Error(`trending: "yes" should count as a trending request`)
		}
	})
}
