// Package param defines the core value objects of the parameter engine:
// parameter maps, threshold levels, graded validation messages, and results.
package param

import "math"

// Parameters is a string-keyed map of check parameters. Values are primitives,
// Levels pairs, or nested maps — no schema beyond what each handler validates.
type Parameters map[string]any

// Context carries optional hints that steer classification and defaulting,
// such as "environment", "criticality", or an explicit sub-type override.
type Context map[string]any

// Levels is a (warn, crit) threshold pair. For regular thresholds warn < crit;
// for inverted thresholds (higher is better) warn > crit.
type Levels [2]float64

// NewLevels creates a threshold pair.
func NewLevels(warn, crit float64) Levels {
	return Levels{warn, crit}
}

// Warn returns the warning threshold.
func (l Levels) Warn() float64 {
	return l[0]
}

// Crit returns the critical threshold.
func (l Levels) Crit() float64 {
	return l[1]
}

// Scale returns a copy with both thresholds multiplied by factor and rounded
// to one decimal place.
func (l Levels) Scale(factor float64) Levels {
	return Levels{Round1(l[0] * factor), Round1(l[1] * factor)}
}

// Round1 rounds a value to one decimal place, the canonical threshold precision.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// AsLevels coerces a raw parameter value into a Levels pair. It accepts the
// native type plus the shapes produced by JSON and YAML decoding: a two-element
// slice of numbers. The second return is false when the value has the wrong
// type or arity.
func AsLevels(v any) (Levels, bool) {
	switch t := v.(type) {
	case Levels:
		return t, true
	case [2]float64:
		return Levels{t[0], t[1]}, true
	case []float64:
		if len(t) != 2 {
			return Levels{}, false
		}
		return Levels{t[0], t[1]}, true
	case []int:
		if len(t) != 2 {
			return Levels{}, false
		}
		return Levels{float64(t[0]), float64(t[1])}, true
	case []any:
		if len(t) != 2 {
			return Levels{}, false
		}
		warn, ok := AsFloat(t[0])
		if !ok {
			return Levels{}, false
		}
		crit, ok := AsFloat(t[1])
		if !ok {
			return Levels{}, false
		}
		return Levels{warn, crit}, true
	default:
		return Levels{}, false
	}
}

// AsFloat coerces a raw parameter value into a float64. It accepts the numeric
// types produced by JSON and YAML decoding.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// AsString coerces a raw parameter value into a string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsBool coerces a raw parameter value into a bool.
func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// Clone returns a deep copy of the parameters. Nested Parameters, generic
// maps, and slices are copied; immutable primitives and Levels are shared.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Truthy reports whether a context value requests a feature: true booleans,
// non-zero numbers, and the strings "true", "yes", "on", "1".
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch t {
		case "true", "yes", "on", "1":
			return true
		}
		return false
	default:
		if f, ok := AsFloat(v); ok {
			return f != 0
		}
		return false
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Parameters:
		return t.Clone()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	case []float64:
		out := make([]float64, len(t))
		copy(out, t)
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []int:
		out := make([]int, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
