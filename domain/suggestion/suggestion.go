// Package suggestion provides parameter tuning suggestions produced by handlers.
package suggestion

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Kind classifies suggestions.
type Kind string

const (
	// KindTightenThreshold proposes stricter warn/crit levels.
	KindTightenThreshold Kind = "tighten_threshold"

	// KindLoosenThreshold proposes more permissive warn/crit levels.
	KindLoosenThreshold Kind = "loosen_threshold"

	// KindAddParameter proposes adding a parameter that is currently unset.
	KindAddParameter Kind = "add_parameter"

	// KindRemoveParameter proposes removing a parameter that has no effect.
	KindRemoveParameter Kind = "remove_parameter"

	// KindReplaceValue proposes replacing a parameter value.
	KindReplaceValue Kind = "replace_value"
)

// Impact indicates the potential impact of applying a suggestion.
type Impact string

const (
	ImpactLow    Impact = "low"    // Minimal risk, easy to reverse
	ImpactMedium Impact = "medium" // Moderate risk
	ImpactHigh   Impact = "high"   // Changes alerting behavior significantly
)

// Suggestion represents a proposed parameter adjustment. Suggestions are
// advisory and never applied automatically.
type Suggestion struct {
	// ID is the unique identifier.
	ID string `json:"id"`

	// Kind classifies the suggestion.
	Kind Kind `json:"kind"`

	// Parameter names the parameter the suggestion applies to.
	Parameter string `json:"parameter"`

	// Current is the current value, if any.
	Current any `json:"current,omitempty"`

	// Proposed is the proposed value.
	Proposed any `json:"proposed,omitempty"`

	// Reason explains why this suggestion was made.
	Reason string `json:"reason"`

	// Impact indicates the potential impact level.
	Impact Impact `json:"impact"`

	// CreatedAt is when the suggestion was generated.
	CreatedAt time.Time `json:"created_at"`
}

// New creates a suggestion with a generated ID.
func New(kind Kind, parameter, reason string) Suggestion {
	return Suggestion{
		ID:        uuid.New().String(),
		Kind:      kind,
		Parameter: parameter,
		Reason:    reason,
		Impact:    ImpactLow,
		CreatedAt: time.Now(),
	}
}

// WithValues returns a copy with current and proposed values set.
func (s Suggestion) WithValues(current, proposed any) Suggestion {
	s.Current = current
	s.Proposed = proposed
	return s
}

// WithImpact returns a copy with the impact level set.
func (s Suggestion) WithImpact(impact Impact) Suggestion {
	s.Impact = impact
	return s
}

// rank orders impacts from highest to lowest.
func (i Impact) rank() int {
	switch i {
	case ImpactHigh:
		return 0
	case ImpactMedium:
		return 1
	default:
		return 2
	}
}

// Sort orders suggestions in place: highest impact first, then by
// parameter name. Handlers sort before returning so listings are stable.
func Sort(s []Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		ri, rj := s[i].Impact.rank(), s[j].Impact.rank()
		if ri != rj {
			return ri < rj
		}
		return s[i].Parameter < s[j].Parameter
	})
}
