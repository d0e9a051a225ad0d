package api

import "github.com/felixgeelhaar/checkwise/domain/suggestion"

// Suggestion types.
type (
	// Suggestion is one proposed parameter improvement.
	Suggestion = suggestion.Suggestion

	// SuggestionKind classifies what a suggestion changes.
	SuggestionKind = suggestion.Kind

	// SuggestionImpact grades how strongly a suggestion is recommended.
	SuggestionImpact = suggestion.Impact
)

// Suggestion kinds.
const (
	KindTightenThreshold = suggestion.KindTightenThreshold
	KindLoosenThreshold  = suggestion.KindLoosenThreshold
	KindAddParameter     = suggestion.KindAddParameter
	KindRemoveParameter  = suggestion.KindRemoveParameter
	KindReplaceValue     = suggestion.KindReplaceValue
)

// Suggestion impacts.
const (
	ImpactLow    = suggestion.ImpactLow
	ImpactMedium = suggestion.ImpactMedium
	ImpactHigh   = suggestion.ImpactHigh
)

// NewSuggestion creates a suggestion with a fresh id and low impact.
func NewSuggestion(kind SuggestionKind, parameter, reason string) Suggestion {
	return suggestion.New(kind, parameter, reason)
}
