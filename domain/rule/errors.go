package rule

import "errors"

// Domain errors for the rule system.
var (
	// ErrRuleNotFound indicates the requested rule was not found.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrRulesetNotFound indicates the requested ruleset was not found.
	ErrRulesetNotFound = errors.New("ruleset not found")

	// ErrEmptyRuleset indicates a rule without a ruleset name.
	ErrEmptyRuleset = errors.New("rule has no ruleset")

	// ErrNoValue indicates a rule without check parameters.
	ErrNoValue = errors.New("rule has no value")
)
