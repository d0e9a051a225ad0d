// Package rule provides the domain model for monitoring rules and rulesets.
package rule

import "github.com/felixgeelhaar/checkwise/domain/param"

// Conditions narrow which hosts and services a rule applies to. Empty
// slices match everything.
type Conditions struct {
	HostName           []string `json:"host_name,omitempty"`
	ServiceDescription []string `json:"service_description,omitempty"`
}

// Rule binds check parameters to a ruleset for matching hosts and services.
type Rule struct {
	// ID is the backend-assigned rule identifier.
	ID string `json:"id"`

	// Ruleset names the ruleset the rule belongs to.
	Ruleset string `json:"ruleset"`

	// Folder is the configuration folder path the rule lives in.
	Folder string `json:"folder"`

	// Conditions narrow where the rule applies.
	Conditions Conditions `json:"conditions"`

	// Value holds the check parameters the rule sets.
	Value param.Parameters `json:"value"`

	// Disabled rules are kept but not evaluated by the backend.
	Disabled bool `json:"disabled,omitempty"`

	// Comment documents why the rule exists.
	Comment string `json:"comment,omitempty"`
}

// Validate checks the rule can be persisted.
func (r *Rule) Validate() error {
	if r.Ruleset == "" {
		return ErrEmptyRuleset
	}
	if len(r.Value) == 0 {
		return ErrNoValue
	}
	return nil
}

// Ruleset describes a named group of rules for one check type.
type Ruleset struct {
	// Name is the stable ruleset identifier.
	Name string `json:"name"`

	// Title is the human-readable ruleset title.
	Title string `json:"title"`

	// CheckGroup names the check plugin group the ruleset configures.
	CheckGroup string `json:"check_group,omitempty"`
}
