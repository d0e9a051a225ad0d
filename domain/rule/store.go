package rule

import "context"

// Store persists rules in the monitoring backend.
// This is a repository interface - implementations are in infrastructure.
type Store interface {
	// ListRulesets returns all rulesets known to the backend.
	ListRulesets(ctx context.Context) ([]Ruleset, error)

	// GetRuleset retrieves a ruleset by name.
	GetRuleset(ctx context.Context, name string) (*Ruleset, error)

	// ListRules returns the rules of a ruleset.
	ListRules(ctx context.Context, ruleset string) ([]Rule, error)

	// GetRule retrieves a rule by ID.
	GetRule(ctx context.Context, id string) (*Rule, error)

	// CreateRule persists a new rule and returns its backend ID.
	CreateRule(ctx context.Context, r *Rule) (string, error)

	// UpdateRule replaces an existing rule's value and conditions.
	UpdateRule(ctx context.Context, r *Rule) error

	// DeleteRule removes a rule.
	DeleteRule(ctx context.Context, id string) error
}
