package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/rule"
	"github.com/felixgeelhaar/checkwise/domain/suggestion"
	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
)

// ReviewFinding is the audit outcome for one existing rule.
type ReviewFinding struct {
	// Rule is the rule that was reviewed.
	Rule rule.Rule `json:"rule"`

	// HandlerName names the handler that reviewed the rule. Empty when no
	// handler matched.
	HandlerName string `json:"handler,omitempty"`

	// Result carries the validation diagnostics for the rule's value.
	Result *param.Result `json:"result,omitempty"`

	// Suggestions proposes improvements over the rule's current value.
	Suggestions []suggestion.Suggestion `json:"suggestions,omitempty"`
}

// ReviewService audits existing rules against the handlers currently
// registered. It validates each rule's value and proposes improvements,
// but never modifies anything.
type ReviewService struct {
	rules    rule.Store
	registry handler.Registry
}

// NewReviewService creates a review service.
func NewReviewService(rules rule.Store, registry handler.Registry) (*ReviewService, error) {
	if rules == nil {
		return nil, ErrNoRuleStore
	}
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	return &ReviewService{rules: rules, registry: registry}, nil
}

// ReviewRuleset reviews every rule of the ruleset. Rules no handler can
// review produce a finding without a result, never an error; rules whose
// handler faults are skipped with a logged warning.
func (s *ReviewService) ReviewRuleset(ctx context.Context, ruleset string) ([]ReviewFinding, error) {
	rules, err := s.rules.ListRules(ctx, ruleset)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	findings := make([]ReviewFinding, 0, len(rules))
	for i := range rules {
		finding, err := s.review(&rules[i])
		if err != nil {
			logging.Warn().
				Add(logging.Ruleset(ruleset)).
				Add(logging.RuleID(rules[i].ID)).
				Add(logging.ErrorField(err)).
				Msg("rule review failed")
			continue
		}
		findings = append(findings, finding)
	}

	return findings, nil
}

// ReviewRule reviews a single rule by ID.
func (s *ReviewService) ReviewRule(ctx context.Context, id string) (*ReviewFinding, error) {
	r, err := s.rules.GetRule(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}

	finding, err := s.review(r)
	if err != nil {
		return nil, err
	}
	return &finding, nil
}

// review validates one rule's value and collects suggestions.
func (s *ReviewService) review(r *rule.Rule) (ReviewFinding, error) {
	finding := ReviewFinding{Rule: *r}

	service := serviceHint(r)
	h := s.registry.BestHandler(service, r.Ruleset)
	if h == nil {
		// No handler covers the rule. The finding still surfaces it so
		// operators see unreviewable rules.
		return finding, nil
	}
	finding.HandlerName = h.Name()

	res, err := h.ValidateParameters(r.Value, service, nil)
	if err != nil {
		return finding, fmt.Errorf("validate rule value: %w", err)
	}
	finding.Result = res

	suggestions, err := h.Suggestions(service, r.Value, nil)
	if err != nil {
		return finding, fmt.Errorf("suggest for rule: %w", err)
	}
	finding.Suggestions = suggestions

	return finding, nil
}

// serviceHint picks the service name a rule's review dispatches on. The
// first service condition wins; condition-free rules fall back to the
// ruleset name.
func serviceHint(r *rule.Rule) string {
	if len(r.Conditions.ServiceDescription) > 0 {
		return r.Conditions.ServiceDescription[0]
	}
	return r.Ruleset
}
