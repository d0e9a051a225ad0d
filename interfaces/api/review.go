package api

import (
	"context"

	"github.com/felixgeelhaar/checkwise/application"
	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/rule"
	"github.com/felixgeelhaar/checkwise/infrastructure/registry"
)

// ReviewFinding is the audit outcome for one existing rule.
type ReviewFinding = application.ReviewFinding

// Reviewer audits existing rules against the registered handlers. It
// validates each rule's stored value and proposes improvements without
// modifying anything.
type Reviewer struct {
	svc *application.ReviewService
}

// NewReviewer creates a reviewer over a rule store. A nil registry means
// the process-wide default.
func NewReviewer(rules rule.Store, reg handler.Registry) (*Reviewer, error) {
	if reg == nil {
		reg = registry.Default()
	}
	svc, err := application.NewReviewService(rules, reg)
	if err != nil {
		return nil, err
	}
	return &Reviewer{svc: svc}, nil
}

// ReviewRuleset audits every rule of a ruleset.
func (r *Reviewer) ReviewRuleset(ctx context.Context, ruleset string) ([]ReviewFinding, error) {
	return r.svc.ReviewRuleset(ctx, ruleset)
}

// ReviewRule audits a single rule by id.
func (r *Reviewer) ReviewRule(ctx context.Context, id string) (*ReviewFinding, error) {
	return r.svc.ReviewRule(ctx, id)
}
