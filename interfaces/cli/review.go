package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/checkwise/interfaces/api"
)

// reviewOptions holds options for the review command.
type reviewOptions struct {
	ruleset    string
	ruleID     string
	jsonOutput bool
}

// newReviewCmd creates the review command.
func (a *App) newReviewCmd() *cobra.Command {
	opts := &reviewOptions{}

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Audit existing rules against the registered handlers",
		Long: `Audit rules stored in the monitoring backend.

Each rule's value is re-validated by the handler that covers it, and
improvement suggestions are collected. Nothing is modified; findings
only report what an apply would change. A configured rule store
(rule_store.url) is required.

Examples:
  # Review every rule of a ruleset
  checkwise review -c config.yaml --ruleset checkgroup_temperature

  # Review a single rule
  checkwise review -c config.yaml --rule 9f3c...

  # Output as JSON
  checkwise review -c config.yaml --ruleset checkgroup_temperature --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReview(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.ruleset, "ruleset", "", "Review all rules of this ruleset")
	cmd.Flags().StringVar(&opts.ruleID, "rule", "", "Review a single rule by id")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// runReview audits rules and prints findings.
func (a *App) runReview(ctx context.Context, opts *reviewOptions) error {
	if (opts.ruleset == "") == (opts.ruleID == "") {
		return fmt.Errorf("use exactly one of --ruleset or --rule")
	}

	runtime, cleanup, err := a.loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if runtime.Reviewer == nil {
		return fmt.Errorf("review needs a configured rule store (set rule_store.url)")
	}

	var findings []api.ReviewFinding
	if opts.ruleID != "" {
		finding, err := runtime.Reviewer.ReviewRule(ctx, opts.ruleID)
		if err != nil {
			return fmt.Errorf("reviewing rule: %w", err)
		}
		findings = []api.ReviewFinding{*finding}
	} else {
		findings, err = runtime.Reviewer.ReviewRuleset(ctx, opts.ruleset)
		if err != nil {
			return fmt.Errorf("reviewing ruleset: %w", err)
		}
	}

	if opts.jsonOutput {
		return a.printJSON(findings)
	}

	if len(findings) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "No rules to review.\n")
		return nil
	}

	_, _ = fmt.Fprintf(a.stdout, "Findings (%d):\n", len(findings))
	for _, f := range findings {
		a.printFinding(f)
	}
	return nil
}

func (a *App) printFinding(f api.ReviewFinding) {
	_, _ = fmt.Fprintf(a.stdout, "\n  Rule %s (%s)\n", f.Rule.ID, f.Rule.Ruleset)
	if f.HandlerName == "" {
		_, _ = fmt.Fprintf(a.stdout, "    No handler covers this rule.\n")
		return
	}
	_, _ = fmt.Fprintf(a.stdout, "    Handler: %s\n", f.HandlerName)

	if f.Result != nil {
		errs, warns := len(f.Result.Errors()), len(f.Result.Warnings())
		switch {
		case errs > 0:
			_, _ = fmt.Fprintf(a.stdout, "    Value: %d error(s), %d warning(s)\n", errs, warns)
		case warns > 0:
			_, _ = fmt.Fprintf(a.stdout, "    Value: %d warning(s)\n", warns)
		default:
			_, _ = fmt.Fprintf(a.stdout, "    Value: ok\n")
		}
		for _, msg := range f.Result.Messages {
			if msg.Field != "" {
				_, _ = fmt.Fprintf(a.stdout, "      [%s] %s: %s\n", msg.Severity, msg.Field, msg.Text)
			} else {
				_, _ = fmt.Fprintf(a.stdout, "      [%s] %s\n", msg.Severity, msg.Text)
			}
		}
	}

	if len(f.Suggestions) > 0 {
		_, _ = fmt.Fprintf(a.stdout, "    Suggestions:\n")
		for _, s := range f.Suggestions {
			_, _ = fmt.Fprintf(a.stdout, "      • %s: %s\n", s.Parameter, s.Reason)
		}
	}
}
