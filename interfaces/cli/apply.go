package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/checkwise/interfaces/api"
)

// applyOptions holds options for the apply command.
type applyOptions struct {
	paramsFile   string
	paramsInline string
	host         string
	ruleset      string
	folder       string
	comment      string
	ruleID       string
	ctxFacts     map[string]string
	jsonOutput   bool
}

// newApplyCmd creates the apply command.
func (a *App) newApplyCmd() *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply <service>",
		Short: "Validate parameters and persist them as a rule",
		Long: `Validate check parameters and, when they pass, persist them as a
rule in the monitoring backend.

Validation errors refuse the apply: nothing is persisted and the
findings are reported. A configured rule store (rule_store.url) is
required.

Examples:
  # Create a rule from validated parameters
  checkwise apply "Temperature Zone 1" -c config.yaml -f params.yaml

  # Update an existing rule in place
  checkwise apply "Temperature Zone 1" -c config.yaml -f params.yaml --rule-id 9f3c...

  # Target a folder with a comment
  checkwise apply "Temperature Zone 1" -c config.yaml -f params.yaml \
    --folder /monitoring/hall-a --comment "tuned after incident 4711"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runApply(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.paramsFile, "file", "f", "", "Parameter file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.paramsInline, "params", "", "Inline parameters as JSON")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host condition for the rule")
	cmd.Flags().StringVar(&opts.ruleset, "ruleset", "", "Target ruleset (default: the handler's first)")
	cmd.Flags().StringVar(&opts.folder, "folder", "", "Backend folder for the rule")
	cmd.Flags().StringVar(&opts.comment, "comment", "", "Comment stored on the rule")
	cmd.Flags().StringVar(&opts.ruleID, "rule-id", "", "Update this rule instead of creating one")
	cmd.Flags().StringToStringVar(&opts.ctxFacts, "ctx", nil, "Evaluation context facts (key=value)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// runApply validates and persists parameters.
func (a *App) runApply(ctx context.Context, service string, opts *applyOptions) error {
	params, err := loadParams(opts.paramsFile, opts.paramsInline)
	if err != nil {
		return err
	}

	runtime, cleanup, err := a.loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if runtime.Build.RuleStore == nil {
		return fmt.Errorf("apply needs a configured rule store (set rule_store.url)")
	}

	out, err := runtime.Service.Apply(ctx, api.ApplyRequest{
		Request: api.Request{
			Service: service,
			Host:    opts.host,
			Ruleset: opts.ruleset,
			Params:  params,
			Context: evalContext(opts.ctxFacts),
		},
		Folder:  opts.folder,
		Comment: opts.comment,
		RuleID:  opts.ruleID,
	})

	if errors.Is(err, api.ErrInvalidParameters) && out != nil && out.Result != nil {
		if opts.jsonOutput {
			if jsonErr := a.printJSON(out); jsonErr != nil {
				return jsonErr
			}
		} else {
			_, _ = fmt.Fprintf(a.stdout, "Apply refused:\n")
			a.printResult(out.Result)
		}
		return fmt.Errorf("parameters failed validation, nothing was persisted")
	}
	if err != nil {
		return fmt.Errorf("applying parameters: %w", err)
	}

	if opts.jsonOutput {
		return a.printJSON(out)
	}

	action := "created"
	if opts.ruleID != "" {
		action = "updated"
	}
	_, _ = fmt.Fprintf(a.stdout, "✓ Rule %s %s\n", out.RuleID, action)
	a.printResult(out.Result)
	return nil
}
