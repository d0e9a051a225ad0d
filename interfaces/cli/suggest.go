package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/checkwise/interfaces/api"
)

// suggestOptions holds options for the suggest command.
type suggestOptions struct {
	paramsFile   string
	paramsInline string
	host         string
	ruleset      string
	ctxFacts     map[string]string
	jsonOutput   bool
}

// newSuggestCmd creates the suggest command.
func (a *App) newSuggestCmd() *cobra.Command {
	opts := &suggestOptions{}

	cmd := &cobra.Command{
		Use:   "suggest <service>",
		Short: "Suggest parameter improvements for a service",
		Long: `Propose improvements over the current check parameters.

Suggestions are advisory and never applied automatically. Passing the
current parameters (-f or --params) lets the handler compare them with
its recommendations; without them, suggestions start from the handler
defaults.

Examples:
  # Suggestions against current parameters
  checkwise suggest "Temperature Zone 1" -f current.yaml

  # Suggestions for a production system
  checkwise suggest "Temperature Zone 1" --ctx criticality=production

  # Output as JSON
  checkwise suggest "Temperature Zone 1" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSuggest(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.paramsFile, "file", "f", "", "Current parameter file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.paramsInline, "params", "", "Current parameters as inline JSON")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host the check runs on")
	cmd.Flags().StringVar(&opts.ruleset, "ruleset", "", "Resolve the handler through this ruleset")
	cmd.Flags().StringToStringVar(&opts.ctxFacts, "ctx", nil, "Evaluation context facts (key=value)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// runSuggest fetches and prints suggestions.
func (a *App) runSuggest(ctx context.Context, service string, opts *suggestOptions) error {
	var params api.Parameters
	if opts.paramsFile != "" || opts.paramsInline != "" {
		var err error
		params, err = loadParams(opts.paramsFile, opts.paramsInline)
		if err != nil {
			return err
		}
	}

	runtime, cleanup, err := a.loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	suggestions, err := runtime.Service.Suggest(ctx, api.Request{
		Service: service,
		Host:    opts.host,
		Ruleset: opts.ruleset,
		Params:  params,
		Context: evalContext(opts.ctxFacts),
	})
	if err != nil {
		return fmt.Errorf("generating suggestions: %w", err)
	}

	if opts.jsonOutput {
		return a.printJSON(suggestions)
	}

	if len(suggestions) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "No suggestions for %q.\n", service)
		return nil
	}

	_, _ = fmt.Fprintf(a.stdout, "Suggestions for %q (%d):\n", service, len(suggestions))
	for _, s := range suggestions {
		_, _ = fmt.Fprintf(a.stdout, "\n  • %s [%s, impact: %s]\n", s.Parameter, s.Kind, s.Impact)
		_, _ = fmt.Fprintf(a.stdout, "    %s\n", s.Reason)
		if s.Current != nil || s.Proposed != nil {
			_, _ = fmt.Fprintf(a.stdout, "    %v → %v\n", s.Current, s.Proposed)
		}
	}
	return nil
}
