package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/checkwise/interfaces/api"
)

// defaultsOptions holds options for the defaults command.
type defaultsOptions struct {
	host       string
	ruleset    string
	ctxFacts   map[string]string
	jsonOutput bool
}

// newDefaultsCmd creates the defaults command.
func (a *App) newDefaultsCmd() *cobra.Command {
	opts := &defaultsOptions{}

	cmd := &cobra.Command{
		Use:   "defaults <service>",
		Short: "Generate default parameters for a service",
		Long: `Generate recommended check parameters for a service.

The service name is dispatched to the best matching handler, which
produces defaults tuned by the evaluation context. Facts such as
criticality or environment tighten or loosen the recommended levels.

Examples:
  # Defaults for a temperature check
  checkwise defaults "Temperature Zone 1"

  # Tighten for a production system
  checkwise defaults "Temperature Zone 1" --ctx criticality=production

  # Pin the handler through its ruleset
  checkwise defaults "CPU load" --ruleset checkgroup_cpu_load

  # Output as JSON
  checkwise defaults "Temperature Zone 1" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDefaults(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "Host the check runs on")
	cmd.Flags().StringVar(&opts.ruleset, "ruleset", "", "Resolve the handler through this ruleset")
	cmd.Flags().StringToStringVar(&opts.ctxFacts, "ctx", nil, "Evaluation context facts (key=value)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// runDefaults generates and prints default parameters.
func (a *App) runDefaults(ctx context.Context, service string, opts *defaultsOptions) error {
	runtime, cleanup, err := a.loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := runtime.Service.Defaults(ctx, api.Request{
		Service: service,
		Host:    opts.host,
		Ruleset: opts.ruleset,
		Context: evalContext(opts.ctxFacts),
	})
	if err != nil {
		return fmt.Errorf("generating defaults: %w", err)
	}

	if opts.jsonOutput {
		return a.printJSON(res)
	}

	_, _ = fmt.Fprintf(a.stdout, "Defaults for %q:\n", service)
	a.printResult(res)
	return nil
}
