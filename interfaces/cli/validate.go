package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	api "github.com/felixgeelhaar/checkwise/interfaces/api"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	paramsFile   string
	paramsInline string
	host         string
	ruleset      string
	ctxFacts     map[string]string
	jsonOutput   bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <service>",
		Short: "Validate check parameters for a service",
		Long: `Validate proposed check parameters against the matching handler.

Parameters come from a YAML or JSON file (-f) or inline JSON (--params).
Findings are reported by severity; the command fails when any
error-severity finding is present.

Examples:
  # Validate parameters from a file
  checkwise validate "Temperature Zone 1" -f params.yaml

  # Validate inline JSON
  checkwise validate "Temperature Zone 1" --params '{"levels": [75, 85]}'

  # Validation findings as JSON
  checkwise validate "Temperature Zone 1" -f params.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.paramsFile, "file", "f", "", "Parameter file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.paramsInline, "params", "", "Inline parameters as JSON")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host the check runs on")
	cmd.Flags().StringVar(&opts.ruleset, "ruleset", "", "Resolve the handler through this ruleset")
	cmd.Flags().StringToStringVar(&opts.ctxFacts, "ctx", nil, "Evaluation context facts (key=value)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// runValidate validates parameters and reports findings.
func (a *App) runValidate(ctx context.Context, service string, opts *validateOptions) error {
	params, err := loadParams(opts.paramsFile, opts.paramsInline)
	if err != nil {
		return err
	}

	runtime, cleanup, err := a.loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := runtime.Service.Validate(ctx, api.Request{
		Service: service,
		Host:    opts.host,
		Ruleset: opts.ruleset,
		Params:  params,
		Context: evalContext(opts.ctxFacts),
	})
	if err != nil {
		return fmt.Errorf("validating parameters: %w", err)
	}

	if opts.jsonOutput {
		if err := a.printJSON(res); err != nil {
			return err
		}
	} else {
		a.printResult(res)
		if res.IsValid() {
			_, _ = fmt.Fprintf(a.stdout, "✓ Parameters are valid\n")
		}
	}

	if n := len(res.Errors()); n > 0 {
		return fmt.Errorf("%d validation error(s)", n)
	}
	return nil
}

// loadParams reads parameters from a file or an inline JSON string.
// YAML is a superset of JSON here, so one decoder covers both.
func loadParams(file, inline string) (api.Parameters, error) {
	if file != "" && inline != "" {
		return nil, fmt.Errorf("use either --file or --params, not both")
	}

	var data []byte
	switch {
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading parameter file: %w", err)
		}
		data = b
	case inline != "":
		data = []byte(inline)
	default:
		return nil, fmt.Errorf("parameters are required (use -f or --params)")
	}

	var params api.Parameters
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("parsing parameters: %w", err)
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("parameter set is empty")
	}
	return params, nil
}
