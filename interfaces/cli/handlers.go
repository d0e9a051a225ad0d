package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/checkwise/interfaces/api"
)

// handlersOptions holds options for the handlers command.
type handlersOptions struct {
	service    string
	limit      int
	all        bool
	jsonOutput bool
}

// newHandlersCmd creates the handlers command.
func (a *App) newHandlersCmd() *cobra.Command {
	opts := &handlersOptions{}

	cmd := &cobra.Command{
		Use:   "handlers",
		Short: "List registered parameter handlers",
		Long: `List the parameter handlers the engine dispatches to.

Without flags the enabled handlers are shown in priority order. With
--service the candidates that would serve that service are shown in
dispatch order instead.

Examples:
  # List enabled handlers
  checkwise handlers

  # Include disabled handlers
  checkwise handlers --all

  # Show the dispatch candidates for a service
  checkwise handlers --service "Temperature Zone 1"

  # Output as JSON
  checkwise handlers --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listHandlers(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.service, "service", "", "Show dispatch candidates for this service")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum dispatch candidates (default from config)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Include disabled handlers")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// listHandlers lists registered handlers or dispatch candidates.
func (a *App) listHandlers(cmd *cobra.Command, opts *handlersOptions) error {
	runtime, cleanup, err := a.loadRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.service != "" {
		return a.listCandidates(runtime, opts)
	}

	views := runtime.Build.Registry.List(!opts.all)
	if opts.jsonOutput {
		return a.printJSON(views)
	}

	if len(views) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "No handlers registered.\n")
		return nil
	}

	_, _ = fmt.Fprintf(a.stdout, "Handlers (%d):\n", len(views))
	for _, v := range views {
		a.printHandlerView(v)
	}
	return nil
}

// listCandidates shows the handlers that would serve a service, in
// dispatch order.
func (a *App) listCandidates(runtime *api.Runtime, opts *handlersOptions) error {
	limit := opts.limit
	if limit <= 0 {
		limit = runtime.Build.MatchLimit
	}

	candidates := runtime.Build.Registry.HandlersForService(opts.service, limit)

	if opts.jsonOutput {
		type candidate struct {
			Name              string   `json:"name"`
			ServicePatterns   []string `json:"service_patterns"`
			SupportedRulesets []string `json:"supported_rulesets"`
		}
		out := make([]candidate, 0, len(candidates))
		for _, h := range candidates {
			out = append(out, candidate{
				Name:              h.Name(),
				ServicePatterns:   h.ServicePatterns(),
				SupportedRulesets: h.SupportedRulesets(),
			})
		}
		return a.printJSON(out)
	}

	if len(candidates) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "No handler matches %q.\n", opts.service)
		return nil
	}

	_, _ = fmt.Fprintf(a.stdout, "Candidates for %q (dispatch order):\n", opts.service)
	for i, h := range candidates {
		_, _ = fmt.Fprintf(a.stdout, "  %d. %s\n", i+1, h.Name())
		if rulesets := h.SupportedRulesets(); len(rulesets) > 0 {
			_, _ = fmt.Fprintf(a.stdout, "     Rulesets: %s\n", strings.Join(rulesets, ", "))
		}
	}
	return nil
}

func (a *App) printHandlerView(v api.HandlerView) {
	state := ""
	if !v.Enabled {
		state = " (disabled)"
	}
	_, _ = fmt.Fprintf(a.stdout, "\n  %s%s\n", v.Name, state)
	if v.Description != "" {
		_, _ = fmt.Fprintf(a.stdout, "    Description: %s\n", v.Description)
	}
	_, _ = fmt.Fprintf(a.stdout, "    Priority: %d\n", v.Priority)
	if len(v.ServicePatterns) > 0 {
		_, _ = fmt.Fprintf(a.stdout, "    Patterns: %s\n", strings.Join(v.ServicePatterns, ", "))
	}
	if len(v.SupportedRulesets) > 0 {
		_, _ = fmt.Fprintf(a.stdout, "    Rulesets: %s\n", strings.Join(v.SupportedRulesets, ", "))
	}
}
