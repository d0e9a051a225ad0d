package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/checkwise/interfaces/api"
)

// historyOptions holds options for the history command.
type historyOptions struct {
	service    string
	handler    string
	action     string
	since      time.Duration
	limit      int
	jsonOutput bool
}

// newHistoryCmd creates the history command.
func (a *App) newHistoryCmd() *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the audit trail of parameter operations",
		Long: `Show audited parameter operations, newest first.

Every defaults, validate and apply operation is recorded with its
outcome. Filters narrow the listing; --since takes a duration like
24h or 30m.

Examples:
  # The most recent operations
  checkwise history -c config.yaml --limit 20

  # Applies for one service in the last day
  checkwise history -c config.yaml --service "Temperature Zone 1" \
    --action apply --since 24h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.service, "service", "", "Filter by exact service name")
	cmd.Flags().StringVar(&opts.handler, "handler", "", "Filter by handler name")
	cmd.Flags().StringVar(&opts.action, "action", "", "Filter by action (defaults, validate, apply)")
	cmd.Flags().DurationVar(&opts.since, "since", 0, "Only records younger than this")
	cmd.Flags().IntVar(&opts.limit, "limit", 50, "Maximum records to show (0 = all)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// runHistory lists audit records.
func (a *App) runHistory(ctx context.Context, opts *historyOptions) error {
	runtime, cleanup, err := a.loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	filter := api.HistoryFilter{
		Service: opts.service,
		Handler: opts.handler,
		Action:  api.HistoryAction(opts.action),
		Limit:   opts.limit,
	}
	if opts.since > 0 {
		filter.Since = time.Now().Add(-opts.since)
	}

	records, err := runtime.Service.History(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	if opts.jsonOutput {
		return a.printJSON(records)
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "No records.\n")
		return nil
	}

	for _, rec := range records {
		status := "ok"
		if !rec.Valid {
			status = fmt.Sprintf("%d error(s)", rec.ErrorCount)
		} else if rec.WarningCount > 0 {
			status = fmt.Sprintf("%d warning(s)", rec.WarningCount)
		}

		_, _ = fmt.Fprintf(a.stdout, "%s  %-9s %-30q %s",
			rec.Time.Format(time.RFC3339), rec.Action, rec.Service, status)
		if rec.RuleID != "" {
			_, _ = fmt.Fprintf(a.stdout, "  rule=%s", rec.RuleID)
		}
		_, _ = fmt.Fprintln(a.stdout)
	}
	return nil
}
