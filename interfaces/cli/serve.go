package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
	"github.com/felixgeelhaar/checkwise/infrastructure/mcp"
	api "github.com/felixgeelhaar/checkwise/interfaces/api"
)

// pruneInterval is how often retained history is trimmed while serving.
const pruneInterval = time.Hour

// serveOptions holds options for the serve command.
type serveOptions struct {
	httpAddr string
	stdio    bool
}

// newServeCmd creates the serve command.
func (a *App) newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve parameter operations over MCP",
		Long: `Expose the parameter engine as an MCP tool server.

AI assistants connect over stdio or HTTP and call the parameter tools:
get_default_parameters, validate_parameters, suggest_parameters,
apply_parameters and list_handlers. The transport comes from the
server section of the configuration; flags override it.

While serving, the configuration file is watched so log level changes
take effect without a restart, and retained history is pruned
periodically when a retention is configured.

Examples:
  # Serve over stdio (MCP client integration)
  checkwise serve -c config.yaml

  # Serve over HTTP
  checkwise serve -c config.yaml --http :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.httpAddr, "http", "", "Serve over HTTP on this address")
	cmd.Flags().BoolVar(&opts.stdio, "stdio", false, "Serve over stdio even when the config says http")

	return cmd
}

// runServe starts the MCP server.
func (a *App) runServe(ctx context.Context, opts *serveOptions) error {
	if opts.httpAddr != "" && opts.stdio {
		return fmt.Errorf("use either --http or --stdio, not both")
	}

	runtime, cleanup, err := a.loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	transport := mcp.Transport(runtime.Build.Transport)
	addr := runtime.Build.Addr
	switch {
	case opts.httpAddr != "":
		transport = mcp.TransportHTTP
		addr = opts.httpAddr
	case opts.stdio:
		transport = mcp.TransportStdio
	}

	server := mcp.NewParameterServer(mcp.ParameterServerConfig{
		Name:       "checkwise",
		Version:    Version,
		Operations: runtime.Service,
		Description: "Monitoring check parameter engine: context-aware defaults, " +
			"validation, suggestions and rule persistence.",
	})
	server.Use(mcp.Recover(), mcp.RequestID())

	if runtime.Build.HistoryRetention > 0 {
		go a.pruneLoop(ctx, runtime.Service, runtime.Build.HistoryRetention)
	}

	if a.configPath != "" {
		watcher, err := api.WatchConfig(a.configPath, func(cfg *api.Config) {
			if cfg.Logging.Level != "" {
				logging.SetLevel(cfg.Logging.Level)
			}
		})
		if err != nil {
			_, _ = fmt.Fprintf(a.stderr, "warning: config watch disabled: %v\n", err)
		} else {
			defer func() {
				if cerr := watcher.Close(); cerr != nil {
					_, _ = fmt.Fprintf(a.stderr, "warning: closing config watcher: %v\n", cerr)
				}
			}()
		}
	}

	if transport == mcp.TransportHTTP {
		_, _ = fmt.Fprintf(a.stderr, "Serving MCP over HTTP on %s\n", addr)
	}

	return server.Serve(ctx, transport, addr)
}

// pruneLoop trims history records older than the retention until the
// context ends.
func (a *App) pruneLoop(ctx context.Context, svc *api.Service, retention time.Duration) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	prune := func() {
		n, err := svc.PruneHistory(ctx, time.Now().Add(-retention))
		if err != nil {
			logging.Warn().
				Add(logging.ErrorField(err)).
				Msg("history prune failed")
			return
		}
		if n > 0 {
			logging.Debug().
				Add(logging.Int("pruned", n)).
				Msg("pruned history records")
		}
	}

	prune()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
