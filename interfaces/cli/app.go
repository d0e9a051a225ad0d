// Package cli provides the checkwise command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
	api "github.com/felixgeelhaar/checkwise/interfaces/api"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "checkwise",
		Short: "Monitoring check parameter engine",
		Long: `checkwise generates, validates and optimizes monitoring check parameters.

Service names are dispatched to parameter handlers by pattern. Handlers
produce context-aware defaults, validate proposed thresholds against
typed policies, and suggest improvements; accepted parameter sets are
persisted as rules in the monitoring backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.initLogging()
		},
	}

	app.root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to configuration file")
	app.root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	// Add subcommands
	app.root.AddCommand(
		app.newVersionCmd(),
		app.newHandlersCmd(),
		app.newDefaultsCmd(),
		app.newValidateCmd(),
		app.newSuggestCmd(),
		app.newApplyCmd(),
		app.newReviewCmd(),
		app.newHistoryCmd(),
		app.newServeCmd(),
		app.newValidateConfigCmd(),
		app.newExportSchemaCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	// Set up signal handling
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// initLogging applies the --log-level flag. The first Init wins, so an
// explicit flag takes precedence over the config file's logging section.
func (a *App) initLogging() error {
	if a.logLevel == "" {
		return nil
	}
	switch a.logLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", a.logLevel)
	}
	cfg := logging.DefaultConfig()
	cfg.Level = a.logLevel
	logging.Init(cfg)
	return nil
}

// loadRuntime assembles the engine: from the config file when one is set,
// otherwise from the built-in defaults (memory stores, no rule store).
func (a *App) loadRuntime(ctx context.Context) (*api.Runtime, func(), error) {
	var (
		runtime *api.Runtime
		err     error
	)
	if a.configPath != "" {
		runtime, err = api.FromFile(ctx, a.configPath)
	} else {
		runtime, err = api.FromConfig(ctx, api.DefaultConfig())
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if cerr := runtime.Close(context.Background()); cerr != nil {
			_, _ = fmt.Fprintf(a.stderr, "warning: closing components: %v\n", cerr)
		}
	}
	return runtime, cleanup, nil
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "checkwise version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}

// printJSON writes v as indented JSON to stdout.
func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult renders a parameter result as text.
func (a *App) printResult(res *api.Result) {
	if len(res.Parameters) > 0 {
		_, _ = fmt.Fprintf(a.stdout, "Parameters:\n")
		a.printParams(res.Parameters)
	}
	if len(res.Normalized) > 0 {
		_, _ = fmt.Fprintf(a.stdout, "Normalized:\n")
		a.printParams(res.Normalized)
	}
	for _, msg := range res.Messages {
		marker := "•"
		switch msg.Severity {
		case api.SeverityError:
			marker = "✗"
		case api.SeverityWarning:
			marker = "!"
		}
		if msg.Field != "" {
			_, _ = fmt.Fprintf(a.stdout, "  %s [%s] %s: %s\n", marker, msg.Severity, msg.Field, msg.Text)
		} else {
			_, _ = fmt.Fprintf(a.stdout, "  %s [%s] %s\n", marker, msg.Severity, msg.Text)
		}
		if msg.SuggestedFix != "" {
			_, _ = fmt.Fprintf(a.stdout, "      fix: %s\n", msg.SuggestedFix)
		}
	}
}

// printParams writes a parameter set in stable key order.
func (a *App) printParams(params api.Parameters) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(a.stdout, "  %s: %v\n", k, params[k])
	}
}

// evalContext converts --ctx key=value flags into an evaluation context.
func evalContext(kvs map[string]string) api.Context {
	if len(kvs) == 0 {
		return nil
	}
	ctx := make(api.Context, len(kvs))
	for k, v := range kvs {
		ctx[k] = v
	}
	return ctx
}
