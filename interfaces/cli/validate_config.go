package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/felixgeelhaar/checkwise/interfaces/api"
)

// validateConfigOptions holds options for the validate-config command.
type validateConfigOptions struct {
	strict     bool
	showSchema bool
}

// newValidateConfigCmd creates the validate-config command.
func (a *App) newValidateConfigCmd() *cobra.Command {
	opts := &validateConfigOptions{}

	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Validate a configuration file",
		Long: `Validate a checkwise configuration file for correctness.

This command checks:
  - File format (YAML or JSON)
  - Field types and constraints
  - Backend selections (history, cache, server transport)
  - Environment variable references (in strict mode)

The file is not used to open any connections; a valid file can still
fail at startup when a backend is unreachable.

Examples:
  # Validate a configuration file
  checkwise validate-config -c config.yaml

  # Strict validation (fail on unset env vars)
  checkwise validate-config -c config.yaml --strict

  # Show the JSON schema for configuration
  checkwise validate-config --schema`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showSchema {
				return a.showConfigSchema()
			}
			return a.validateConfig(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on unset env vars)")
	cmd.Flags().BoolVar(&opts.showSchema, "schema", false, "Show JSON schema for configuration")

	return cmd
}

// validateConfig validates the configuration file.
func (a *App) validateConfig(opts *validateConfigOptions) error {
	if a.configPath == "" {
		return fmt.Errorf("configuration file path is required (-c flag)")
	}

	loaderOpts := []api.ConfigLoaderOption{
		api.ConfigWithValidation(true),
	}
	if opts.strict {
		loaderOpts = append(loaderOpts, api.ConfigWithStrictEnv(true))
	}

	loader := api.NewConfigLoaderWithOptions(loaderOpts...)
	config, err := loader.LoadFile(a.configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, _ = fmt.Fprintf(a.stdout, "✓ Configuration is valid\n")

	// Summary
	_, _ = fmt.Fprintf(a.stdout, "\nConfiguration summary:\n")
	if config.Logging.Level != "" {
		_, _ = fmt.Fprintf(a.stdout, "  Log level: %s\n", config.Logging.Level)
	}

	historyBackend := config.History.Backend
	if historyBackend == "" {
		historyBackend = "memory"
	}
	_, _ = fmt.Fprintf(a.stdout, "  History backend: %s\n", historyBackend)
	if config.History.Retention.Duration() > 0 {
		_, _ = fmt.Fprintf(a.stdout, "  History retention: %s\n", config.History.Retention.Duration())
	}

	cacheBackend := config.Cache.Backend
	if cacheBackend == "" {
		cacheBackend = "memory"
	}
	_, _ = fmt.Fprintf(a.stdout, "  Cache backend: %s\n", cacheBackend)

	if config.RuleStore.URL != "" {
		_, _ = fmt.Fprintf(a.stdout, "  Rule store: %s\n", config.RuleStore.URL)
		if config.RuleStore.CacheTTL.Duration() > 0 {
			_, _ = fmt.Fprintf(a.stdout, "  Rule cache TTL: %s\n", config.RuleStore.CacheTTL.Duration())
		}
	} else {
		_, _ = fmt.Fprintf(a.stdout, "  Rule store: not configured (apply disabled)\n")
	}

	if config.Observability.Enabled {
		_, _ = fmt.Fprintf(a.stdout, "  Observability: enabled (service %s)\n", config.Observability.ServiceName)
	}

	transport := config.Server.Transport
	if transport == "" {
		transport = "stdio"
	}
	_, _ = fmt.Fprintf(a.stdout, "  Server transport: %s\n", transport)

	if len(config.Registry.Disabled) > 0 {
		_, _ = fmt.Fprintf(a.stdout, "  Disabled handlers: %v\n", config.Registry.Disabled)
	}

	return nil
}

// showConfigSchema displays the JSON schema for configuration.
func (a *App) showConfigSchema() error {
	schemaJSON, err := api.ConfigSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Fprintln(a.stdout, schemaJSON)
	return nil
}
