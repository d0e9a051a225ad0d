package registry

import (
	"sync"

	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/infrastructure/handlers"
	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
)

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, populated with the built-in
// handlers on first use.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRegistry == nil {
		defaultRegistry = New()
		registerBuiltins(defaultRegistry)
	}
	return defaultRegistry
}

// ResetDefault discards the process-wide registry so the next Default call
// rebuilds it. Intended for tests.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = nil
}

// registerBuiltins registers the shipped handlers. Each registration is
// fault-isolated: a failure logs a warning and the remaining handlers
// still register.
func registerBuiltins(r *Registry) {
	builtins := []handler.Registration{
		{
			Constructor: func() (handler.Handler, error) { return handlers.NewTemperatureHandler() },
			Priority:    10,
			Description: "Hardware temperature thresholds per sensor type",
			Enabled:     true,
		},
		{
			Constructor: func() (handler.Handler, error) { return handlers.NewDatabaseHandler() },
			Priority:    15,
			Description: "Database connection and engine metric thresholds",
			Enabled:     true,
		},
		{
			Constructor: func() (handler.Handler, error) { return handlers.NewCustomCheckHandler() },
			Priority:    20,
			Description: "Operator-defined checks: local, MRPE, Nagios plugins and scripts",
			Enabled:     true,
		},
		{
			Constructor: func() (handler.Handler, error) { return handlers.NewNetworkServiceHandler() },
			Priority:    25,
			Description: "Network service probes: http(s), dns, ssh, ftp, smtp and raw tcp",
			Enabled:     true,
		},
	}
	for _, reg := range builtins {
		if err := r.Register(reg); err != nil {
			logging.Warn().
				Add(logging.Priority(reg.Priority)).
				Add(logging.ErrorField(err)).
				Msg("skipping built-in handler registration")
		}
	}
}
