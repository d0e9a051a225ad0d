package handler

// DefaultMatchLimit caps how many candidate handlers a lookup returns when
// the caller does not specify a limit.
const DefaultMatchLimit = 3

// Registry defines handler registration and dispatch lookup.
// This is a repository interface - implementations are in infrastructure.
type Registry interface {
	// Register adds a handler registration. An existing registration with
	// the same name is replaced.
	Register(reg Registration) error

	// Unregister removes a registration. It reports whether the name was
	// registered.
	Unregister(name string) bool

	// Get returns the live handler instance, constructing it on first use.
	// It returns nil for unknown or disabled handlers.
	Get(name string) Handler

	// HandlersForService returns up to limit enabled handlers whose service
	// patterns match the service name, ordered by ascending priority.
	HandlersForService(service string, limit int) []Handler

	// HandlersForRuleset returns up to limit enabled handlers that support
	// the ruleset, ordered by ascending priority.
	HandlersForRuleset(ruleset string, limit int) []Handler

	// BestHandler returns the single best handler for the service name
	// and/or ruleset, or nil when nothing matches.
	BestHandler(service, ruleset string) Handler

	// List returns registration metadata for diagnostics.
	List(enabledOnly bool) []View

	// Enable marks a handler as eligible for dispatch.
	Enable(name string) bool

	// Disable removes a handler from dispatch without unregistering it.
	Disable(name string) bool
}
