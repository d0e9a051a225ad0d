package handler

// Constructor creates a new handler instance.
type Constructor func() (Handler, error)

// Registration holds the metadata needed to construct and dispatch a
// handler. The live instance is built lazily on first use.
type Registration struct {
	// Name is the handler's stable identifier, captured at registration.
	Name string

	// Constructor builds the handler instance.
	Constructor Constructor

	// Priority orders candidate handlers; lower values are preferred.
	Priority int

	// Description is a human-readable summary for diagnostics.
	Description string

	// Enabled controls whether the handler participates in dispatch.
	Enabled bool
}

// Validate checks that the registration is usable.
func (r Registration) Validate() error {
	if r.Name == "" {
		return ErrEmptyName
	}
	if r.Constructor == nil {
		return ErrNoConstructor
	}
	return nil
}

// View is a read-only snapshot of a registration for diagnostics. It is
// never used for dispatch.
type View struct {
	Name              string   `json:"name"`
	Priority          int      `json:"priority"`
	Description       string   `json:"description"`
	Enabled           bool     `json:"enabled"`
	ServicePatterns   []string `json:"service_patterns"`
	SupportedRulesets []string `json:"supported_rulesets"`
}
