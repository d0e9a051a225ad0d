package param

// Info is static documentation for one parameter, returned by handlers for
// discovery. Lookups are side-effect free.
type Info struct {
	// Name is the parameter key.
	Name string `json:"name"`

	// Type names the value shape: "levels", "float", "int", "string",
	// "bool", "choice", or "map".
	Type string `json:"type"`

	// Description explains what the parameter controls.
	Description string `json:"description"`

	// Default is the engine-independent default, when one exists.
	Default any `json:"default,omitempty"`

	// Choices enumerates the valid values for choice parameters.
	Choices []string `json:"choices,omitempty"`

	// Unit names the measurement unit, when one applies.
	Unit string `json:"unit,omitempty"`
}
