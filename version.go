// Package checkwise provides the version information for checkwise.
package checkwise

// Version is the current version of checkwise.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
