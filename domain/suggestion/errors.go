package suggestion

import "errors"

var (
	// ErrGenerationFailed indicates suggestion generation failed.
	ErrGenerationFailed = errors.New("suggestion generation failed")

	// ErrInvalidKind indicates an unknown suggestion kind.
	ErrInvalidKind = errors.New("invalid suggestion kind")
)
