package handler

import "errors"

// Domain errors for the handler system.
var (
	// ErrEmptyName indicates a handler was registered with an empty name.
	ErrEmptyName = errors.New("handler name cannot be empty")

	// ErrNoConstructor indicates a registration without a constructor.
	ErrNoConstructor = errors.New("handler has no constructor")

	// ErrHandlerNotFound indicates the requested handler was not found.
	ErrHandlerNotFound = errors.New("handler not found")

	// ErrConstructionFailed indicates the handler constructor returned an error.
	ErrConstructionFailed = errors.New("handler construction failed")
)
