package telemetry

import "errors"

var (
	// ErrExporterFailed indicates a telemetry exporter could not be built.
	ErrExporterFailed = errors.New("telemetry exporter failed")

	// ErrShutdownFailed indicates telemetry shutdown did not complete cleanly.
	ErrShutdownFailed = errors.New("telemetry shutdown failed")
)
