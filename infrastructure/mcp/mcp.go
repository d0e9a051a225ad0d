// Package mcp exposes the parameter engine over the Model Context
// Protocol. It wraps github.com/felixgeelhaar/mcp-go so AI clients can
// generate, validate, optimize and apply check parameters as tools.
package mcp

import (
	mcpgo "go.klarlabs.de/mcp"
)

// Re-export the mcp-go surface callers deal with when embedding the
// parameter server.
type (
	// ServerInfo contains MCP server metadata.
	ServerInfo = mcpgo.ServerInfo

	// Capabilities declares features the server supports.
	Capabilities = mcpgo.Capabilities

	// ServeOption configures server behavior.
	ServeOption = mcpgo.ServeOption

	// HTTPOption configures HTTP transport.
	HTTPOption = mcpgo.HTTPOption
)

// Middleware for the tool request path.
var (
	// Recover turns tool handler panics into protocol errors.
	Recover = mcpgo.Recover

	// RequestID stamps every request with a unique id.
	RequestID = mcpgo.RequestID
)
