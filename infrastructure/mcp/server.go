package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpgo "go.klarlabs.de/mcp"
	mcpserver "go.klarlabs.de/mcp/server"

	"github.com/felixgeelhaar/checkwise/application"
	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/suggestion"
)

// Operations is the parameter engine surface the server exposes as MCP
// tools. *application.ParameterService satisfies it.
type Operations interface {
	Defaults(ctx context.Context, req application.Request) (*param.Result, error)
	Validate(ctx context.Context, req application.Request) (*param.Result, error)
	Suggest(ctx context.Context, req application.Request) ([]suggestion.Suggestion, error)
	Apply(ctx context.Context, req application.ApplyRequest) (*application.ApplyResult, error)
	Handlers() []handler.View
}

// Transport selects how the server is exposed.
type Transport string

const (
	// TransportStdio serves over stdin/stdout.
	TransportStdio Transport = "stdio"

	// TransportHTTP serves over HTTP with SSE.
	TransportHTTP Transport = "http"
)

// ParameterServer wraps an MCP server to expose parameter operations.
type ParameterServer struct {
	srv  *mcpgo.Server
	ops  Operations
	info mcpgo.ServerInfo
}

// ParameterServerConfig configures a parameter MCP server.
type ParameterServerConfig struct {
	// Name is the server name.
	Name string

	// Version is the server version.
	Version string

	// Operations is the engine to expose. Tools register only when set.
	Operations Operations

	// Description is an optional server description.
	Description string

	// Instructions provides usage instructions for clients.
	Instructions string
}

// NewParameterServer creates a new MCP server that exposes parameter
// operations as tools.
func NewParameterServer(cfg ParameterServerConfig) *ParameterServer {
	info := mcpgo.ServerInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Description: cfg.Description,
		Capabilities: mcpgo.Capabilities{
			Tools: true,
		},
	}

	// Build server options
	var opts []mcpgo.Option
	if cfg.Instructions != "" {
		opts = append(opts, mcpgo.WithInstructions(cfg.Instructions))
	}

	srv := mcpgo.NewServer(info, opts...)

	ps := &ParameterServer{
		srv:  srv,
		ops:  cfg.Operations,
		info: info,
	}

	if cfg.Operations != nil {
		ps.registerTools()
	}

	return ps
}

// operationInput is the JSON input shared by the parameter tools.
type operationInput struct {
	Service    string           `json:"service"`
	Host       string           `json:"host,omitempty"`
	Ruleset    string           `json:"ruleset,omitempty"`
	Parameters param.Parameters `json:"parameters,omitempty"`
	Context    param.Context    `json:"context,omitempty"`
}

// applyInput extends operationInput with persistence fields.
type applyInput struct {
	operationInput
	Folder  string `json:"folder,omitempty"`
	Comment string `json:"comment,omitempty"`
	RuleID  string `json:"rule_id,omitempty"`
}

func (in *operationInput) request() application.Request {
	return application.Request{
		Service: in.Service,
		Host:    in.Host,
		Ruleset: in.Ruleset,
		Params:  in.Parameters,
		Context: in.Context,
	}
}

// registerTools registers the parameter tools with the MCP server.
func (s *ParameterServer) registerTools() {
	s.srv.Tool("get_default_parameters").
		Description("Generate recommended monitoring check parameters for a service. Input: service (required), host, ruleset, context.").
		Handler(s.handleDefaults)

	s.srv.Tool("validate_parameters").
		Description("Validate monitoring check parameters and report graded diagnostics. Input: service (required), parameters (required), host, ruleset, context.").
		Handler(s.handleValidate)

	s.srv.Tool("suggest_parameters").
		Description("Propose parameter optimizations for a service. Suggestions are never applied automatically. Input: service (required), parameters, host, ruleset, context.").
		Handler(s.handleSuggest)

	s.srv.Tool("apply_parameters").
		Description("Validate parameters and persist them as a monitoring rule. Invalid parameters are never persisted. Input: service (required), parameters (required), host, ruleset, context, folder, comment, rule_id.").
		Handler(s.handleApply)

	s.srv.Tool("list_handlers").
		Description("List the registered parameter handlers with their patterns, rulesets, and priorities.").
		Handler(s.handleListHandlers)
}

func (s *ParameterServer) handleDefaults(ctx context.Context, input json.RawMessage) (string, error) {
	var in operationInput
	if err := parseInput(input, &in); err != nil {
		return "", err
	}

	res, err := s.ops.Defaults(ctx, in.request())
	if err != nil {
		return "", err
	}
	return marshalReply(res)
}

func (s *ParameterServer) handleValidate(ctx context.Context, input json.RawMessage) (string, error) {
	var in operationInput
	if err := parseInput(input, &in); err != nil {
		return "", err
	}

	res, err := s.ops.Validate(ctx, in.request())
	if err != nil {
		return "", err
	}
	return marshalReply(res)
}

func (s *ParameterServer) handleSuggest(ctx context.Context, input json.RawMessage) (string, error) {
	var in operationInput
	if err := parseInput(input, &in); err != nil {
		return "", err
	}

	suggestions, err := s.ops.Suggest(ctx, in.request())
	if err != nil {
		return "", err
	}
	if suggestions == nil {
		suggestions = []suggestion.Suggestion{}
	}
	return marshalReply(map[string]any{"suggestions": suggestions})
}

func (s *ParameterServer) handleApply(ctx context.Context, input json.RawMessage) (string, error) {
	var in applyInput
	if err := parseInput(input, &in); err != nil {
		return "", err
	}

	out, err := s.ops.Apply(ctx, application.ApplyRequest{
		Request: in.request(),
		Folder:  in.Folder,
		Comment: in.Comment,
		RuleID:  in.RuleID,
	})
	if err != nil {
		// A refusal is the tool working as documented. The reply carries
		// applied=false and the diagnostics explaining it.
		if errors.Is(err, application.ErrInvalidParameters) && out != nil {
			return marshalReply(out)
		}
		return "", err
	}
	return marshalReply(out)
}

func (s *ParameterServer) handleListHandlers(_ context.Context, _ json.RawMessage) (string, error) {
	views := s.ops.Handlers()
	if views == nil {
		views = []handler.View{}
	}
	return marshalReply(map[string]any{"handlers": views})
}

// parseInput decodes tool input. The zero input is valid JSON for tools
// without required fields.
func parseInput(input json.RawMessage, v any) error {
	if len(input) == 0 {
		return nil
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	return nil
}

func marshalReply(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal reply: %w", err)
	}
	return string(data), nil
}

// Server returns the underlying mcp-go server.
func (s *ParameterServer) Server() *mcpgo.Server {
	return s.srv
}

// Use adds middleware to the server.
func (s *ParameterServer) Use(middlewares ...mcpserver.Middleware) {
	s.srv.Use(middlewares...)
}

// ServeStdio runs the server over stdin/stdout.
func (s *ParameterServer) ServeStdio(ctx context.Context, opts ...mcpgo.ServeOption) error {
	return mcpgo.ServeStdio(ctx, s.srv, opts...)
}

// ServeHTTP runs the server over HTTP with SSE.
func (s *ParameterServer) ServeHTTP(ctx context.Context, addr string, opts ...mcpgo.HTTPOption) error {
	return mcpgo.ServeHTTP(ctx, s.srv, addr, opts...)
}

// Serve runs the server over the selected transport. An empty transport
// defaults to stdio.
func (s *ParameterServer) Serve(ctx context.Context, transport Transport, addr string) error {
	switch transport {
	case TransportStdio, "":
		return s.ServeStdio(ctx)
	case TransportHTTP:
		return s.ServeHTTP(ctx, addr)
	default:
		return fmt.Errorf("unknown transport: %s", transport)
	}
}

// QuickServe is a convenience function to create and run an MCP server
// over stdio.
func QuickServe(ctx context.Context, name, version string, ops Operations) error {
	srv := NewParameterServer(ParameterServerConfig{
		Name:       name,
		Version:    version,
		Operations: ops,
	})
	return srv.ServeStdio(ctx)
}

// Example usage:
//
//	svc, _ := application.NewService(application.ServiceConfig{
//	    Registry: registry.Default(),
//	})
//
//	srv := mcp.NewParameterServer(mcp.ParameterServerConfig{
//	    Name:       "checkwise",
//	    Version:    "0.1.0",
//	    Operations: svc,
//	})
//
//	// Add middleware
//	srv.Use(mcp.Recover(), mcp.RequestID())
//
//	// Serve over stdio
//	srv.ServeStdio(context.Background())
