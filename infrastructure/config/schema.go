package config

import (
	"encoding/json"
)

// JSONSchema represents a JSON Schema document.
type JSONSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	ID                   string                 `json:"$id,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	AdditionalProperties *JSONSchema            `json:"additionalProperties,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Default              any                    `json:"default,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	Maximum              *float64               `json:"maximum,omitempty"`
	Format               string                 `json:"format,omitempty"`
}

// GenerateSchema generates a JSON Schema for the checkwise configuration.
func GenerateSchema() *JSONSchema {
	return &JSONSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          "https://github.com/felixgeelhaar/checkwise/checkwise-config.schema.json",
		Title:       "Checkwise Configuration",
		Description: "Configuration schema for the checkwise parameter engine",
		Type:        "object",
		Properties: map[string]*JSONSchema{
			"logging":       generateLoggingSchema(),
			"registry":      generateRegistrySchema(),
			"rule_store":    generateRuleStoreSchema(),
			"history":       generateHistorySchema(),
			"cache":         generateCacheSchema(),
			"observability": generateObservabilitySchema(),
			"server":        generateServerSchema(),
			"context": {
				Type:        "object",
				Description: "Default evaluation context merged into every request",
			},
		},
	}
}

func generateLoggingSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Log output settings",
		Properties: map[string]*JSONSchema{
			"level": {
				Type:        "string",
				Description: "Minimum log level",
				Enum:        []string{"trace", "debug", "info", "warn", "error", "fatal"},
				Default:     "info",
			},
			"format": {
				Type:        "string",
				Description: "Output format",
				Enum:        []string{"json", "console"},
				Default:     "json",
			},
			"no_color": {
				Type:        "boolean",
				Description: "Disable colored console output",
			},
		},
	}
}

func generateRegistrySchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Handler registry tuning",
		Properties: map[string]*JSONSchema{
			"match_limit": {
				Type:        "integer",
				Description: "Maximum handlers returned per lookup",
				Minimum:     floatPtr(0),
				Default:     3,
			},
			"disabled": {
				Type:        "array",
				Description: "Built-in handlers to disable at startup",
				Items:       &JSONSchema{Type: "string"},
			},
			"priorities": {
				Type:                 "object",
				Description:          "Priority overrides by handler name (lower wins)",
				AdditionalProperties: &JSONSchema{Type: "integer", Minimum: floatPtr(0)},
			},
		},
	}
}

func generateRuleStoreSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Monitoring backend client",
		Properties: map[string]*JSONSchema{
			"url": {
				Type:        "string",
				Description: "Backend base URL; empty disables persistence",
				Format:      "uri",
			},
			"token": {
				Type:        "string",
				Description: "Bearer token",
			},
			"timeout": {
				Type:    "string",
				Format:  "duration",
				Default: "30s",
			},
			"cache_ttl": {
				Type:        "string",
				Description: "Read-through cache lifetime for GET responses",
				Format:      "duration",
			},
			"resilience": {
				Type:        "object",
				Description: "Retry, circuit breaker and bulkhead settings",
				Properties: map[string]*JSONSchema{
					"retry": {
						Type: "object",
						Properties: map[string]*JSONSchema{
							"enabled":       {Type: "boolean"},
							"max_attempts":  {Type: "integer", Minimum: floatPtr(1), Default: 3},
							"initial_delay": {Type: "string", Format: "duration", Default: "1s"},
							"multiplier":    {Type: "number", Minimum: floatPtr(1), Default: 2},
						},
					},
					"circuit_breaker": {
						Type: "object",
						Properties: map[string]*JSONSchema{
							"enabled":   {Type: "boolean"},
							"threshold": {Type: "integer", Minimum: floatPtr(1), Default: 5},
							"timeout":   {Type: "string", Format: "duration", Default: "30s"},
						},
					},
					"bulkhead": {
						Type: "object",
						Properties: map[string]*JSONSchema{
							"enabled":        {Type: "boolean"},
							"max_concurrent": {Type: "integer", Minimum: floatPtr(1), Default: 10},
						},
					},
				},
			},
		},
	}
}

func generateHistorySchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Evaluation history persistence",
		Properties: map[string]*JSONSchema{
			"backend": {
				Type:    "string",
				Enum:    []string{"memory", "badger", "postgres"},
				Default: "memory",
			},
			"path": {
				Type:        "string",
				Description: "Data directory for the badger backend",
			},
			"dsn": {
				Type:        "string",
				Description: "Connection string for the postgres backend",
			},
			"retention": {
				Type:        "string",
				Description: "Prune records older than this age",
				Format:      "duration",
			},
			"max_records": {
				Type:        "integer",
				Description: "Record cap for the in-memory backend",
				Minimum:     floatPtr(0),
			},
		},
	}
}

func generateCacheSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Response cache",
		Properties: map[string]*JSONSchema{
			"backend": {
				Type:    "string",
				Enum:    []string{"memory", "redis"},
				Default: "memory",
			},
			"addr": {
				Type:        "string",
				Description: "Redis server address",
			},
			"password": {Type: "string"},
			"db":       {Type: "integer", Minimum: floatPtr(0)},
			"key_prefix": {
				Type:        "string",
				Description: "Namespace prefix for cache keys",
			},
			"ttl": {
				Type:    "string",
				Format:  "duration",
				Default: "5m",
			},
		},
	}
}

func generateObservabilitySchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Tracing and metrics export",
		Properties: map[string]*JSONSchema{
			"enabled":      {Type: "boolean"},
			"service_name": {Type: "string", Default: "checkwise"},
			"endpoint": {
				Type:        "string",
				Description: "OTLP gRPC collector endpoint",
			},
			"insecure": {Type: "boolean"},
			"sample_ratio": {
				Type:    "number",
				Minimum: floatPtr(0),
				Maximum: floatPtr(1),
				Default: 1,
			},
			"stdout": {
				Type:        "boolean",
				Description: "Export spans to stdout instead of a collector",
			},
		},
	}
}

func generateServerSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Tool server transport",
		Properties: map[string]*JSONSchema{
			"transport": {
				Type:    "string",
				Enum:    []string{"stdio", "http"},
				Default: "stdio",
			},
			"addr": {
				Type:        "string",
				Description: "Listen address for the http transport",
				Default:     ":8080",
			},
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

// SchemaJSON returns the JSON Schema as a JSON string.
func SchemaJSON() (string, error) {
	schema := GenerateSchema()
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
