package config

import (
	"encoding/json"
	"testing"
)

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema()

	if schema.Type != "object" {
		t.Errorf("Type = %q, want object", schema.Type)
	}
	for _, section := range []string{"logging", "registry", "rule_store", "history", "cache", "observability", "server", "context"} {
		if _, ok := schema.Properties[section]; !ok {
			t.Errorf("schema missing section %q", section)
		}
	}

	backend := schema.Properties["history"].Properties["backend"]
	if len(backend.Enum) != 3 {
		t.Errorf("history.backend enum = %v, want 3 backends", backend.Enum)
	}
}

func TestSchemaJSON(t *testing.T) {
	out, err := SchemaJSON()
	if err != nil {
		t.Fatalf("SchemaJSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["title"] != "Checkwise Configuration" {
		t.Errorf("title = %v", decoded["title"])
	}
}
