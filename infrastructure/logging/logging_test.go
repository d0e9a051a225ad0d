package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/checkwise/domain/history"
)

// testLogger creates a logger that writes to a buffer for testing
func testLogger() (*bolt.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := bolt.NewJSONHandler(buf)
	logger := bolt.New(handler).SetLevel(bolt.TRACE)
	return logger, buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()

	if config.Level != "info" {
		t.Errorf("Level = %s, want info", config.Level)
	}
	if config.Format != "console" {
		t.Errorf("Format = %s, want console", config.Format)
	}
	if config.Output != os.Stderr {
		t.Errorf("Output = %v, want os.Stderr", config.Output)
	}
}

func TestProductionConfig(t *testing.T) {
	t.Parallel()

	config := ProductionConfig()

	if config.Level != "info" {
		t.Errorf("Level = %s, want info", config.Level)
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"info", bolt.INFO},
		{"warn", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO}, // Default
		{"", bolt.INFO},        // Empty defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%s) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestServiceField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	field := Service("CPU Temperature")
	if field == nil {
		t.Fatal("Service() returned nil")
	}

	event := logger.Info()
	field(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"service":"CPU Temperature"`)) {
		t.Errorf("expected service field in output: %s", buf.String())
	}
}

func TestHandlerNameField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	field := HandlerName("temperature")
	if field == nil {
		t.Fatal("HandlerName() returned nil")
	}

	event := logger.Info()
	field(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"handler":"temperature"`)) {
		t.Errorf("expected handler field in output: %s", buf.String())
	}
}

func TestActionField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	field := Action(history.ActionValidate)
	if field == nil {
		t.Fatal("Action() returned nil")
	}

	event := logger.Info()
	field(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"action":"validate"`)) {
		t.Errorf("expected action field in output: %s", buf.String())
	}
}

func TestMessageCountsField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	field := MessageCounts(2, 1)
	if field == nil {
		t.Fatal("MessageCounts() returned nil")
	}

	event := logger.Info()
	field(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"errors":2`)) {
		t.Errorf("expected errors field in output: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"warnings":1`)) {
		t.Errorf("expected warnings field in output: %s", buf.String())
	}
}

func TestDurationField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	field := Duration(100 * time.Millisecond)
	if field == nil {
		t.Fatal("Duration() returned nil")
	}

	event := logger.Info()
	field(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"duration_ms":100`)) {
		t.Errorf("expected duration_ms field in output: %s", buf.String())
	}
}

func TestErrorField(t *testing.T) {
	t.Parallel()

	t.Run("with error", func(t *testing.T) {
		t.Parallel()

		logger, buf := testLogger()
		field := ErrorField(errors.New("test error"))
		if field == nil {
			t.Fatal("ErrorField() returned nil")
		}

		event := logger.Info()
		field(event).Msg("test")

		if !bytes.Contains(buf.Bytes(), []byte(`"error":"test error"`)) {
			t.Errorf("expected error field in output: %s", buf.String())
		}
	})

	t.Run("with nil error", func(t *testing.T) {
		t.Parallel()

		logger, buf := testLogger()
		field := ErrorField(nil)
		if field == nil {
			t.Fatal("ErrorField(nil) returned nil")
		}

		event := logger.Info()
		field(event).Msg("test")

		// Should not contain error field
		if bytes.Contains(buf.Bytes(), []byte(`"error"`)) {
			t.Errorf("unexpected error field in output: %s", buf.String())
		}
	})
}

func TestValidField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	field := Valid(false)
	if field == nil {
		t.Fatal("Valid() returned nil")
	}

	event := logger.Info()
	field(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"valid":false`)) {
		t.Errorf("expected valid field in output: %s", buf.String())
	}
}

func TestStrField(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	field := Str("custom_key", "custom_value")
	if field == nil {
		t.Fatal("Str() returned nil")
	}

	event := logger.Info()
	field(event).Msg("test")

	if !bytes.Contains(buf.Bytes(), []byte(`"custom_key":"custom_value"`)) {
		t.Errorf("expected custom_key field in output: %s", buf.String())
	}
}

// TestGet tests getting the default logger
func TestGet(t *testing.T) {
	logger := Get()
	if logger == nil {
		t.Fatal("Get() returned nil")
	}
}

// TestSetLevel tests changing the log level
func TestSetLevel(t *testing.T) {
	// Just verify it doesn't panic
	SetLevel("debug")
	SetLevel("info")
	SetLevel("error")
}

// TestLogEvent tests the LogEvent wrapper
func TestLogEvent(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()

	t.Run("Add chains fields", func(t *testing.T) {
		buf.Reset()
		event := &LogEvent{event: logger.Info()}
		event.Add(Service("Oracle Sessions")).Add(HandlerName("database")).Msg("test")

		if !bytes.Contains(buf.Bytes(), []byte(`"service":"Oracle Sessions"`)) {
			t.Errorf("expected service field in output: %s", buf.String())
		}
		if !bytes.Contains(buf.Bytes(), []byte(`"handler":"database"`)) {
			t.Errorf("expected handler field in output: %s", buf.String())
		}
	})

	t.Run("Send without message", func(t *testing.T) {
		buf.Reset()
		event := &LogEvent{event: logger.Info()}
		event.Add(RuleID("rule-2")).Send()

		if !bytes.Contains(buf.Bytes(), []byte(`"rule_id":"rule-2"`)) {
			t.Errorf("expected rule_id field in output: %s", buf.String())
		}
	})
}

// TestNewEvent tests creating a new LogEvent wrapper
func TestNewEvent(t *testing.T) {
	logger, _ := testLogger()
	event := logger.Info()
	logEvent := NewEvent(event)

	if logEvent == nil {
		t.Fatal("NewEvent() returned nil")
	}
	if logEvent.event != event {
		t.Error("NewEvent() did not store the event correctly")
	}
}
