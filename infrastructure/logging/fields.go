package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/checkwise/domain/history"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for parameter engine logging.

// Service adds a service name field.
func Service(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("service", name)
	}
}

// HandlerName adds a handler name field.
func HandlerName(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("handler", name)
	}
}

// Ruleset adds a ruleset field.
func Ruleset(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("ruleset", name)
	}
}

// Profile adds a profile field for classification results.
func Profile(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("profile", name)
	}
}

// Action adds an action field.
func Action(a history.Action) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("action", string(a))
	}
}

// Valid adds a validation outcome field.
func Valid(valid bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("valid", valid)
	}
}

// MessageCounts adds error and warning count fields.
func MessageCounts(errors, warnings int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("errors", errors).Int("warnings", warnings)
	}
}

// RuleID adds a rule ID field.
func RuleID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("rule_id", id)
	}
}

// Priority adds a registration priority field.
func Priority(p int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("priority", p)
	}
}

// Pattern adds a service pattern field.
func Pattern(p string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("pattern", p)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Cached adds a cached field.
func Cached(cached bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("cached", cached)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds an arbitrary string field.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an arbitrary int field.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}
