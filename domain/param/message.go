package param

import "fmt"

// Severity is the criticality tier of one validation finding.
type Severity string

const (
	// SeverityInfo marks informational findings such as the chosen profile.
	SeverityInfo Severity = "info"

	// SeverityWarning marks advisory findings that do not block persistence.
	SeverityWarning Severity = "warning"

	// SeverityError marks blocking findings; any error makes a result invalid.
	SeverityError Severity = "error"
)

// Message is one validation diagnostic. Messages are immutable values created
// per finding and returned in handler-emitted order.
type Message struct {
	// Severity is the criticality tier.
	Severity Severity `json:"severity"`

	// Field names the parameter the finding refers to, when there is one.
	Field string `json:"field,omitempty"`

	// Text describes the finding.
	Text string `json:"message"`

	// SuggestedFix describes how to resolve the finding, when known.
	SuggestedFix string `json:"suggested_fix,omitempty"`
}

// InfoMessage creates an informational message.
func InfoMessage(field, text string) Message {
	return Message{Severity: SeverityInfo, Field: field, Text: text}
}

// WarningMessage creates an advisory message.
func WarningMessage(field, text string) Message {
	return Message{Severity: SeverityWarning, Field: field, Text: text}
}

// ErrorMessage creates a blocking message.
func ErrorMessage(field, text string) Message {
	return Message{Severity: SeverityError, Field: field, Text: text}
}

// WithFix returns a copy of the message carrying a suggested fix.
func (m Message) WithFix(fix string) Message {
	m.SuggestedFix = fix
	return m
}

// String renders the message for logs and CLI output.
func (m Message) String() string {
	if m.Field == "" {
		return fmt.Sprintf("[%s] %s", m.Severity, m.Text)
	}
	return fmt.Sprintf("[%s] %s: %s", m.Severity, m.Field, m.Text)
}
