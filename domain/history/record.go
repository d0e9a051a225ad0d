// Package history provides the audit trail for parameter operations.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the operation that produced a record.
type Action string

const (
	// ActionDefaults records a default parameter generation.
	ActionDefaults Action = "defaults"

	// ActionValidate records a parameter validation.
	ActionValidate Action = "validate"

	// ActionApply records parameters being persisted as a rule.
	ActionApply Action = "apply"
)

// Record captures one parameter operation for auditing.
type Record struct {
	// ID is the unique record identifier.
	ID string `json:"id"`

	// Time is when the operation ran.
	Time time.Time `json:"time"`

	// Host is the target host, when known.
	Host string `json:"host,omitempty"`

	// Service is the service name the operation targeted.
	Service string `json:"service"`

	// Handler names the handler that served the operation.
	Handler string `json:"handler"`

	// Action identifies the operation.
	Action Action `json:"action"`

	// Valid reports whether the result passed validation.
	Valid bool `json:"valid"`

	// ErrorCount is the number of error-severity messages.
	ErrorCount int `json:"error_count"`

	// WarningCount is the number of warning-severity messages.
	WarningCount int `json:"warning_count"`

	// RuleID is the persisted rule's ID for apply operations.
	RuleID string `json:"rule_id,omitempty"`
}

// NewRecord creates a record with a generated ID and the current time.
func NewRecord(action Action, service, handlerName string) *Record {
	return &Record{
		ID:      uuid.New().String(),
		Time:    time.Now(),
		Service: service,
		Handler: handlerName,
		Action:  action,
	}
}

// Filter narrows history queries. Zero-valued fields match everything.
type Filter struct {
	// Service filters by exact service name.
	Service string

	// Handler filters by handler name.
	Handler string

	// Action filters by operation.
	Action Action

	// Since excludes records older than this time.
	Since time.Time

	// Limit is the maximum number of results (0 = unlimited).
	Limit int
}

// Matches reports whether the record satisfies the filter, ignoring Limit.
func (f Filter) Matches(r *Record) bool {
	if f.Service != "" && r.Service != f.Service {
		return false
	}
	if f.Handler != "" && r.Handler != f.Handler {
		return false
	}
	if f.Action != "" && r.Action != f.Action {
		return false
	}
	if !f.Since.IsZero() && r.Time.Before(f.Since) {
		return false
	}
	return true
}
