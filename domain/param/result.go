package param

// Result is the outcome of one handler operation. A result is created fresh
// per call, appended to before it is returned, and never mutated afterwards.
//
// Success reports that the operation ran without internal fault; it says
// nothing about validity. Read IsValid for the persistence decision.
type Result struct {
	// Success is true when the operation executed without internal fault.
	Success bool `json:"success"`

	// Parameters are the generated or submitted parameters.
	Parameters Parameters `json:"parameters,omitempty"`

	// Normalized carries canonical types and precision after validation.
	Normalized Parameters `json:"normalized_parameters,omitempty"`

	// Messages are the diagnostics in handler-emitted order.
	Messages []Message `json:"validation_messages"`
}

// NewResult creates a successful result carrying the given parameters.
func NewResult(params Parameters) *Result {
	return &Result{Success: true, Parameters: params}
}

// NewFailedResult creates a result for an operation that could not execute.
func NewFailedResult(msgs ...Message) *Result {
	return &Result{Success: false, Messages: msgs}
}

// Add appends diagnostics and returns the result for chaining.
func (r *Result) Add(msgs ...Message) *Result {
	r.Messages = append(r.Messages, msgs...)
	return r
}

// AddInfo appends an informational diagnostic.
func (r *Result) AddInfo(field, text string) *Result {
	return r.Add(InfoMessage(field, text))
}

// AddWarning appends an advisory diagnostic.
func (r *Result) AddWarning(field, text string) *Result {
	return r.Add(WarningMessage(field, text))
}

// AddError appends a blocking diagnostic.
func (r *Result) AddError(field, text string) *Result {
	return r.Add(ErrorMessage(field, text))
}

// IsValid reports whether the result may be persisted: the operation ran
// without fault and produced no error-severity diagnostics.
func (r *Result) IsValid() bool {
	return r.Success && !r.HasErrors()
}

// HasErrors reports whether any diagnostic is error severity.
func (r *Result) HasErrors() bool {
	for _, m := range r.Messages {
		if m.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any diagnostic is warning severity.
func (r *Result) HasWarnings() bool {
	for _, m := range r.Messages {
		if m.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns the error-severity diagnostics in emitted order.
func (r *Result) Errors() []Message {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity diagnostics in emitted order.
func (r *Result) Warnings() []Message {
	return r.filter(SeverityWarning)
}

// Infos returns the info-severity diagnostics in emitted order.
func (r *Result) Infos() []Message {
	return r.filter(SeverityInfo)
}

func (r *Result) filter(sev Severity) []Message {
	var out []Message
	for _, m := range r.Messages {
		if m.Severity == sev {
			out = append(out, m)
		}
	}
	return out
}
