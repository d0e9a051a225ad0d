package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/suggestion"
)

// shellMetacharacters are rejected when they appear outside quotes.
var shellMetacharacters = []string{";", "&&", "`", "$("}

var customCheckGroups = []keywordGroup{
	{subtype: "mrpe", keywords: []string{"mrpe"}},
	{subtype: "nagios_plugin", keywords: []string{"nagios", "check_"}},
	{subtype: "script", keywords: []string{"script", ".sh", ".py", ".pl"}},
	{subtype: "local", keywords: []string{"local"}},
}

var customCheckDefaults = map[string]param.Parameters{
	"local":         {"interval": 60},
	"mrpe":          {"interval": 60, "timeout": 30},
	"nagios_plugin": {"timeout": 30},
	"script":        {"timeout": 60},
}

var customCheckInfos = map[string]param.Info{
	"command_line": {
		Name:        "command_line",
		Type:        "string",
		Description: "Command the check executes; shell metacharacters outside quotes are rejected",
	},
	"interval": {
		Name:        "interval",
		Type:        "float",
		Description: "Execution interval in seconds",
		Default:     60,
		Unit:        "s",
	},
	"timeout": {
		Name:        "timeout",
		Type:        "float",
		Description: "Command timeout in seconds",
		Default:     30,
		Unit:        "s",
	},
	"warning": {
		Name:        "warning",
		Type:        "string",
		Description: `Nagios warning range, e.g. "10", "10:", "~:10", "10:20", "@10:20"`,
	},
	"critical": {
		Name:        "critical",
		Type:        "string",
		Description: `Nagios critical range, e.g. "20", "20:", "~:20", "20:40", "@20:40"`,
	},
	"user": {
		Name:        "user",
		Type:        "string",
		Description: "User account the command runs as",
	},
}

// CustomCheckHandler generates and validates parameters for operator
// defined checks: local checks, MRPE, Nagios plugins and scripts.
type CustomCheckHandler struct {
	base
}

var _ handler.Handler = (*CustomCheckHandler)(nil)

// NewCustomCheckHandler constructs the custom check handler.
func NewCustomCheckHandler() (*CustomCheckHandler, error) {
	return &CustomCheckHandler{
		base: base{
			name:     "custom_check",
			patterns: []string{"mrpe", "nagios", "custom", "check_", "script", "local"},
			rulesets: []string{"custom_checks", "mrpe", "local_checks", "active_checks"},
		},
	}, nil
}

// DefaultParameters returns conservative defaults for the detected check
// kind. No command is generated; that is always the operator's decision.
func (h *CustomCheckHandler) DefaultParameters(service string, ctx param.Context) (*param.Result, error) {
	subtype := classify(service, ctx, "check_type", "local", customCheckGroups)
	defaults, ok := customCheckDefaults[subtype]
	if !ok {
		subtype = "local"
		defaults = customCheckDefaults[subtype]
	}

	result := param.NewResult(nil)
	result.AddInfo("", fmt.Sprintf("classified as %s check", subtype))

	filtered, applied := ApplyParameterPolicies(defaults.Clone(), ctx)
	for _, desc := range applied {
		result.AddInfo("", desc)
	}
	result.Parameters = filtered
	return result, nil
}

// ValidateParameters checks custom check parameters, including command
// injection screening and Nagios range syntax.
func (h *CustomCheckHandler) ValidateParameters(params param.Parameters, service string, ctx param.Context) (*param.Result, error) {
	subtype := classify(service, ctx, "check_type", "local", customCheckGroups)

	result := param.NewResult(params.Clone())
	normalized := param.Parameters{}

	if raw, present := params["command_line"]; present {
		if s, ok := param.AsString(raw); !ok {
			result.AddError("command_line", "must be a string")
		} else if s == "" {
			result.AddError("command_line", "command cannot be empty")
		} else {
			if validateCommandSecurity(result, "command_line", s) {
				normalized["command_line"] = s
			}
		}
	} else if subtype == "mrpe" || subtype == "nagios_plugin" {
		result.AddWarning("command_line", fmt.Sprintf("no command configured; a %s check does nothing without one", subtype))
	}

	for _, field := range []string{"interval", "timeout"} {
		if raw, present := params[field]; present {
			if f, ok := validatePositive(result, field, raw); ok {
				normalized[field] = f
			}
		}
	}

	for _, field := range []string{"warning", "critical"} {
		if raw, present := params[field]; present {
			if s, ok := validateNagiosRange(result, field, raw); ok {
				normalized[field] = s
			}
		}
	}

	if raw, present := params["user"]; present {
		if s, ok := param.AsString(raw); !ok {
			result.AddError("user", "must be a string")
		} else {
			normalized["user"] = s
		}
	}

	warnUnknown(result, params, customCheckInfos)
	result.Normalized = normalized
	return result, nil
}

// validateCommandSecurity screens a command line for shell injection.
// Unquoted metacharacters are errors; special characters inside quotes are
// tolerated with a warning.
func validateCommandSecurity(r *param.Result, field, cmd string) bool {
	stripped, quotedSpecial, unbalanced := stripQuoted(cmd)
	safe := true
	for _, meta := range shellMetacharacters {
		if strings.Contains(stripped, meta) {
			r.Add(param.ErrorMessage(field, fmt.Sprintf("command contains unquoted shell metacharacter %q", meta)).
				WithFix("quote the argument or remove the shell construct"))
			safe = false
		}
	}
	if quotedSpecial {
		r.AddWarning(field, "command contains quoted shell special characters; confirm they are intended")
	}
	if unbalanced {
		r.AddWarning(field, "command has unbalanced quotes")
	}
	return safe
}

// stripQuoted removes single- and double-quoted regions from a command
// line. It reports whether any removed region contained shell special
// characters and whether a quote was left unterminated.
func stripQuoted(cmd string) (stripped string, quotedSpecial, unbalanced bool) {
	var b strings.Builder
	var quote rune
	for _, ch := range cmd {
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			} else if strings.ContainsRune(";&|`$<>", ch) {
				quotedSpecial = true
			}
		case ch == '\'' || ch == '"':
			quote = ch
		default:
			b.WriteRune(ch)
		}
	}
	return b.String(), quotedSpecial, quote != 0
}

// validateNagiosRange checks a value against the Nagios threshold range
// grammar and returns the trimmed canonical form.
func validateNagiosRange(r *param.Result, field string, raw any) (string, bool) {
	s, ok := param.AsString(raw)
	if !ok {
		r.AddError(field, "must be a Nagios range string")
		return "", false
	}
	trimmed := strings.TrimSpace(s)
	if err := parseNagiosRange(trimmed); err != nil {
		r.Add(param.ErrorMessage(field, fmt.Sprintf("invalid Nagios range: %v", err)).
			WithFix(`use forms like "10", "10:", "~:10", "10:20" or "@10:20"`))
		return "", false
	}
	return trimmed, true
}

// parseNagiosRange validates the Nagios range grammar: an optional "@"
// inversion prefix, then "value", "start:", "~:end", ":end" or
// "start:end" with start not exceeding end.
func parseNagiosRange(s string) error {
	if s == "" {
		return fmt.Errorf("empty range")
	}
	s = strings.TrimPrefix(s, "@")
	if s == "" {
		return fmt.Errorf("missing range after @")
	}

	start, end, hasColon := strings.Cut(s, ":")
	if !hasColon {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		return nil
	}

	var startVal float64
	hasStart := false
	switch start {
	case "", "~":
	default:
		v, err := strconv.ParseFloat(start, 64)
		if err != nil {
			return fmt.Errorf("start %q is not a number", start)
		}
		startVal, hasStart = v, true
	}

	if end == "" {
		if !hasStart {
			return fmt.Errorf("open-ended range needs a start value")
		}
		return nil
	}
	endVal, err := strconv.ParseFloat(end, 64)
	if err != nil {
		return fmt.Errorf("end %q is not a number", end)
	}
	if hasStart && startVal > endVal {
		return fmt.Errorf("start %g exceeds end %g", startVal, endVal)
	}
	return nil
}

// ParameterInfo returns documentation for a custom check parameter.
func (h *CustomCheckHandler) ParameterInfo(name string) (param.Info, bool) {
	return infoLookup(customCheckInfos, name)
}

// Suggestions proposes custom check parameter improvements.
func (h *CustomCheckHandler) Suggestions(service string, current param.Parameters, ctx param.Context) ([]suggestion.Suggestion, error) {
	subtype := classify(service, ctx, "check_type", "local", customCheckGroups)

	var out []suggestion.Suggestion
	if _, hasCmd := current["command_line"]; hasCmd {
		if _, ok := current["timeout"]; !ok {
			out = append(out, suggestion.New(suggestion.KindAddParameter, "timeout",
				"hung commands block the agent without a timeout").
				WithValues(nil, 30).
				WithImpact(suggestion.ImpactMedium))
		}
	}
	if subtype == "nagios_plugin" || subtype == "mrpe" {
		if _, ok := current["critical"]; !ok {
			out = append(out, suggestion.New(suggestion.KindAddParameter, "critical",
				"a critical range makes plugin exit codes actionable"))
		}
	}
	suggestion.Sort(out)
	return out, nil
}
