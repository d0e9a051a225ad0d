// Package handlers implements the built-in parameter handlers.
package handlers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/checkwise/domain/param"
)

// base provides the identity surface concrete handlers embed.
type base struct {
	name     string
	patterns []string
	rulesets []string
}

// Name returns the handler name.
func (b base) Name() string {
	return b.name
}

// ServicePatterns returns the handler's service matching patterns.
func (b base) ServicePatterns() []string {
	return b.patterns
}

// SupportedRulesets returns the rulesets the handler serves.
func (b base) SupportedRulesets() []string {
	return b.rulesets
}

// keywordGroup maps a sub-type to the keywords that select it.
type keywordGroup struct {
	subtype  string
	keywords []string
}

// classify lower-cases the service name and returns the sub-type of the
// first matching keyword group. Groups are ordered most-specific-first and
// the first match wins. An explicit context override always wins over
// keyword detection; no match falls back to the given default.
func classify(service string, ctx param.Context, overrideKey, fallback string, groups []keywordGroup) string {
	if ctx != nil {
		if v, ok := param.AsString(ctx[overrideKey]); ok && v != "" {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	lower := strings.ToLower(service)
	for _, g := range groups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.subtype
			}
		}
	}
	return fallback
}

// contextFactor returns the threshold scaling factor the context asks for.
// Production and high-criticality environments tighten thresholds,
// development and low-criticality environments loosen them.
func contextFactor(ctx param.Context) float64 {
	if ctx == nil {
		return 1
	}
	env, _ := param.AsString(ctx["environment"])
	crit, _ := param.AsString(ctx["criticality"])
	switch {
	case env == "production" || crit == "high":
		return 0.9
	case env == "development" || crit == "low":
		return 1.1
	}
	return 1
}

// adjustmentNote describes a non-neutral context factor for INFO messages.
func adjustmentNote(factor float64) string {
	if factor < 1 {
		return "thresholds tightened for production use"
	}
	return "thresholds loosened for development use"
}

// validateLevels checks a warn/crit threshold pair. When inverted is true
// the metric is higher-is-better and the warning threshold must exceed the
// critical one. The coerced pair is returned for normalization.
func validateLevels(r *param.Result, field string, value any, inverted bool) (param.Levels, bool) {
	levels, ok := param.AsLevels(value)
	if !ok {
		r.Add(param.ErrorMessage(field, "must be a pair of numbers (warning, critical)").
			WithFix("provide two numeric thresholds, e.g. [80, 90]"))
		return param.Levels{}, false
	}
	if inverted {
		if levels.Warn() <= levels.Crit() {
			r.Add(param.ErrorMessage(field, "warning threshold must be above critical for this metric (higher is better)").
				WithFix(fmt.Sprintf("swap the values, e.g. [%g, %g]", levels.Crit(), levels.Warn())))
			return levels, false
		}
		return levels, true
	}
	if levels.Warn() >= levels.Crit() {
		r.Add(param.ErrorMessage(field, "warning threshold must be below critical").
			WithFix(fmt.Sprintf("swap the values, e.g. [%g, %g]", levels.Crit(), levels.Warn())))
		return levels, false
	}
	return levels, true
}

// validatePositive checks that a value is a number greater than zero.
func validatePositive(r *param.Result, field string, value any) (float64, bool) {
	f, ok := param.AsFloat(value)
	if !ok {
		r.AddError(field, "must be a number")
		return 0, false
	}
	if f <= 0 {
		r.AddError(field, "must be positive")
		return f, false
	}
	return f, true
}

// validateChoice checks membership in a fixed choice set.
func validateChoice(r *param.Result, field, value string, choices []string) bool {
	for _, c := range choices {
		if value == c {
			return true
		}
	}
	r.Add(param.ErrorMessage(field, fmt.Sprintf("%q is not a valid choice", value)).
		WithFix("use one of: " + strings.Join(choices, ", ")))
	return false
}

// validatePort checks that a value is an integer port in [1, 65535].
func validatePort(r *param.Result, field string, value any) (int, bool) {
	f, ok := param.AsFloat(value)
	if !ok || f != float64(int(f)) {
		r.AddError(field, "must be an integer port number")
		return 0, false
	}
	port := int(f)
	if port < 1 || port > 65535 {
		r.Add(param.ErrorMessage(field, fmt.Sprintf("port %d is outside the valid range 1-65535", port)))
		return port, false
	}
	return port, true
}

// validateHostname checks hostname syntax: non-empty, no spaces or
// underscores, no leading, trailing or consecutive dots, labels at most
// 63 characters.
func validateHostname(r *param.Result, field, host string) bool {
	if host == "" {
		r.AddError(field, "hostname cannot be empty")
		return false
	}
	if strings.ContainsAny(host, " \t") {
		r.AddError(field, "hostname cannot contain spaces")
		return false
	}
	if strings.Contains(host, "_") {
		r.AddError(field, "hostname cannot contain underscores")
		return false
	}
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		r.AddError(field, "hostname cannot start or end with a dot")
		return false
	}
	if strings.Contains(host, "..") {
		r.AddError(field, "hostname cannot contain consecutive dots")
		return false
	}
	if len(host) > 253 {
		r.AddError(field, "hostname exceeds 253 characters")
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if len(label) > 63 {
			r.Add(param.ErrorMessage(field, fmt.Sprintf("hostname label %q exceeds 63 characters", label)))
			return false
		}
	}
	return true
}

// warnUnknown adds a warning for each parameter key the handler does not
// recognize. Keys are reported in sorted order for stable output.
func warnUnknown(r *param.Result, params param.Parameters, known map[string]param.Info) {
	var unknown []string
	for key := range params {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		r.AddWarning(key, "parameter is not recognized by this handler and will be passed through unchecked")
	}
}

// infoLookup returns the ParameterInfo result for a static info table.
func infoLookup(table map[string]param.Info, name string) (param.Info, bool) {
	info, ok := table[name]
	return info, ok
}
