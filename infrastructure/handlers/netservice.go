package handlers

import (
	"fmt"
	"net/url"

	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/suggestion"
)

// Specific protocols come before the generic tcp fallback. https must
// precede http because every https name also contains "http", and ssh must
// precede ftp so "sftp" resolves to ssh.
var networkGroups = []keywordGroup{
	{subtype: "https", keywords: []string{"https", "ssl", "tls", "certificate", "cert"}},
	{subtype: "http", keywords: []string{"http", "web", "www"}},
	{subtype: "dns", keywords: []string{"dns", "resolver", "name server"}},
	{subtype: "ssh", keywords: []string{"ssh", "sftp"}},
	{subtype: "ftp", keywords: []string{"ftp"}},
	{subtype: "smtp", keywords: []string{"smtp", "mail"}},
	{subtype: "tcp", keywords: []string{"tcp", "socket", "port check"}},
}

var networkDefaults = map[string]param.Parameters{
	"https": {
		"response_time":   param.Levels{1, 2},
		"port":            443,
		"cert_age":        param.Levels{30, 14},
		"verify_tls":      true,
		"expected_status": 200,
	},
	"http": {
		"response_time":   param.Levels{1, 2},
		"port":            80,
		"expected_status": 200,
	},
	"dns":  {"response_time": param.Levels{0.5, 1}, "port": 53},
	"ssh":  {"response_time": param.Levels{1, 2}, "port": 22},
	"ftp":  {"response_time": param.Levels{1, 2}, "port": 21},
	"smtp": {"response_time": param.Levels{1, 2}, "port": 25},
	"tcp":  {"response_time": param.Levels{1, 2}},
}

var networkInfos = map[string]param.Info{
	"response_time": {
		Name:        "response_time",
		Type:        "levels",
		Description: "Response time thresholds (warning, critical)",
		Default:     param.Levels{1, 2},
		Unit:        "s",
	},
	"port": {
		Name:        "port",
		Type:        "int",
		Description: "TCP port to probe",
	},
	"cert_age": {
		Name:        "cert_age",
		Type:        "levels",
		Description: "Days of certificate validity remaining (warning, critical); warning is above critical",
		Default:     param.Levels{30, 14},
		Unit:        "days",
	},
	"verify_tls": {
		Name:        "verify_tls",
		Type:        "bool",
		Description: "Verify the server certificate chain",
		Default:     true,
	},
	"expected_status": {
		Name:        "expected_status",
		Type:        "int",
		Description: "Expected HTTP status code",
		Default:     200,
	},
	"url": {
		Name:        "url",
		Type:        "string",
		Description: "Full URL to request; must include scheme and host",
	},
	"hostname": {
		Name:        "hostname",
		Type:        "string",
		Description: "Hostname to probe when no URL is given",
	},
}

// NetworkServiceHandler generates and validates network service check
// parameters for common protocols.
type NetworkServiceHandler struct {
	base
}

var _ handler.Handler = (*NetworkServiceHandler)(nil)

// NewNetworkServiceHandler constructs the network service handler.
func NewNetworkServiceHandler() (*NetworkServiceHandler, error) {
	return &NetworkServiceHandler{
		base: base{
			name: "network_service",
			patterns: []string{
				"https", "http", "tcp", "dns", "ssh", "ftp", "smtp",
				"url", "website", "certificate",
			},
			rulesets: []string{
				"tcp_connections", "http_service", "certificate_age", "dns_service",
			},
		},
	}, nil
}

// DefaultParameters returns protocol defaults for the detected service
// sub-type. HTTPS gets certificate-age thresholds and TLS verification on.
func (h *NetworkServiceHandler) DefaultParameters(service string, ctx param.Context) (*param.Result, error) {
	subtype := classify(service, ctx, "protocol", "tcp", networkGroups)
	defaults, ok := networkDefaults[subtype]
	if !ok {
		subtype = "tcp"
		defaults = networkDefaults[subtype]
	}

	params := defaults.Clone()

	result := param.NewResult(nil)
	result.AddInfo("", fmt.Sprintf("using %s service profile", subtype))

	if factor := contextFactor(ctx); factor != 1 {
		if lv, ok := param.AsLevels(params["response_time"]); ok {
			params["response_time"] = lv.Scale(factor)
			result.AddInfo("response_time", adjustmentNote(factor))
		}
	}

	filtered, applied := ApplyParameterPolicies(params, ctx)
	for _, desc := range applied {
		result.AddInfo("", desc)
	}
	result.Parameters = filtered
	return result, nil
}

// ValidateParameters checks network service parameters, including URL and
// hostname syntax.
func (h *NetworkServiceHandler) ValidateParameters(params param.Parameters, service string, ctx param.Context) (*param.Result, error) {
	subtype := classify(service, ctx, "protocol", "tcp", networkGroups)

	result := param.NewResult(params.Clone())
	normalized := param.Parameters{}

	if raw, present := params["url"]; present {
		if s, ok := param.AsString(raw); !ok {
			result.AddError("url", "must be a string")
		} else if u, err := url.Parse(s); err != nil {
			result.AddError("url", fmt.Sprintf("not a valid URL: %v", err))
		} else if u.Scheme == "" || u.Host == "" {
			result.Add(param.ErrorMessage("url", "URL must include scheme and host").
				WithFix("use a full URL, e.g. https://example.com/health"))
		} else {
			if u.Scheme != "http" && u.Scheme != "https" {
				result.AddWarning("url", fmt.Sprintf("unusual URL scheme %q for a %s check", u.Scheme, subtype))
			}
			normalized["url"] = s
		}
	}

	if raw, present := params["hostname"]; present {
		if s, ok := param.AsString(raw); !ok {
			result.AddError("hostname", "must be a string")
		} else if validateHostname(result, "hostname", s) {
			normalized["hostname"] = s
		}
	}

	if raw, present := params["port"]; present {
		if port, ok := validatePort(result, "port", raw); ok {
			normalized["port"] = port
		}
	}

	if raw, present := params["response_time"]; present {
		if lv, ok := validateLevels(result, "response_time", raw, false); ok {
			if lv.Warn() <= 0 {
				result.AddError("response_time", "thresholds must be positive")
			} else {
				normalized["response_time"] = lv
			}
		}
	}

	if raw, present := params["cert_age"]; present {
		if lv, ok := validateLevels(result, "cert_age", raw, true); ok {
			if lv.Crit() < 0 {
				result.AddError("cert_age", "remaining validity cannot be negative")
			} else {
				normalized["cert_age"] = lv
			}
		}
	}

	if raw, present := params["verify_tls"]; present {
		b, ok := raw.(bool)
		if !ok {
			result.AddError("verify_tls", "must be a boolean")
		} else {
			if !b {
				result.Add(param.WarningMessage("verify_tls", "TLS certificate verification is disabled").
					WithFix("set verify_tls to true unless the endpoint uses a private CA"))
			}
			normalized["verify_tls"] = b
		}
	}

	if raw, present := params["expected_status"]; present {
		f, ok := param.AsFloat(raw)
		if !ok || f != float64(int(f)) {
			result.AddError("expected_status", "must be an integer HTTP status code")
		} else if f < 100 || f > 599 {
			result.AddError("expected_status", fmt.Sprintf("%d is not a valid HTTP status code", int(f)))
		} else {
			normalized["expected_status"] = int(f)
		}
	}

	warnUnknown(result, params, networkInfos)
	result.Normalized = normalized
	return result, nil
}

// ParameterInfo returns documentation for a network service parameter.
func (h *NetworkServiceHandler) ParameterInfo(name string) (param.Info, bool) {
	return infoLookup(networkInfos, name)
}

// Suggestions proposes network service parameter improvements.
func (h *NetworkServiceHandler) Suggestions(service string, current param.Parameters, ctx param.Context) ([]suggestion.Suggestion, error) {
	subtype := classify(service, ctx, "protocol", "tcp", networkGroups)

	var out []suggestion.Suggestion
	if subtype == "https" {
		if _, ok := current["cert_age"]; !ok {
			out = append(out, suggestion.New(suggestion.KindAddParameter, "cert_age",
				"certificate-age thresholds catch expiry before an outage").
				WithValues(nil, networkDefaults["https"]["cert_age"]).
				WithImpact(suggestion.ImpactMedium))
		}
		if v, ok := current["verify_tls"].(bool); ok && !v {
			out = append(out, suggestion.New(suggestion.KindReplaceValue, "verify_tls",
				"disabled TLS verification hides certificate problems").
				WithValues(false, true).
				WithImpact(suggestion.ImpactHigh))
		}
	}
	if _, ok := current["response_time"]; !ok {
		out = append(out, suggestion.New(suggestion.KindAddParameter, "response_time",
			"response-time thresholds catch degradation before outages").
			WithValues(nil, networkDefaults[subtype]["response_time"]))
	}
	suggestion.Sort(out)
	return out, nil
}
