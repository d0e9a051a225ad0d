package handlers

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/domain/param"
	"github.com/felixgeelhaar/checkwise/domain/suggestion"
)

// minTemperatureGap is the smallest sensible distance in Celsius between
// the upper and lower warning thresholds before flapping becomes likely.
const minTemperatureGap = 10.0

// temperatureProfile holds the static defaults and plausibility bounds for
// one sensor type. All thresholds are stored in Celsius.
type temperatureProfile struct {
	upper         param.Levels
	lower         param.Levels
	minReasonable float64
	maxReasonable float64
}

var temperatureProfiles = map[string]temperatureProfile{
	"cpu":         {upper: param.Levels{80, 90}, lower: param.Levels{5, 0}, minReasonable: 10, maxReasonable: 105},
	"gpu":         {upper: param.Levels{85, 95}, lower: param.Levels{5, 0}, minReasonable: 10, maxReasonable: 110},
	"disk":        {upper: param.Levels{50, 60}, lower: param.Levels{5, 0}, minReasonable: 5, maxReasonable: 70},
	"psu":         {upper: param.Levels{60, 70}, lower: param.Levels{5, 0}, minReasonable: 5, maxReasonable: 85},
	"motherboard": {upper: param.Levels{60, 70}, lower: param.Levels{5, 0}, minReasonable: 5, maxReasonable: 85},
	"case":        {upper: param.Levels{40, 50}, lower: param.Levels{5, 0}, minReasonable: 0, maxReasonable: 60},
	"memory":      {upper: param.Levels{70, 80}, lower: param.Levels{5, 0}, minReasonable: 5, maxReasonable: 95},
	"ambient":     {upper: param.Levels{30, 35}, lower: param.Levels{10, 5}, minReasonable: 0, maxReasonable: 50},
	"generic":     {upper: param.Levels{70, 80}, lower: param.Levels{5, 0}, minReasonable: 0, maxReasonable: 100},
}

// Most specific sensor keywords first; generic is the fallback.
var temperatureGroups = []keywordGroup{
	{subtype: "cpu", keywords: []string{"cpu", "core", "processor"}},
	{subtype: "gpu", keywords: []string{"gpu", "graphics", "video"}},
	{subtype: "memory", keywords: []string{"memory", "dimm", "ram"}},
	{subtype: "disk", keywords: []string{"disk", "hdd", "ssd", "nvme", "drive"}},
	{subtype: "psu", keywords: []string{"psu", "power supply"}},
	{subtype: "motherboard", keywords: []string{"motherboard", "mainboard", "pch"}},
	{subtype: "case", keywords: []string{"case", "chassis", "system temp"}},
	{subtype: "ambient", keywords: []string{"ambient", "room", "inlet", "intake"}},
}

var deviceLevelsChoices = []string{"usr", "dev", "best", "worst", "devdefault", "usrdefault"}

var temperatureInfos = map[string]param.Info{
	"levels": {
		Name:        "levels",
		Type:        "levels",
		Description: "Upper temperature thresholds (warning, critical)",
		Default:     param.Levels{70, 80},
		Unit:        "°C",
	},
	"levels_lower": {
		Name:        "levels_lower",
		Type:        "levels",
		Description: "Lower temperature thresholds (warning, critical); warning is above critical",
		Default:     param.Levels{5, 0},
		Unit:        "°C",
	},
	"output_unit": {
		Name:        "output_unit",
		Type:        "string",
		Description: "Unit the thresholds are expressed in",
		Default:     "c",
		Choices:     []string{"c", "f", "k"},
	},
	"device_levels_handling": {
		Name:        "device_levels_handling",
		Type:        "string",
		Description: "How to combine configured thresholds with device-reported ones",
		Default:     "usr",
		Choices:     deviceLevelsChoices,
	},
	"trend_compute": {
		Name:        "trend_compute",
		Type:        "map",
		Description: "Temperature trend computation: period in minutes plus rise and fall thresholds",
	},
}

// TemperatureHandler generates and validates hardware temperature check
// parameters.
type TemperatureHandler struct {
	base
}

var _ handler.Handler = (*TemperatureHandler)(nil)

// NewTemperatureHandler constructs the temperature handler.
func NewTemperatureHandler() (*TemperatureHandler, error) {
	return &TemperatureHandler{
		base: base{
			name:     "temperature",
			patterns: []string{"temp", "thermal"},
			rulesets: []string{"temperature", "hw_temperature"},
		},
	}, nil
}

// DefaultParameters returns the profile defaults for the detected sensor
// type, adjusted for the context and filtered by the parameter policies.
func (h *TemperatureHandler) DefaultParameters(service string, ctx param.Context) (*param.Result, error) {
	profile := classify(service, ctx, "sensor_type", "generic", temperatureGroups)
	p, ok := temperatureProfiles[profile]
	if !ok {
		profile = "generic"
		p = temperatureProfiles[profile]
	}

	params := param.Parameters{
		"levels":                 p.upper,
		"levels_lower":           p.lower,
		"output_unit":            "c",
		"device_levels_handling": "usr",
		"trend_compute": map[string]any{
			"period": 30,
			"rise":   param.Levels{5, 10},
			"fall":   param.Levels{5, 10},
		},
	}

	result := param.NewResult(nil)
	result.AddInfo("", fmt.Sprintf("using %s temperature profile", profile))

	if factor := contextFactor(ctx); factor != 1 {
		params["levels"] = p.upper.Scale(factor)
		result.AddInfo("levels", adjustmentNote(factor))
	}

	filtered, applied := ApplyParameterPolicies(params, ctx)
	for _, desc := range applied {
		result.AddInfo("", desc)
	}
	result.Parameters = filtered
	return result, nil
}

// ValidateParameters checks temperature parameters against the detected
// sensor profile. Threshold units are converted to Celsius only for bounds
// checking; the caller's values are never rewritten.
func (h *TemperatureHandler) ValidateParameters(params param.Parameters, service string, ctx param.Context) (*param.Result, error) {
	profile := classify(service, ctx, "sensor_type", "generic", temperatureGroups)
	p, ok := temperatureProfiles[profile]
	if !ok {
		profile = "generic"
		p = temperatureProfiles[profile]
	}

	result := param.NewResult(params.Clone())
	normalized := param.Parameters{}

	unit := "c"
	if raw, present := params["output_unit"]; present {
		s, ok := param.AsString(raw)
		if !ok {
			result.AddError("output_unit", "must be a string")
		} else {
			s = strings.ToLower(s)
			if validateChoice(result, "output_unit", s, []string{"c", "f", "k"}) {
				unit = s
				normalized["output_unit"] = s
			}
		}
	}

	var upper param.Levels
	haveUpper := false
	if raw, present := params["levels"]; !present {
		result.Add(param.ErrorMessage("levels", "upper temperature thresholds are required").
			WithFix("add levels, e.g. [70, 80]"))
	} else if lv, ok := validateLevels(result, "levels", raw, false); ok {
		upper, haveUpper = lv, true
		normalized["levels"] = lv
		warnC, critC := convertToCelsius(lv.Warn(), lv.Crit(), unit)
		if warnC > p.maxReasonable || critC > p.maxReasonable {
			result.AddWarning("levels", fmt.Sprintf(
				"threshold above the maximum reasonable %s temperature of %.0f°C", profile, p.maxReasonable))
		}
		if warnC < p.minReasonable {
			result.AddWarning("levels", fmt.Sprintf(
				"warning threshold below the minimum reasonable %s temperature of %.0f°C", profile, p.minReasonable))
		}
	}

	var lower param.Levels
	haveLower := false
	if raw, present := params["levels_lower"]; present {
		if lv, ok := validateLevels(result, "levels_lower", raw, true); ok {
			lower, haveLower = lv, true
			normalized["levels_lower"] = lv
		}
	}

	if haveUpper && haveLower {
		upperWarnC, _ := convertToCelsius(upper.Warn(), upper.Crit(), unit)
		lowerWarnC, _ := convertToCelsius(lower.Warn(), lower.Crit(), unit)
		if upperWarnC-lowerWarnC < minTemperatureGap {
			result.AddWarning("levels", fmt.Sprintf(
				"less than %.0f°C between upper and lower warning thresholds risks flapping", minTemperatureGap))
		}
	}

	if raw, present := params["device_levels_handling"]; present {
		if s, ok := param.AsString(raw); !ok {
			result.AddError("device_levels_handling", "must be a string")
		} else if validateChoice(result, "device_levels_handling", s, deviceLevelsChoices) {
			normalized["device_levels_handling"] = s
		}
	}

	if raw, present := params["trend_compute"]; present {
		validateTrendCompute(result, raw, normalized)
	}

	warnUnknown(result, params, temperatureInfos)
	result.Normalized = normalized
	return result, nil
}

func validateTrendCompute(r *param.Result, raw any, normalized param.Parameters) {
	trend, ok := raw.(map[string]any)
	if !ok {
		r.AddError("trend_compute", "must be a map of trend settings")
		return
	}
	norm := map[string]any{}
	if v, present := trend["period"]; present {
		if f, ok := validatePositive(r, "trend_compute.period", v); ok {
			norm["period"] = f
		}
	}
	for _, key := range []string{"rise", "fall"} {
		if v, present := trend[key]; present {
			if lv, ok := validateLevels(r, "trend_compute."+key, v, false); ok {
				norm[key] = lv
			}
		}
	}
	normalized["trend_compute"] = norm
}

// convertToCelsius converts a warn/crit pair from the given unit to Celsius
// for bounds checking.
func convertToCelsius(warn, crit float64, unit string) (float64, float64) {
	switch strings.ToLower(unit) {
	case "f":
		return (warn - 32) * 5 / 9, (crit - 32) * 5 / 9
	case "k":
		return warn - 273.15, crit - 273.15
	default:
		return warn, crit
	}
}

// ParameterInfo returns documentation for a temperature parameter.
func (h *TemperatureHandler) ParameterInfo(name string) (param.Info, bool) {
	return infoLookup(temperatureInfos, name)
}

// Suggestions proposes temperature parameter improvements against the
// profile defaults.
func (h *TemperatureHandler) Suggestions(service string, current param.Parameters, ctx param.Context) ([]suggestion.Suggestion, error) {
	defaults, err := h.DefaultParameters(service, ctx)
	if err != nil {
		return nil, err
	}

	var out []suggestion.Suggestion
	if _, ok := current["levels_lower"]; !ok {
		out = append(out, suggestion.New(suggestion.KindAddParameter, "levels_lower",
			"lower thresholds detect cooling failures and dead sensors").
			WithValues(nil, defaults.Parameters["levels_lower"]))
	}
	if cur, ok := param.AsLevels(current["levels"]); ok {
		if def, ok := param.AsLevels(defaults.Parameters["levels"]); ok && cur.Crit() > def.Crit() {
			out = append(out, suggestion.New(suggestion.KindTightenThreshold, "levels",
				"critical threshold is above the recommended profile value").
				WithValues(cur, def).
				WithImpact(suggestion.ImpactMedium))
		}
	}
	if _, ok := current["trend_compute"]; !ok && wantsTrending(ctx) {
		out = append(out, suggestion.New(suggestion.KindAddParameter, "trend_compute",
			"trend computation predicts threshold breaches before they happen").
			WithValues(nil, defaults.Parameters["trend_compute"]))
	}
	suggestion.Sort(out)
	return out, nil
}
