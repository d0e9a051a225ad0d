package handlers

import "github.com/felixgeelhaar/checkwise/domain/param"

// policy strips one optional feature from generated defaults unless the
// context requests it. Policies are defined once and applied after
// defaulting so every handler shares the same judgment.
type policy struct {
	key         string
	description string
	requested   func(ctx param.Context) bool
}

var policies = []policy{
	{
		key:         "trend_compute",
		description: "removed trend_compute: trending was not requested",
		requested:   wantsTrending,
	},
}

func wantsTrending(ctx param.Context) bool {
	if ctx == nil {
		return false
	}
	return param.Truthy(ctx["trending"])
}

// ApplyParameterPolicies filters optional advanced features out of
// generated parameters. It returns the filtered copy and a description of
// every filter that applied. The input is never mutated.
func ApplyParameterPolicies(params param.Parameters, ctx param.Context) (param.Parameters, []string) {
	filtered := params.Clone()
	var applied []string
	for _, p := range policies {
		if _, ok := filtered[p.key]; !ok {
			continue
		}
		if p.requested(ctx) {
			continue
		}
		delete(filtered, p.key)
		applied = append(applied, p.description)
	}
	return filtered, applied
}
