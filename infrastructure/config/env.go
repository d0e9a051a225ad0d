package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	domainconfig "github.com/felixgeelhaar/checkwise/domain/config"
)

// envPattern matches ${VAR}, ${VAR:-default}, ${VAR:?message} and bare $VAR.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*|:\?[^}]*)?\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnv replaces environment references in config text. Unset variables
// expand to the empty string unless strict mode is on or the reference uses
// the :? required form.
func expandEnv(input string, strict bool) (string, error) {
	var missing []string

	result := envPattern.ReplaceAllStringFunc(input, func(match string) string {
		if !strings.HasPrefix(match, "${") {
			name := match[1:]
			if value, ok := os.LookupEnv(name); ok {
				return value
			}
			if strict {
				missing = append(missing, name)
			}
			return ""
		}

		inner := match[2 : len(match)-1]
		name, modifier, _ := strings.Cut(inner, ":")
		value, ok := os.LookupEnv(name)

		switch {
		case strings.HasPrefix(modifier, "-"):
			if !ok || value == "" {
				return modifier[1:]
			}
		case strings.HasPrefix(modifier, "?"):
			if !ok || value == "" {
				missing = append(missing, fmt.Sprintf("%s: %s", name, modifier[1:]))
				return match
			}
		default:
			if !ok {
				if strict {
					missing = append(missing, name)
				}
				return ""
			}
		}
		return value
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", domainconfig.ErrMissingEnvVar, strings.Join(missing, ", "))
	}
	return result, nil
}

// ExpandEnv expands environment references, treating unset variables as empty.
func ExpandEnv(input string) string {
	result, _ := expandEnv(input, false)
	return result
}

// ExpandEnvStrict expands environment references and returns an error for
// unset variables.
func ExpandEnvStrict(input string) (string, error) {
	return expandEnv(input, true)
}
