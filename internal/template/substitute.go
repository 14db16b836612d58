// Package template resolves ${...} placeholders in configuration strings.
// Supported forms: ${name} for variables, ${env:NAME} for the environment and
// ${fn(args)} for the built-in functions in functions.go.
package template

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"trainload/internal/core"
)

// varPattern matches ${...} placeholders.
var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Substitute replaces every placeholder in text.
// Returns all errors joined if several placeholders cannot be resolved.
// A nil vars is allowed when only env and function placeholders are used.
func Substitute(text string, vars core.Variables) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}

	var errs []error
	result := varPattern.ReplaceAllStringFunc(text, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-1])

		if envName, ok := strings.CutPrefix(expr, "env:"); ok {
			if val, ok := os.LookupEnv(envName); ok {
				return val
			}
			errs = append(errs, fmt.Errorf("env var %q not set", envName))
			return match
		}

		if val, isFunc, err := evalFunction(expr); isFunc {
			if err != nil {
				errs = append(errs, err)
				return match
			}
			return val
		}

		if vars != nil {
			if val, ok := vars.Get(expr); ok {
				return fmt.Sprintf("%v", val)
			}
		}
		errs = append(errs, fmt.Errorf("variable %q not found", expr))
		return match
	})

	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return result, nil
}

// SubstituteMap applies substitution to all values in a map.
func SubstituteMap(m map[string]string, vars core.Variables) (map[string]string, error) {
	if m == nil {
		return nil, nil
	}

	result := make(map[string]string, len(m))
	var errs []error

	for k, v := range m {
		substituted, err := Substitute(v, vars)
		if err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", k, err))
			continue
		}
		result[k] = substituted
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return result, nil
}
