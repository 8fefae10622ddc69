// Package param evaluates the `${...}` parameter expressions embedded in a
// document's scalar fields against a frozen environment built from the
// document's `parameters:` section.
package param

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Semantic-Infrastructure-Lab/tiacad/pkg/diag"
)

// Env is a frozen mapping from parameter name to its resolved numeric
// value. It is built once, in declaration order, and never mutated after.
type Env struct {
	values map[string]float64
	order  []string
}

// NewEnv evaluates decl (an ordered list of name/expression pairs, as they
// appear in a document's `parameters:` section) into a frozen Env. Each
// expression may reference any previously defined name; forward references
// and self-references are rejected as cycles.
func NewEnv(decl []Declaration) (*Env, error) {
	env := &Env{values: make(map[string]float64, len(decl))}
	resolving := make(map[string]bool, len(decl))

	var resolve func(name string) (float64, error)
	declByName := make(map[string]string, len(decl))
	for _, d := range decl {
		declByName[d.Name] = d.Expr
	}

	resolve = func(name string) (float64, error) {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
		if resolving[name] {
			return 0, diag.Diagnostic{
				Kind:    diag.Parameter,
				Path:    []string{"parameters", name},
				Message: fmt.Sprintf("parameter cycle detected at %q", name),
			}
		}
		expr, ok := declByName[name]
		if !ok {
			return 0, diag.Diagnostic{
				Kind:    diag.Parameter,
				Path:    []string{"parameters", name},
				Message: fmt.Sprintf("parameter %q is undefined", name),
			}
		}
		resolving[name] = true
		v, err := evalExpr(expr, func(ref string) (float64, error) {
			return resolve(ref)
		})
		delete(resolving, name)
		if err != nil {
			return 0, diag.Diagnostic{
				Kind:    diag.Parameter,
				Path:    []string{"parameters", name},
				Message: fmt.Sprintf("evaluating %q: %v", expr, err),
			}
		}
		env.values[name] = v
		return v, nil
	}

	for _, d := range decl {
		if _, err := resolve(d.Name); err != nil {
			return nil, err
		}
		env.order = append(env.order, d.Name)
	}
	return env, nil
}

// Declaration is one entry of a document's `parameters:` section in source
// order.
type Declaration struct {
	Name string
	Expr string
}

// Names returns the environment's parameter names in declaration order.
func (e *Env) Names() []string {
	return e.order
}

// Lookup returns the resolved value of name, or ok=false if undefined.
func (e *Env) Lookup(name string) (float64, bool) {
	v, ok := e.values[name]
	return v, ok
}

// isFullExpr reports whether s is entirely one `${...}` expression, as
// opposed to a plain string or a string with embedded expressions.
func isFullExpr(s string) (string, bool) {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") && len(s) > 3 {
		return s[2 : len(s)-1], true
	}
	return "", false
}

// ResolveString resolves a single scalar string field against env: a
// fully-`${...}`-wrapped string resolves to its underlying float64; any
// other string (including one with embedded `${...}` substrings, which only
// ever appear inside sequences per the grammar) passes through unchanged.
func (e *Env) ResolveString(path []string, s string) (interface{}, error) {
	if expr, ok := isFullExpr(s); ok {
		v, err := evalExpr(expr, e.resolveRef)
		if err != nil {
			return nil, diag.Diagnostic{
				Kind:    diag.Parameter,
				Path:    path,
				Message: fmt.Sprintf("evaluating %q: %v", s, err),
			}
		}
		return v, nil
	}
	return s, nil
}

func (e *Env) resolveRef(name string) (float64, error) {
	v, ok := e.values[name]
	if !ok {
		return 0, fmt.Errorf("parameter %q is undefined", name)
	}
	return v, nil
}

// Resolve recursively descends value (as decoded from YAML: map[string]any,
// []any, string, float64, bool, nil) resolving every string field against
// env. Non-string scalars pass through unchanged.
func (e *Env) Resolve(path []string, value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return e.ResolveString(path, v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			resolved, err := e.Resolve(append(append([]string{}, path...), strconv.Itoa(i)), item)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			resolved, err := e.Resolve(append(append([]string{}, path...), k), item)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}
