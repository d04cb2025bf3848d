package op

import (
	"github.com/vk/kord/internal/token"
)

// RawParameters is the not-yet-typed input to one instantiation step:
// the original invocation (kept for diagnostics), the definition text
// currently being instantiated (differs from the invocation after macro
// substitution), the inherited global scope, and the recursion depth.
type RawParameters struct {
	Invocation string
	Definition string
	Globals    map[string]string
	recursion  int
}

// NewRaw wraps a normalized definition and the provider globals for the
// outermost instantiation step. For macro invocations the parameter
// handling is deferred to Next, which merges the invocation arguments
// into the global scope.
func NewRaw(invocation string, globals map[string]string) RawParameters {
	raw := RawParameters{
		Invocation: invocation,
		Definition: invocation,
		Globals:    cloneScope(globals),
	}

	if token.IsPipeline(invocation) || !token.IsResourceName(invocation) {
		return raw
	}

	raw.Definition = ""
	return raw.Next(invocation)
}

// Next derives the raw parameters for the next step of an instantiation.
// If the step is a macro invocation, its arguments are brought into the
// global scope (minus the name and inv bookkeeping keys, which are handled
// one level up); otherwise the globals are inherited unchanged.
func (r RawParameters) Next(definition string) RawParameters {
	globals := cloneScope(r.Globals)
	recursion := r.recursion + 1
	if token.IsResourceName(definition) {
		params, _ := token.SplitIntoParameters(definition)
		for key, value := range params {
			globals[key] = value
		}
		delete(globals, "name")
		delete(globals, "inv")
		recursion++
	}
	return RawParameters{
		Invocation: r.Invocation,
		Definition: definition,
		Globals:    globals,
		recursion:  recursion,
	}
}

// NestingTooDeep reports whether the instantiation has exceeded the
// recursion ceiling, which is the guard against mutually recursive macros.
func (r RawParameters) NestingTooDeep() bool {
	return r.recursion > 100
}

func cloneScope(scope map[string]string) map[string]string {
	clone := make(map[string]string, len(scope))
	for key, value := range scope {
		clone[key] = value
	}
	return clone
}
