// Package token implements the lexical layer of the transformation
// definition mini-language: splitting a pipeline into steps, splitting a
// step into key=value parameters, and normalizing the free-form whitespace
// the language allows around its sigils.
package token

import (
	"fmt"
	"strings"
)

// Modifiers are the step-level flags that may appear anywhere in a step,
// including before the operator name.
var modifiers = [...]string{"inv", "omit_fwd", "omit_inv"}

// Normalize rewrites a definition fragment into canonical form:
//
//  1. Contiguous whitespace becomes a single space.
//  2. Whitespace is glued away around '=', ':', ',' and '|', and to the
//     right of the dereference sigil '$'.
//  3. The one-way separators '>' and '<' desugar into "|omit_inv " and
//     "|omit_fwd " steps.
//  4. Unicode subscript digits in keys ("x₁=") become their ASCII spelling
//     ("x_1=").
func Normalize(definition string) string {
	s := strings.TrimSpace(definition)
	s = strings.Trim(s, ":")
	s = strings.ReplaceAll(s, "\n:", "\n")
	s = strings.Join(strings.Fields(s), " ")

	glue := [...][2]string{
		{"= ", "="}, {": ", ":"}, {", ", ","}, {"| ", "|"}, {"> ", ">"}, {"< ", "<"},
		{" =", "="}, {" :", ":"}, {" ,", ","}, {" |", "|"}, {" >", ">"}, {" <", "<"},
	}
	// Mixed spacing like " , " needs a second round, so run to fixpoint.
	for {
		before := s
		for _, g := range glue {
			s = strings.ReplaceAll(s, g[0], g[1])
		}
		if s == before {
			break
		}
	}

	s = strings.ReplaceAll(s, ">", "|omit_inv ")
	s = strings.ReplaceAll(s, "<", "|omit_fwd ")

	subscripts := [...][2]string{
		{"₀=", "_0="}, {"₁=", "_1="}, {"₂=", "_2="}, {"₃=", "_3="}, {"₄=", "_4="},
		{"₅=", "_5="}, {"₆=", "_6="}, {"₇=", "_7="}, {"₈=", "_8="}, {"₉=", "_9="},
	}
	for _, g := range subscripts {
		s = strings.ReplaceAll(s, g[0], g[1])
	}

	// Glue "$ foo" into "$foo", but keep " $" as is
	s = strings.ReplaceAll(s, "$ ", "$")

	return strings.Join(strings.Fields(s), " ")
}

// SplitIntoSteps removes comments from a definition, collects its docstring,
// and splits the remainder into normalized steps. Lines starting with "##"
// are docstring material; a '#' discards the rest of its line. Empty steps
// (as in "foo || bar") are elided.
func SplitIntoSteps(definition string) (steps []string, docstring string) {
	all := strings.ReplaceAll(definition, "\r\n", "\n")
	all = strings.ReplaceAll(all, "\r", "\n")
	all = strings.ReplaceAll(all, "\n:", "\n")
	all = strings.TrimSpace(all)

	var trimmed strings.Builder
	var doc []string
	for _, line := range strings.Split(all, "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "##") {
			doc = append(doc, strings.TrimSpace(line[2:]))
			continue
		}

		// Inline comment, or no comment at all: keep everything before '#'
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		trimmed.WriteString(" ")
		trimmed.WriteString(strings.TrimSpace(line))
	}

	for _, step := range strings.Split(Normalize(trimmed.String()), "|") {
		if step != "" {
			steps = append(steps, step)
		}
	}
	return steps, strings.TrimSpace(strings.Join(doc, "\n"))
}

// SplitIntoParameters splits a single step into its parameters:
//
//	"foo bar=baz bonk" -> {"name": "foo", "bar": "baz", "bonk": "true"}
//
// The first value-less token is the operator name; other value-less tokens
// are flags, represented by the value "true". Prefix modifiers (inv,
// omit_fwd, omit_inv) are recognized even when given before the name. An
// explicit "key=" with no following value is a syntax error.
func SplitIntoParameters(step string) (map[string]string, error) {
	params := map[string]string{}
	elements := strings.Fields(Normalize(step))
	if len(elements) == 0 {
		return params, nil
	}

	// Rotate leading modifiers to the end of the list, so the first
	// value-less non-modifier token is seen as the operator name. The guard
	// keeps a pathological all-modifier step from spinning.
	for range elements {
		if !isModifier(elements[0]) {
			break
		}
		elements = append(elements[1:], elements[0])
	}

	for _, element := range elements {
		key, value, found := strings.Cut(element, "=")
		if !found {
			if len(params) == 0 {
				params["name"] = key
				continue
			}
			params[key] = "true"
			continue
		}
		// A dangling "key=" either ends the step (empty value) or, after
		// whitespace gluing, swallows the next element into a value with a
		// stray '=' in it. Values never legitimately contain '='.
		if value == "" || strings.Contains(value, "=") {
			return params, fmt.Errorf("missing value for parameter %q", key)
		}
		params[key] = value
	}

	return params, nil
}

func isModifier(element string) bool {
	for _, m := range modifiers {
		if element == m {
			return true
		}
	}
	return false
}

// IsPipeline reports whether a definition is a pipeline of steps rather
// than a single step.
func IsPipeline(definition string) bool {
	return strings.ContainsAny(definition, "|<>")
}

// IsResourceName reports whether a definition invokes a macro ("resource"),
// i.e. has a namespaced name like "geo:helmert".
func IsResourceName(definition string) bool {
	return strings.Contains(OperatorName(definition, ""), ":")
}

// OperatorName returns the name of the operator invoked by a single step,
// or dflt if the definition is a pipeline or nameless.
func OperatorName(definition, dflt string) string {
	if IsPipeline(definition) {
		return dflt
	}
	params, _ := SplitIntoParameters(definition)
	if name, ok := params["name"]; ok {
		return name
	}
	return dflt
}
