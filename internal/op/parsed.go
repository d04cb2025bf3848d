package op

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/vk/kord/internal/ellps"
	"github.com/vk/kord/internal/token"
)

// ParsedParameters is the typed, validated result of resolving the raw
// parameters of one step against an operator's gamut.
type ParsedParameters struct {
	Name string

	// Commonly used options have hard-coded slots. Ellps[0] defaults to
	// GRS80; the angular slots hold radians.
	Ellps [2]ellps.Ellipsoid
	Lat   [4]float64
	Lon   [4]float64
	X     [4]float64
	Y     [4]float64
	K     [4]float64

	// Operator specific options, binned by type. Exported so constructors
	// can stash precomputed values for their inner functions.
	Flags    map[string]bool
	Naturals map[string]int
	Integers map[string]int64
	Reals    map[string]float64
	Lists    map[string][]float64
	Texts    map[string]string

	// The parameters as literally given in the step.
	Given map[string]string
}

// Boolean reports whether a flag was given (or force-set by a constructor).
func (p *ParsedParameters) Boolean(key string) bool {
	return p.Flags[key]
}

// Natural returns a validated non-negative integer parameter.
func (p *ParsedParameters) Natural(key string) (int, error) {
	if v, ok := p.Naturals[key]; ok {
		return v, nil
	}
	return 0, NewError(ErrMissingParam, key, "")
}

// Integer returns a validated integer parameter.
func (p *ParsedParameters) Integer(key string) (int64, error) {
	if v, ok := p.Integers[key]; ok {
		return v, nil
	}
	return 0, NewError(ErrMissingParam, key, "")
}

// Real returns a validated floating point parameter.
func (p *ParsedParameters) Real(key string) (float64, error) {
	if v, ok := p.Reals[key]; ok {
		return v, nil
	}
	return 0, NewError(ErrMissingParam, key, "")
}

// Series returns a validated list-of-floats parameter.
func (p *ParsedParameters) Series(key string) ([]float64, error) {
	if v, ok := p.Lists[key]; ok {
		return v, nil
	}
	return nil, NewError(ErrMissingParam, key, "")
}

// Text returns a string parameter.
func (p *ParsedParameters) Text(key string) (string, error) {
	if v, ok := p.Texts[key]; ok {
		return v, nil
	}
	return "", NewError(ErrMissingParam, key, "")
}

// SeriesAsInts returns a series parameter with every element checked to be
// integer valued.
func (p *ParsedParameters) SeriesAsInts(key string) ([]int, error) {
	series, err := p.Series(key)
	if err != nil {
		return nil, err
	}
	ints := make([]int, len(series))
	for i, v := range series {
		n := int(v)
		if float64(n) != v {
			return nil, NewError(ErrBadParam, key, strconv.FormatFloat(v, 'g', -1, 64))
		}
		ints[i] = n
	}
	return ints, nil
}

// NewParsedParameters resolves the raw parameters of one step against the
// given gamut, chasing indirections and applying defaults, and type checks
// every accepted key.
func NewParsedParameters(raw *RawParameters, gamut []Param) (*ParsedParameters, error) {
	locals, err := token.SplitIntoParameters(raw.Definition)
	if err != nil {
		return nil, NewError(ErrSyntax, err.Error(), raw.Definition)
	}
	globals := raw.Globals

	p := &ParsedParameters{
		Flags:    map[string]bool{},
		Naturals: map[string]int{},
		Integers: map[string]int64{},
		Reals:    map[string]float64{},
		Lists:    map[string][]float64{},
		Texts:    map[string]string{},
		Given:    locals,
	}

	// The step modifiers belong to every gamut, whether the operator
	// declared them or not: the factory consumes inv, and the pipeline
	// executor consumes omit_fwd and omit_inv when skipping steps.
	merged := make([]Param, len(gamut), len(gamut)+3)
	copy(merged, gamut)
	for _, key := range [...]string{"inv", "omit_fwd", "omit_inv"} {
		declared := false
		for _, entry := range gamut {
			if entry.Key == key {
				declared = true
				break
			}
		}
		if !declared {
			merged = append(merged, Param{Key: key, Kind: Flag})
		}
	}

	for _, entry := range merged {
		value, found, err := chase(globals, locals, entry.Key)
		if err != nil {
			return nil, err
		}

		if !found {
			if entry.Kind == Flag {
				continue
			}
			if entry.Default == nil {
				slog.Error("missing required parameter", "key", entry.Key)
				return nil, NewError(ErrMissingParam, entry.Key, raw.Definition)
			}
			value = *entry.Default
		}

		switch entry.Kind {
		case Flag:
			if value == "" || strings.EqualFold(value, "true") {
				p.Flags[entry.Key] = true
				continue
			}
			slog.Warn("cannot parse flag", "key", entry.Key, "value", value)
			return nil, NewError(ErrBadParam, entry.Key, value)

		case Natural:
			v, err := strconv.ParseUint(value, 10, 63)
			if err != nil {
				slog.Warn("cannot parse natural number", "key", entry.Key, "value", value)
				return nil, NewError(ErrBadParam, entry.Key, value)
			}
			p.Naturals[entry.Key] = int(v)

		case Integer:
			v, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				slog.Warn("cannot parse integer", "key", entry.Key, "value", value)
				return nil, NewError(ErrBadParam, entry.Key, value)
			}
			p.Integers[entry.Key] = v

		case Real:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				slog.Warn("cannot parse real number", "key", entry.Key, "value", value)
				return nil, NewError(ErrBadParam, entry.Key, value)
			}
			p.Reals[entry.Key] = v

		case Series:
			// The empty default means optional-and-absent.
			if value == "" {
				continue
			}
			var elements []float64
			for _, element := range strings.Split(value, ",") {
				v, err := strconv.ParseFloat(element, 64)
				if err != nil {
					slog.Warn("cannot parse series", "key", entry.Key, "value", value)
					return nil, NewError(ErrBadParam, entry.Key, value)
				}
				elements = append(elements, v)
			}
			p.Lists[entry.Key] = elements

		case Text:
			p.Texts[entry.Key] = value
		}
	}

	// The hard-coded slots

	p.Ellps = [2]ellps.Ellipsoid{ellps.Default(), ellps.Default()}
	for i := 0; i < 2; i++ {
		if name, ok := p.Texts[fmt.Sprintf("ellps_%d", i)]; ok {
			e, err := ellps.Named(name)
			if err != nil {
				return nil, NewError(ErrNotFound, name, raw.Definition)
			}
			p.Ellps[i] = e
		}
	}
	// But plain `ellps` trumps `ellps_0`
	if name, ok := p.Texts["ellps"]; ok {
		e, err := ellps.Named(name)
		if err != nil {
			return nil, NewError(ErrNotFound, name, raw.Definition)
		}
		p.Ellps[0] = e
	}

	for i := 0; i < 4; i++ {
		p.Lat[i] = radians(p.Reals[fmt.Sprintf("lat_%d", i)])
		p.Lon[i] = radians(p.Reals[fmt.Sprintf("lon_%d", i)])
		p.X[i] = p.Reals[fmt.Sprintf("x_%d", i)]
		p.Y[i] = p.Reals[fmt.Sprintf("y_%d", i)]
		p.K[i] = p.Reals[fmt.Sprintf("k_%d", i)]
	}

	p.Name = "unknown"
	if name, ok := locals["name"]; ok {
		p.Name = name
	}

	return p, nil
}

// chaseLimit bounds the number of lookups a single chase may take, so
// mutually referring indirections terminate in a Syntax error rather than
// spinning.
const chaseLimit = 100

type scopeEntry struct {
	key   string
	value string
}

// chase resolves a parameter key against the combined global and local
// scopes. The search runs in reverse-chronological order (locals before
// globals, most recently defined first). A value of the form `^other` (or
// the sugared `$other`) redirects the search to a new key, restarting from
// the top; `*fallback` (or the sugared `(fallback)`) records a default,
// resets the needle to the original key, and keeps searching past the
// rejected entry for a proper value. If an indirection was attempted and
// nothing resolves, that is a syntax error ("incomplete definition");
// otherwise an unresolved key is simply not found, so the caller can apply
// the gamut default.
func chase(globals, locals map[string]string, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, NewError(ErrSyntax, "empty key", "")
	}

	haystack := scopeSequence(globals, locals)

	needle := key
	fallback := ""
	chasing := false
	start := len(haystack) - 1

	for iteration := 0; iteration < chaseLimit; iteration++ {
		found := -1
		for i := start; i >= 0; i-- {
			if haystack[i].key == needle {
				found = i
				break
			}
		}

		if found < 0 {
			if fallback != "" {
				return fallback, true, nil
			}
			if chasing {
				return "", false, NewError(ErrSyntax, "incomplete definition", key)
			}
			return "", false, nil
		}

		value := strings.TrimSpace(haystack[found].value)

		// Desugar $other and $other(fallback) into the ^ form, and a bare
		// (fallback) into the * form.
		if strings.HasPrefix(value, "$") {
			value = "^" + value[1:]
		}
		if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
			value = "*" + value[1:len(value)-1]
		}

		if rest, ok := strings.CutPrefix(value, "^"); ok {
			chasing = true
			if open := strings.IndexByte(rest, '('); open >= 0 && strings.HasSuffix(rest, ")") {
				fallback = rest[open+1 : len(rest)-1]
				rest = rest[:open]
			}
			needle = rest
			start = len(haystack) - 1
			continue
		}

		if rest, ok := strings.CutPrefix(value, "*"); ok {
			chasing = true
			fallback = rest
			needle = key
			start = found - 1
			continue
		}

		return value, true, nil
	}

	return "", false, NewError(ErrSyntax, "circular definition", key)
}

// scopeSequence lays out the search sequence: globals first, then locals,
// both in deterministic (sorted) insertion-equivalent order. Reversed
// traversal makes locals shadow globals.
func scopeSequence(globals, locals map[string]string) []scopeEntry {
	sequence := make([]scopeEntry, 0, len(globals)+len(locals))
	for _, scope := range []map[string]string{globals, locals} {
		keys := make([]string, 0, len(scope))
		for key := range scope {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			sequence = append(sequence, scopeEntry{key: key, value: scope[key]})
		}
	}
	return sequence
}

func radians(degrees float64) float64 {
	return degrees * 0.017453292519943295
}
