package op

// ParamKind enumerates the value types a gamut entry may declare.
type ParamKind int

const (
	// Flag is a boolean that is true when given, false when not. Flags
	// are always optional.
	Flag ParamKind = iota
	// Natural is a non-negative integer.
	Natural
	// Integer is a signed integer.
	Integer
	// Real is a floating point number.
	Real
	// Series is a comma separated list of floating point numbers.
	Series
	// Text is a free-form string.
	Text
)

// Param is one entry of an operator's gamut: the schema of parameter keys
// the operator accepts. A nil Default makes the parameter required; the
// empty-string default for a Series means "optional and absent".
type Param struct {
	Key     string
	Kind    ParamKind
	Default *string
}

// Def wraps a default value for use in a gamut literal.
func Def(value string) *string {
	return &value
}
