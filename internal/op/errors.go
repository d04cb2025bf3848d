package op

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrapped by Error, so callers can classify failures
// with errors.Is without caring about the diagnostic payload.
var (
	ErrGeneral       = errors.New("general")
	ErrNotFound      = errors.New("not found")
	ErrRecursion     = errors.New("recursion limit exceeded")
	ErrSyntax        = errors.New("syntax")
	ErrMissingParam  = errors.New("missing parameter")
	ErrBadParam      = errors.New("bad parameter")
	ErrNonInvertible = errors.New("non-invertible")
	ErrUnsupported   = errors.New("unsupported")
)

// Error is the concrete error type for operator construction failures. Name
// identifies the offending item (operator name, parameter key, ...), and
// Context carries the definition fragment or value being processed.
type Error struct {
	Kind    error
	Name    string
	Context string
}

func (e *Error) Error() string {
	switch {
	case e.Name == "" && e.Context == "":
		return e.Kind.Error()
	case e.Context == "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Name)
	default:
		return fmt.Sprintf("%s: %s (%s)", e.Kind.Error(), e.Name, e.Context)
	}
}

func (e *Error) Unwrap() error { return e.Kind }

// NewError wraps a sentinel kind with diagnostics. Exported for provider
// implementations and user defined operator constructors.
func NewError(kind error, name, context string) error {
	return &Error{Kind: kind, Name: name, Context: context}
}
