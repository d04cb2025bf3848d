package op

import (
	"strings"

	"github.com/vk/kord/internal/coord"
	"github.com/vk/kord/internal/token"
)

// OperatorFn is the signature of an operator's forward or inverse function.
// It transforms operands in place and returns the number of coordinates
// successfully transformed.
type OperatorFn func(op *Op, prv Provider, operands coord.Set) int

// Constructor builds an operator instance from its raw parameters. User
// defined operators register one of these with the provider.
type Constructor func(params *RawParameters, prv Provider) (*Op, error)

// Descriptor records what an Op is and how to run it.
type Descriptor struct {
	// Invocation is the step text that instantiated the Op; Definition is
	// what it resolved to after macro expansion.
	Invocation string
	Definition string

	// Inverted is set when the step carries the `inv` modifier, swapping
	// the roles of the forward and inverse functions.
	Inverted bool

	// Steps holds the constituent step texts of a pipeline, for
	// introspection. Empty for leaf operators.
	Steps []string

	fwd OperatorFn
	inv OperatorFn
}

// NewDescriptor builds a leaf descriptor. A nil inv marks the operator as
// non-invertible.
func NewDescriptor(invocation, definition string, fwd, inv OperatorFn) Descriptor {
	return Descriptor{
		Invocation: invocation,
		Definition: definition,
		fwd:        fwd,
		inv:        inv,
	}
}

// Op is an instantiated operator: a leaf operation or a pipeline of steps.
type Op struct {
	Descriptor Descriptor
	Params     *ParsedParameters
	Steps      []*Op
	ID         Handle
}

// IsPipeline reports whether the Op is a pipeline of steps.
func (op *Op) IsPipeline() bool {
	return len(op.Steps) > 0
}

// Len returns the number of steps (1 for a leaf operator).
func (op *Op) Len() int {
	if len(op.Steps) == 0 {
		return 1
	}
	return len(op.Steps)
}

// Apply runs the Op in the given direction, returning the number of
// coordinates successfully transformed. The `inv` modifier and the
// requested direction cancel out, so an inverted Op run in the Inverse
// direction executes its forward function.
func (op *Op) Apply(prv Provider, operands coord.Set, direction Direction) int {
	forward := op.Descriptor.Inverted != (direction == Forward)
	if forward {
		if op.Descriptor.fwd == nil {
			return 0
		}
		return op.Descriptor.fwd(op, prv, operands)
	}
	if op.Descriptor.inv == nil {
		return 0
	}
	return op.Descriptor.inv(op, prv, operands)
}

// New instantiates the operator (or pipeline) given by definition, in the
// context of the given provider.
func New(definition string, prv Provider) (*Op, error) {
	steps, _ := token.SplitIntoSteps(definition)
	raw := NewRaw(strings.Join(steps, "|"), prv.Globals())
	return instantiate(raw, prv)
}

// Plain builds a leaf Op from an operator's forward and inverse functions
// and its parameter gamut. Most operator constructors boil down to this.
func Plain(raw *RawParameters, fwd, inv OperatorFn, gamut []Param, prv Provider) (*Op, error) {
	def := raw.Definition
	params, err := NewParsedParameters(raw, gamut)
	if err != nil {
		return nil, err
	}
	descriptor := NewDescriptor(raw.Invocation, def, fwd, inv)
	// Inversion is handled higher up in the call hierarchy.
	return &Op{Descriptor: descriptor, Params: params, ID: NewHandle()}, nil
}

// instantiate resolves a definition to an Op, trying in turn: pipeline,
// user defined operator, macro, builtin.
func instantiate(raw RawParameters, prv Provider) (*Op, error) {
	if raw.NestingTooDeep() {
		return nil, NewError(ErrRecursion, raw.Invocation, raw.Definition)
	}

	name := token.OperatorName(raw.Definition, "")

	// Pipelines are handled separately, and carry no `inv` modifier of
	// their own.
	if token.IsPipeline(raw.Definition) {
		return newPipeline(&raw, prv)
	}

	// A user defined operator?
	if !token.IsResourceName(name) {
		if constructor, err := prv.GetOp(name); err == nil {
			op, err := constructor(&raw, prv)
			if err != nil {
				return nil, err
			}
			return handleOpInversion(op)
		}
	}

	// A macro? If so, expand it and instantiate the result.
	if strings.Contains(name, ":") {
		definition, err := prv.GetResource(name)
		if err != nil {
			return nil, err
		}
		definition = token.Normalize(definition)

		// Is the macro called in inverse mode? Search for whitespace
		// delimited "inv" to avoid matching INVariant, subINVolution etc.
		inverted := strings.Contains(raw.Definition, " inv ") || strings.HasSuffix(raw.Definition, " inv")

		next := raw.Next(definition)
		op, err := instantiate(next, prv)
		if err != nil {
			return nil, err
		}
		return handleInversion(op, inverted)
	}

	// A builtin, then.
	if constructor, ok := builtins[name]; ok {
		op, err := constructor(&raw, prv)
		if err != nil {
			return nil, err
		}
		return handleOpInversion(op)
	}

	return nil, NewError(ErrNotFound, name, raw.Definition)
}

// handleOpInversion inverts the Op if its parameters carry the `inv` flag.
func handleOpInversion(op *Op) (*Op, error) {
	return handleInversion(op, op.Params != nil && op.Params.Boolean("inv"))
}

func handleInversion(op *Op, inverted bool) (*Op, error) {
	if !inverted {
		return op, nil
	}
	if op.Descriptor.inv == nil {
		return nil, NewError(ErrNonInvertible, op.Descriptor.Invocation, op.Descriptor.Definition)
	}
	op.Descriptor.Inverted = !op.Descriptor.Inverted
	return op, nil
}
