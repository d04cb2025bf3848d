package op

import (
	"log/slog"
	"math"

	"github.com/vk/kord/internal/coord"
	"github.com/vk/kord/internal/token"
)

var pipelineGamut = []Param{
	{Key: "inv", Kind: Flag},
}

// newPipeline instantiates each step of a pipeline definition, and wraps
// them in an Op whose forward and inverse functions orchestrate the steps
// and the inter-step stack.
func newPipeline(raw *RawParameters, prv Provider) (*Op, error) {
	definition := raw.Definition
	stepTexts, _ := token.SplitIntoSteps(definition)

	steps := make([]*Op, 0, len(stepTexts))
	for _, step := range stepTexts {
		next := raw.Next(step)
		op, err := instantiate(next, prv)
		if err != nil {
			return nil, err
		}
		steps = append(steps, op)
	}

	params, err := NewParsedParameters(raw, pipelineGamut)
	if err != nil {
		return nil, err
	}

	descriptor := NewDescriptor(raw.Invocation, definition, pipelineFwd, pipelineInv)
	descriptor.Steps = stepTexts

	return &Op{
		Descriptor: descriptor,
		Params:     params,
		Steps:      steps,
		ID:         NewHandle(),
	}, nil
}

func pipelineFwd(op *Op, prv Provider, operands coord.Set) int {
	var stack [][]float64
	n := math.MaxInt
	for _, step := range op.Steps {
		if step.Params.Boolean("omit_fwd") {
			continue
		}
		var m int
		switch step.Params.Name {
		case "push":
			m = legacyPush(&stack, operands, step.Params.Flags)
		case "pop":
			m = legacyPop(&stack, operands, step.Params.Flags)
		case "stack":
			m = stackFwd(&stack, operands, step.Params)
		default:
			m = step.Apply(prv, operands, Forward)
		}
		n = min(n, m)
	}

	// In case every step has been marked as omit_fwd
	if n == math.MaxInt {
		n = operands.Len()
	}
	return n
}

func pipelineInv(op *Op, prv Provider, operands coord.Set) int {
	var stack [][]float64
	n := math.MaxInt
	for i := len(op.Steps) - 1; i >= 0; i-- {
		step := op.Steps[i]
		if step.Params.Boolean("omit_inv") {
			continue
		}
		// Under inverse invocation, push calls pop and vice versa
		var m int
		switch step.Params.Name {
		case "push":
			m = legacyPop(&stack, operands, step.Params.Flags)
		case "pop":
			m = legacyPush(&stack, operands, step.Params.Flags)
		case "stack":
			m = stackInv(&stack, operands, step.Params)
		default:
			m = step.Apply(prv, operands, Inverse)
		}
		n = min(n, m)
	}

	// In case every step has been marked as omit_inv
	if n == math.MaxInt {
		n = operands.Len()
	}
	return n
}

// The push and pop constructors are extremely simple, since the pipeline
// operator does all the hard work. Note that push and pop do not accept the
// inv flag although they are both invertible. To invert a push, use a pop.

var pushPopGamut = []Param{
	{Key: "v_1", Kind: Flag},
	{Key: "v_2", Kind: Flag},
	{Key: "v_3", Kind: Flag},
	{Key: "v_4", Kind: Flag},
}

func newPush(raw *RawParameters, prv Provider) (*Op, error) {
	return Plain(raw, placeholder, placeholder, pushPopGamut, prv)
}

func newPop(raw *RawParameters, prv Provider) (*Op, error) {
	return Plain(raw, placeholder, placeholder, pushPopGamut, prv)
}

// placeholder stands in for the forward and inverse functions of operators
// whose real work is done by the embedding pipeline.
func placeholder(op *Op, prv Provider, operands coord.Set) int {
	return 0
}

var pushPopElements = [4]string{"v_1", "v_2", "v_3", "v_4"}

func legacyPush(stack *[][]float64, operands coord.Set, flags map[string]bool) int {
	n := operands.Len()
	for j := 0; j < 4; j++ {
		if !flags[pushPopElements[j]] {
			continue
		}
		all := make([]float64, n)
		for i := 0; i < n; i++ {
			all[i] = operands.Get(i)[j]
		}
		*stack = append(*stack, all)
	}
	return n
}

func legacyPop(stack *[][]float64, operands coord.Set, flags map[string]bool) int {
	n := operands.Len()
	// Popping applies the flags in reverse element order, so a
	// push-then-pop with identical flags is a no-op
	for j := 0; j < 4; j++ {
		if !flags[pushPopElements[3-j]] {
			continue
		}

		if len(*stack) == 0 {
			for i := 0; i < n; i++ {
				c := operands.Get(i)
				c[3-j] = math.NaN()
				operands.Set(i, c)
			}
			slog.Warn("stack underflow in pipeline")
			return 0
		}

		v := (*stack)[len(*stack)-1]
		*stack = (*stack)[:len(*stack)-1]
		for i, value := range v {
			c := operands.Get(i)
			c[3-j] = value
			operands.Set(i, c)
		}
	}
	return n
}
