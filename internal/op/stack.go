package op

import (
	"log/slog"
	"math"

	"github.com/vk/kord/internal/coord"
)

var stackGamut = []Param{
	{Key: "push", Kind: Series, Default: Def("")},
	{Key: "pop", Kind: Series, Default: Def("")},
	{Key: "roll", Kind: Series, Default: Def("")},
	{Key: "unroll", Kind: Series, Default: Def("")},
	{Key: "flip", Kind: Series, Default: Def("")},
	{Key: "swap", Kind: Flag},
	{Key: "drop", Kind: Flag},
}

// newStack builds a stack operator, checking subcommand syntax up front.
// The actual work happens in stackFwd/stackInv, called by the embedding
// pipeline, so the forward and inverse functions are placeholders.
func newStack(raw *RawParameters, prv Provider) (*Op, error) {
	op, err := Plain(raw, placeholder, placeholder, stackGamut, prv)
	if err != nil {
		return nil, err
	}
	params := op.Params

	// The subcommands are mutually exclusive, so we count them and err
	// if anything but exactly one is given
	subcommands := 0

	for _, subcommand := range []string{"push", "pop", "flip"} {
		args, err := params.Series(subcommand)
		if err != nil {
			continue
		}
		subcommands++
		for _, index := range args {
			if index < 1 || index > 4 || index != math.Trunc(index) {
				return nil, NewError(ErrBadParam, subcommand, raw.Definition)
			}
		}
		params.Texts["action"] = subcommand
	}

	for _, subcommand := range []string{"roll", "unroll"} {
		args, err := params.Series(subcommand)
		if err != nil {
			continue
		}
		subcommands++
		if len(args) != 2 || args[0] != math.Trunc(args[0]) || args[1] != math.Trunc(args[1]) ||
			args[0] <= math.Abs(args[1]) {
			return nil, NewError(ErrMissingParam,
				subcommand+" takes exactly two integer parameters, (m,n): |n|<m", raw.Definition)
		}
		params.Texts["action"] = subcommand
	}

	if params.Boolean("swap") {
		subcommands++
		params.Texts["action"] = "swap"
	}

	if params.Boolean("drop") {
		subcommands++
		params.Texts["action"] = "drop"
	}

	if subcommands != 1 {
		return nil, NewError(ErrMissingParam,
			"stack: must specify exactly one of push/pop/roll/unroll/flip/swap/drop", raw.Definition)
	}

	return op, nil
}

// stackFwd executes a stack operation in forward mode, on behalf of the
// embedding pipeline.
func stackFwd(stack *[][]float64, operands coord.Set, params *ParsedParameters) int {
	action, ok := params.Texts["action"]
	if !ok {
		return 0
	}

	switch action {
	case "push":
		args, _ := params.SeriesAsInts("push")
		return stackPush(stack, operands, args)

	case "pop":
		args, _ := params.SeriesAsInts("pop")
		return stackPop(stack, operands, args)

	case "roll":
		args, _ := params.SeriesAsInts("roll")
		return stackRoll(stack, operands, args[0], args[1])

	case "unroll":
		args, _ := params.SeriesAsInts("unroll")
		return stackRoll(stack, operands, args[0], args[0]-args[1])

	case "flip":
		args, _ := params.SeriesAsInts("flip")
		return stackFlip(stack, operands, args)

	case "swap":
		return stackSwap(stack)
	}

	return 0
}

// stackInv executes a stack operation in inverse mode. Inverse mode has two
// major differences from forward: push and pop switch functionality, and
// their argument order swaps direction.
func stackInv(stack *[][]float64, operands coord.Set, params *ParsedParameters) int {
	action, ok := params.Texts["action"]
	if !ok {
		return 0
	}

	switch action {
	case "push":
		args, _ := params.SeriesAsInts("push")
		return stackPop(stack, operands, reversed(args))

	case "pop":
		args, _ := params.SeriesAsInts("pop")
		return stackPush(stack, operands, reversed(args))

	case "roll":
		args, _ := params.SeriesAsInts("roll")
		return stackRoll(stack, operands, args[0], args[0]-args[1])

	// The inverse of an unroll m,n is a roll m,n
	case "unroll":
		args, _ := params.SeriesAsInts("unroll")
		return stackRoll(stack, operands, args[0], args[1])

	case "flip":
		args, _ := params.SeriesAsInts("flip")
		return stackFlip(stack, operands, args)

	case "swap":
		return stackSwap(stack)
	}

	return 0
}

func reversed(args []int) []int {
	out := make([]int, len(args))
	for i, v := range args {
		out[len(args)-1-i] = v
	}
	return out
}

// stackPush pushes coordinate elements onto the stack, one stack element
// per argument. Arguments are 1 based coordinate indices.
func stackPush(stack *[][]float64, operands coord.Set, args []int) int {
	n := operands.Len()

	ext := make([][]float64, len(args))
	for j := range ext {
		ext[j] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		c := operands.Get(i)
		for j, arg := range args {
			ext[j][i] = c[arg-1]
		}
	}

	*stack = append(*stack, ext...)
	return n
}

// stackPop pops stack elements into coordinate elements. In case of
// underflow, we stomp on all input coordinates.
func stackPop(stack *[][]float64, operands coord.Set, args []int) int {
	n := operands.Len()
	if len(*stack) < len(args) {
		slog.Warn("stack underflow in pipeline")
		coord.Stomp(operands)
		return 0
	}

	ext := make([][]float64, len(args))
	for j := range args {
		ext[j] = (*stack)[len(*stack)-1]
		*stack = (*stack)[:len(*stack)-1]
	}

	for i := 0; i < n; i++ {
		c := operands.Get(i)
		for j, arg := range args {
			c[arg-1] = ext[j][i]
		}
		operands.Set(i, c)
	}
	return n
}

// stackRoll m,n: on the sub-stack consisting of the m upper elements, roll
// n elements from the top to the bottom of the sub-stack. Hence, roll is a
// "big swap", essentially swapping the n upper elements with the m-n lower.
func stackRoll(stack *[][]float64, operands coord.Set, m, n int) int {
	depth := len(*stack)

	// Negative n counts the rolled elements from the bottom,
	// i.e. roll 3,-2 = roll 3,1
	if n < 0 {
		n = m + n
	}

	if m > depth {
		slog.Warn("roll too deep")
		coord.Stomp(operands)
		return 0
	}

	for i := 0; i < n; i++ {
		e := (*stack)[depth-1]
		copy((*stack)[depth-m+1:], (*stack)[depth-m:depth-1])
		(*stack)[depth-m] = e
	}

	return operands.Len()
}

// stackFlip swaps coordinate elements with their corresponding stack
// elements, counted from the top of the stack.
func stackFlip(stack *[][]float64, operands coord.Set, args []int) int {
	n := operands.Len()
	depth := len(*stack)

	if depth < len(args) {
		slog.Warn("stack flip underflow in pipeline")
		coord.Stomp(operands)
		return 0
	}

	for i := 0; i < n; i++ {
		c := operands.Get(i)
		for j, arg := range args {
			d := depth - 1 - j
			c[arg-1], (*stack)[d][i] = (*stack)[d][i], c[arg-1]
		}
		operands.Set(i, c)
	}

	return n
}

// stackSwap swaps the top two stack elements. An empty stack is left
// untouched and reported as zero successes.
func stackSwap(stack *[][]float64) int {
	n := len(*stack)
	if n > 1 {
		(*stack)[n-1], (*stack)[n-2] = (*stack)[n-2], (*stack)[n-1]
	}
	if n == 0 {
		return 0
	}
	return len((*stack)[0])
}
