package op

import (
	"math"
	"strconv"

	"github.com/vk/kord/internal/coord"
)

// axisswap: reordering and sign reversal of coordinate elements, in the
// style of the eponymous PROJ operator.

var axisswapGamut = []Param{
	{Key: "inv", Kind: Flag},
	{Key: "order", Kind: Series, Default: Def("1,2,3,4")},
}

func newAxisswap(raw *RawParameters, prv Provider) (*Op, error) {
	op, err := Plain(raw, axisswapFwd, axisswapInv, axisswapGamut, prv)
	if err != nil {
		return nil, err
	}

	order, err := op.Params.Series("order")
	if err != nil {
		return op, nil
	}

	if len(order) > 4 {
		return nil, NewError(ErrBadParam, "order", "more than 4 indices given")
	}

	// The series arrives as floats, but the elements must be usable as
	// 1 based array indices
	for _, o := range order {
		i := int(o)
		if float64(i) != o || i == 0 || abs(i) > len(order) {
			return nil, NewError(ErrBadParam, "order", strconv.FormatFloat(o, 'g', -1, 64))
		}
	}

	// PROJ does not allow duplicate axes, presumably for a well
	// considered reason, so neither do we
	for o := 1.0; o < 5; o++ {
		count := 0
		for _, v := range order {
			if math.Abs(v) == o {
				count++
			}
		}
		if count > 1 {
			return nil, NewError(ErrBadParam, "order", "duplicate axis specified")
		}
	}

	return op, nil
}

func axisswapIndices(params *ParsedParameters) (order []float64, pos [4]int, sgn [4]float64) {
	order = params.Lists["order"]
	pos = [4]int{0, 1, 2, 3}
	sgn = [4]float64{1, 1, 1, 1}
	for index, value := range order {
		pos[index] = int(math.Abs(value)) - 1
		sgn[index] = math.Copysign(1, value)
	}
	return order, pos, sgn
}

func axisswapFwd(op *Op, prv Provider, operands coord.Set) int {
	n := operands.Len()

	// The default order is 1,2,3,4, so without an order we are done already
	order, pos, sgn := axisswapIndices(op.Params)
	if order == nil {
		return n
	}

	for i := 0; i < n; i++ {
		inp := operands.Get(i)
		out := inp
		for index := range order {
			out[index] = inp[pos[index]] * sgn[index]
		}
		operands.Set(i, out)
	}
	return n
}

func axisswapInv(op *Op, prv Provider, operands coord.Set) int {
	n := operands.Len()

	order, pos, sgn := axisswapIndices(op.Params)
	if order == nil {
		return n
	}

	for i := 0; i < n; i++ {
		inp := operands.Get(i)
		out := inp
		for index := range order {
			out[pos[index]] = inp[index] * sgn[index]
		}
		operands.Set(i, out)
	}
	return n
}
