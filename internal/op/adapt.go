package op

import (
	"log/slog"
	"math"
	"strings"

	"github.com/vk/kord/internal/coord"
)

// adapt: declarative reordering, sign flipping and angular unit conversion
// of coordinate tuples.
//
// The coordinate type designations eastish, northish, upish, futurish and
// their geometrical inverses westish, southish, downish, pastish have the
// short forms e, n, u, f and w, s, d, p. A descriptor combines four of
// these with an optional angular unit, as in "neuf_deg": latitude,
// longitude (in degrees), height, time.
//
// The internal format of a coordinate tuple is "enuf_rad", so
//
//	adapt from=neuf_deg
//
// converts latitude-longitude-in-degrees input to the internal format, and
// `adapt to=neuf_deg` (equivalently `adapt inv from=neuf_deg`) converts
// back. You never tell adapt what to do, only what you go from and to.

var adaptGamut = []Param{
	{Key: "inv", Kind: Flag},
	{Key: "from", Kind: Text, Default: Def("enuf")},
	{Key: "to", Kind: Text, Default: Def("enuf")},
}

func newAdapt(raw *RawParameters, prv Provider) (*Op, error) {
	op, err := Plain(raw, adaptFwd, adaptInv, adaptGamut, prv)
	if err != nil {
		return nil, err
	}
	params := op.Params

	from, ok := orderDescriptor(params.Texts["from"])
	if !ok {
		return nil, NewError(ErrBadParam, "from", params.Texts["from"])
	}
	to, ok := orderDescriptor(params.Texts["to"])
	if !ok {
		return nil, NewError(ErrBadParam, "to", params.Texts["to"])
	}

	// Eliminate redundancy for over-specified cases
	give := combineDescriptors(from, to)
	if give.noop {
		params.Flags["noop"] = true
	}
	params.Lists["post"] = []float64{
		float64(give.post[0]), float64(give.post[1]),
		float64(give.post[2]), float64(give.post[3]),
	}
	params.Lists["mult"] = give.mult[:]

	return op, nil
}

func adaptFwd(op *Op, prv Provider, operands coord.Set) int {
	n := operands.Len()
	if op.Params.Boolean("noop") {
		return n
	}

	post, mult := adaptIndices(op.Params)
	for i := 0; i < n; i++ {
		c := operands.Get(i)
		operands.Set(i, coord.Coor4D{
			c[post[0]] * mult[0],
			c[post[1]] * mult[1],
			c[post[2]] * mult[2],
			c[post[3]] * mult[3],
		})
	}
	return n
}

func adaptInv(op *Op, prv Provider, operands coord.Set) int {
	n := operands.Len()
	if op.Params.Boolean("noop") {
		return n
	}

	post, mult := adaptIndices(op.Params)
	for i := 0; i < n; i++ {
		c := operands.Get(i)
		var out coord.Coor4D
		for j := 0; j < 4; j++ {
			out[post[j]] = c[j] / mult[post[j]]
		}
		operands.Set(i, out)
	}
	return n
}

func adaptIndices(params *ParsedParameters) (post [4]int, mult [4]float64) {
	post = [4]int{0, 1, 2, 3}
	mult = [4]float64{1, 1, 1, 1}
	if p, ok := params.Lists["post"]; ok {
		for j := range post {
			post[j] = int(p[j])
		}
	}
	if m, ok := params.Lists["mult"]; ok {
		copy(mult[:], m)
	}
	return post, mult
}

type orderDesc struct {
	post [4]int
	mult [4]float64
	noop bool
}

// orderDescriptor parses a coordinate order descriptor like "neuf_deg"
// into positions, sign-and-unit multipliers, and a noop marker.
func orderDescriptor(desc string) (orderDesc, bool) {
	d := orderDesc{post: [4]int{0, 1, 2, 3}, mult: [4]float64{1, 1, 1, 1}}
	if desc == "pass" {
		d.noop = true
		return d, true
	}

	if len(desc) != 4 && len(desc) != 8 {
		return d, false
	}

	torad := 1.0
	if len(desc) == 8 {
		switch {
		case strings.HasSuffix(desc, "_deg"):
			torad = math.Pi / 180
		case strings.HasSuffix(desc, "_gon"):
			torad = math.Pi / 200
		case strings.HasSuffix(desc, "_rad"), strings.HasSuffix(desc, "_any"):
		default:
			return d, false
		}
	}

	// Figure out what goes (resp. comes from) where
	var indices [4]int
	for i, designator := range desc[:4] {
		var dd int
		switch designator {
		case 'e':
			dd = 1
		case 'n':
			dd = 2
		case 'u':
			dd = 3
		case 'f':
			dd = 4
		case 'w':
			dd = -1
		case 's':
			dd = -2
		case 'd':
			dd = -3
		case 'p':
			dd = -4
		default:
			return d, false
		}
		indices[i] = dd
	}

	// The descriptor must describe a true permutation:
	// all inputs go to a unique output
	var count [4]int
	for i := 0; i < 4; i++ {
		count[abs(indices[i])-1]++
	}
	if count != [4]int{1, 1, 1, 1} {
		slog.Warn("not a proper permutation", "descriptor", desc)
		return d, false
	}

	// Untangle the sign and position parts
	for i := 0; i < 4; i++ {
		d.post[i] = abs(indices[i]) - 1
		sign := 1.0
		if indices[i] < 0 {
			sign = -1
		}
		if i > 1 {
			d.mult[i] = sign
		} else {
			d.mult[i] = sign * torad
		}
	}
	d.noop = d.mult == [4]float64{1, 1, 1, 1} && d.post == [4]int{0, 1, 2, 3}
	return d, true
}

func combineDescriptors(from, to orderDesc) orderDesc {
	var give orderDesc
	for i := 0; i < 4; i++ {
		give.mult[i] = from.mult[i] / to.mult[i]
		for j, p := range from.post {
			if p == to.post[i] {
				give.post[i] = j
				break
			}
		}
	}
	give.noop = give.mult == [4]float64{1, 1, 1, 1} && give.post == [4]int{0, 1, 2, 3}
	return give
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
