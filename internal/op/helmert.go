package op

import (
	"math"

	"github.com/vk/kord/internal/coord"
)

// The Helmert transform performs reference frame shifts. It operates in 3D
// cartesian space, transforming coordinates between static and/or dynamic
// reference frames.

var helmertGamut = []Param{
	{Key: "inv", Kind: Flag},

	// Translation and its time evolution
	{Key: "x", Kind: Real, Default: Def("0")},
	{Key: "y", Kind: Real, Default: Def("0")},
	{Key: "z", Kind: Real, Default: Def("0")},
	{Key: "dx", Kind: Real, Default: Def("0")},
	{Key: "dy", Kind: Real, Default: Def("0")},
	{Key: "dz", Kind: Real, Default: Def("0")},

	// Rotation and its time evolution
	{Key: "rx", Kind: Real, Default: Def("0")},
	{Key: "ry", Kind: Real, Default: Def("0")},
	{Key: "rz", Kind: Real, Default: Def("0")},
	{Key: "drx", Kind: Real, Default: Def("0")},
	{Key: "dry", Kind: Real, Default: Def("0")},
	{Key: "drz", Kind: Real, Default: Def("0")},

	// Handling of rotation
	{Key: "convention", Kind: Text, Default: Def("")},
	{Key: "exact", Kind: Flag},

	// Scale and its time evolution
	{Key: "s", Kind: Real, Default: Def("0")},
	{Key: "ds", Kind: Real, Default: Def("0")},

	// Epoch, the "beginning of time" for this transformation
	{Key: "t_epoch", Kind: Real, Default: Def("NaN")},

	// Fixed observation time, overriding the fourth coordinate
	{Key: "t_obs", Kind: Real, Default: Def("NaN")},
}

func newHelmert(raw *RawParameters, prv Provider) (*Op, error) {
	op, err := Plain(raw, helmertFwd, helmertInv, helmertGamut, prv)
	if err != nil {
		return nil, err
	}
	params := op.Params

	T := [3]float64{params.Reals["x"], params.Reals["y"], params.Reals["z"]}
	DT := [3]float64{params.Reals["dx"], params.Reals["dy"], params.Reals["dz"]}

	// Rotation parameters arrive in arcseconds
	R := [3]float64{
		radians(params.Reals["rx"] / 3600),
		radians(params.Reals["ry"] / 3600),
		radians(params.Reals["rz"] / 3600),
	}
	DR := [3]float64{
		radians(params.Reals["drx"] / 3600),
		radians(params.Reals["dry"] / 3600),
		radians(params.Reals["drz"] / 3600),
	}

	// Handling of rotations: position vector vs. coordinate frame conventions
	convention := params.Texts["convention"]
	rotated := R != [3]float64{} || DR != [3]float64{}
	positionVector := true
	if rotated {
		if convention != "position_vector" && convention != "coordinate_frame" {
			return nil, NewError(ErrBadParam, "convention", convention)
		}
		if convention == "coordinate_frame" {
			positionVector = false
		}
		params.Flags["rotated"] = true
	}
	if positionVector {
		params.Flags["position_vector"] = true
	}

	// Scale parameters arrive in ppm
	S := 1 + params.Reals["s"]*1e-6
	DS := params.Reals["ds"] * 1e-6

	dynamic := DT != [3]float64{} || DR != [3]float64{} || DS != 0
	if dynamic {
		params.Flags["dynamic"] = true

		epoch := params.Reals["t_epoch"]
		if math.IsNaN(epoch) {
			return nil, NewError(ErrMissingParam, "t_epoch", raw.Definition)
		}

		// With a fixed observation time the fourth coordinate is ignored
		// and the dynamic terms collapse into the static ones
		if tObs := params.Reals["t_obs"]; !math.IsNaN(tObs) {
			params.Flags["fixed_time"] = true
			dt := tObs - epoch
			for i := 0; i < 3; i++ {
				T[i] += DT[i] * dt
				R[i] += DR[i] * dt
			}
			S += DS * dt
		}
	}

	exact := params.Boolean("exact")
	ROT := rotationMatrix(R, exact, positionVector)

	params.Lists["T"] = T[:]
	params.Lists["DT"] = DT[:]
	params.Lists["R"] = R[:]
	params.Lists["DR"] = DR[:]
	params.Reals["S"] = S
	params.Reals["DS"] = DS
	params.Lists["ROTFLAT"] = []float64{
		ROT[0][0], ROT[0][1], ROT[0][2],
		ROT[1][0], ROT[1][1], ROT[1][2],
		ROT[2][0], ROT[2][1], ROT[2][2],
	}

	return op, nil
}

// The forward and inverse implementations are virtually identical, so they
// share a common worker, with the functionality selected by direction.

func helmertFwd(op *Op, prv Provider, operands coord.Set) int {
	return helmertCommon(op, operands, Forward)
}

func helmertInv(op *Op, prv Provider, operands coord.Set) int {
	return helmertCommon(op, operands, Inverse)
}

func helmertCommon(op *Op, operands coord.Set, direction Direction) int {
	params := op.Params

	T := params.Lists["T"]
	R := params.Lists["R"]
	S := params.Reals["S"]
	DT := params.Lists["DT"]
	DR := params.Lists["DR"]
	DS := params.Reals["DS"]

	M := params.Lists["ROTFLAT"]
	ROT := [3][3]float64{{M[0], M[1], M[2]}, {M[3], M[4], M[5]}, {M[6], M[7], M[8]}}

	rotated := params.Boolean("rotated")
	dynamic := params.Boolean("dynamic")
	fixedTime := params.Boolean("fixed_time")
	exact := params.Boolean("exact")
	positionVector := params.Boolean("position_vector")

	epoch := params.Reals["t_epoch"]
	if math.IsNaN(epoch) {
		epoch = 0
	}

	TT := [3]float64{T[0], T[1], T[2]}
	SS := S

	prevT := math.NaN()
	n := operands.Len()
	for i := 0; i < n; i++ {
		c := operands.Get(i)

		// Time varying case?
		if dynamic && !fixedTime {
			if c[3] != prevT {
				prevT = c[3]
				dt := c[3] - epoch
				TT[0] += dt * DT[0]
				TT[1] += dt * DT[1]
				TT[2] += dt * DT[2]
				if rotated {
					RR := [3]float64{R[0] + dt*DR[0], R[1] + dt*DR[1], R[2] + dt*DR[2]}
					ROT = rotationMatrix(RR, exact, positionVector)
				}
				SS = S + dt*DS
			}
		}

		if direction == Forward {
			if rotated {
				x := c[0]*ROT[0][0] + c[1]*ROT[0][1] + c[2]*ROT[0][2]
				y := c[0]*ROT[1][0] + c[1]*ROT[1][1] + c[2]*ROT[1][2]
				z := c[0]*ROT[2][0] + c[1]*ROT[2][1] + c[2]*ROT[2][2]
				c[0] = SS*x + TT[0]
				c[1] = SS*y + TT[1]
				c[2] = SS*z + TT[2]
				operands.Set(i, c)
				continue
			}

			c[0] = SS*c[0] + TT[0]
			c[1] = SS*c[1] + TT[1]
			c[2] = SS*c[2] + TT[2]
			operands.Set(i, c)
			continue
		}

		// Deoffset and unscale
		x := (c[0] - TT[0]) / SS
		y := (c[1] - TT[1]) / SS
		z := (c[2] - TT[2]) / SS

		// Inverse rotation by transposed multiplication
		if rotated {
			c[0] = x*ROT[0][0] + y*ROT[1][0] + z*ROT[2][0]
			c[1] = x*ROT[0][1] + y*ROT[1][1] + z*ROT[2][1]
			c[2] = x*ROT[0][2] + y*ROT[1][2] + z*ROT[2][2]
		} else {
			c[0], c[1], c[2] = x, y, z
		}
		operands.Set(i, c)
	}
	return n
}

// rotationMatrix builds the combined ROTZ*ROTY*ROTX rotation, either with
// small-angle approximations (the common case for the sub-arcsecond
// rotations of reference frame shifts) or exactly, and in either the
// position vector or coordinate frame convention.
//
//	TO' = scale * [ROTZ * ROTY * ROTX] * FROM' + [translation x, y, z]'
//
//	       | cz sz 0 |           | cy 0 -sy |           | 1   0  0 |
//	ROTZ = |-sz cz 0 |,   ROTY = | 0  1   0 |,   ROTX = | 0  cx sx |
//	       |  0  0 1 |           | sy 0  cy |           | 0 -sx cx |
func rotationMatrix(r [3]float64, exact, positionVector bool) [3][3]float64 {
	rx, ry, rz := r[0], r[1], r[2]

	// Small-angle approximations: sin(rx) = rx, cos(rx) = 1, etc.
	sx, sy, sz := rx, ry, rz
	cx, cy, cz := 1.0, 1.0, 1.0

	if exact {
		sx, cx = math.Sincos(rx)
		sy, cy = math.Sincos(ry)
		sz, cz = math.Sincos(rz)
	}

	r11 := cy * cz
	r12 := cx * sz
	r13 := -cx * sy * cz

	r21 := -cy * sz
	r22 := cx * cz
	r23 := sx * cz

	r31 := sy
	r32 := -sx * cy
	r33 := cx * cy

	// The second order terms are left out under the small-angle
	// approximation, but apply in the exact case
	if exact {
		r12 += sx * sy * cz
		r13 += sx * sz

		r22 -= sx * sy * sz
		r23 += cx * sy * sz
	}

	if positionVector {
		return [3][3]float64{{r11, r21, r31}, {r12, r22, r32}, {r13, r23, r33}}
	}
	return [3][3]float64{{r11, r12, r13}, {r21, r22, r23}, {r31, r32, r33}}
}
