// Package coord defines the four dimensional coordinate tuple the engine
// transforms, and the minimal container capability every operator is
// written against.
package coord

import "math"

// Coor4D is a generic four dimensional coordinate: typically first and
// second space dimensions, height, and time, but any operator is free to
// assign its own meaning to the channels.
type Coor4D [4]float64

// Set is the capability required of any operand container. Operators never
// see a concrete array type, only this interface, so callers may store
// points however they like.
type Set interface {
	Len() int
	Get(i int) Coor4D
	Set(i int, c Coor4D)
}

// Slice is the vanilla Set implementation, a plain slice of coordinates.
type Slice []Coor4D

func (s Slice) Len() int            { return len(s) }
func (s Slice) Get(i int) Coor4D    { return s[i] }
func (s Slice) Set(i int, c Coor4D) { s[i] = c }

// Raw constructs a coordinate from four raw channel values.
func Raw(first, second, third, fourth float64) Coor4D {
	return Coor4D{first, second, third, fourth}
}

// Origin is the coordinate (0, 0, 0, 0).
func Origin() Coor4D {
	return Coor4D{}
}

// Nan is a coordinate with every channel set to not-a-number.
func Nan() Coor4D {
	n := math.NaN()
	return Coor4D{n, n, n, n}
}

// Geo constructs a coordinate from latitude and longitude in degrees,
// stored internally in radians in longitude, latitude order.
func Geo(latitude, longitude, height, time float64) Coor4D {
	return Coor4D{rad(longitude), rad(latitude), height, time}
}

// Gis constructs a coordinate from longitude and latitude in degrees,
// stored internally in radians.
func Gis(longitude, latitude, height, time float64) Coor4D {
	return Coor4D{rad(longitude), rad(latitude), height, time}
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

// ToDegrees converts the two angular channels from radians to degrees.
func (c Coor4D) ToDegrees() Coor4D {
	return Coor4D{deg(c[0]), deg(c[1]), c[2], c[3]}
}

// ToRadians converts the two angular channels from degrees to radians.
func (c Coor4D) ToRadians() Coor4D {
	return Coor4D{rad(c[0]), rad(c[1]), c[2], c[3]}
}

// Scaled multiplies every channel by f.
func (c Coor4D) Scaled(f float64) Coor4D {
	return Coor4D{c[0] * f, c[1] * f, c[2] * f, c[3] * f}
}

// HypotTo is the euclidean distance between two coordinates in the three
// space channels.
func (c Coor4D) HypotTo(o Coor4D) float64 {
	dx, dy, dz := c[0]-o[0], c[1]-o[1], c[2]-o[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Stomp overwrites every coordinate of operands with not-a-number. Used by
// operators that hit an unrecoverable per-batch condition, like stack
// underflow, where poisoning the output beats returning half a result.
func Stomp(operands Set) {
	n := Nan()
	for i := 0; i < operands.Len(); i++ {
		operands.Set(i, n)
	}
}
