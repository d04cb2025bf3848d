// Package ellps models biaxial reference ellipsoids and the geographic to
// cartesian conversions the transformation operators build on.
package ellps

import (
	"fmt"
	"math"
	"strings"

	"github.com/vk/kord/internal/coord"
)

// Ellipsoid is a biaxial rotational ellipsoid, given by its semimajor axis
// and flattening.
type Ellipsoid struct {
	a float64
	f float64
}

// builtins maps names to (semimajor axis, reciprocal flattening).
var builtins = map[string][2]float64{
	"GRS80":  {6378137, 298.2572221008827},
	"GRS67":  {6378160, 298.2471674270},
	"WGS84":  {6378137, 298.257223563},
	"WGS72":  {6378135, 298.26},
	"intl":   {6378388, 297},
	"bessel": {6377397.155, 299.1528128},
	"clrk66": {6378206.4, 294.9786982138982},
}

// Default returns GRS80, the conventional default ellipsoid.
func Default() Ellipsoid {
	return New(6378137, 1/298.2572221008827)
}

// New builds a user defined ellipsoid from semimajor axis and flattening.
func New(semimajorAxis, flattening float64) Ellipsoid {
	return Ellipsoid{a: semimajorAxis, f: flattening}
}

// Named looks up a predefined ellipsoid, or parses the "a, 1/f" form, e.g.
// "6378137, 298.3".
func Named(name string) (Ellipsoid, error) {
	if e, ok := builtins[name]; ok {
		return New(e[0], 1/e[1]), nil
	}

	if a, rf, ok := strings.Cut(name, ","); ok {
		var av, rfv float64
		_, errA := fmt.Sscanf(strings.TrimSpace(a), "%g", &av)
		_, errRf := fmt.Sscanf(strings.TrimSpace(rf), "%g", &rfv)
		if errA == nil && errRf == nil {
			return New(av, 1/rfv), nil
		}
	}

	return Ellipsoid{}, fmt.Errorf("unknown ellipsoid %q", name)
}

// SemimajorAxis returns a.
func (e Ellipsoid) SemimajorAxis() float64 { return e.a }

// SemiminorAxis returns b = a(1 - f).
func (e Ellipsoid) SemiminorAxis() float64 { return e.a * (1 - e.f) }

// Flattening returns f.
func (e Ellipsoid) Flattening() float64 { return e.f }

// EccentricitySquared returns e² = f(2 - f).
func (e Ellipsoid) EccentricitySquared() float64 { return e.f * (2 - e.f) }

// SecondEccentricitySquared returns e'² = e² / (1 - e²).
func (e Ellipsoid) SecondEccentricitySquared() float64 {
	es := e.EccentricitySquared()
	return es / (1 - es)
}

// PrimeVerticalRadiusOfCurvature returns N(φ) = a / sqrt(1 - e² sin²φ).
func (e Ellipsoid) PrimeVerticalRadiusOfCurvature(latitude float64) float64 {
	sinphi := math.Sin(latitude)
	return e.a / math.Sqrt(1-sinphi*sinphi*e.EccentricitySquared())
}

// Cartesian converts a geographic coordinate (longitude, latitude in
// radians, ellipsoidal height) to earth centered cartesian coordinates.
// Follows Bowring (1976, 1985).
func (e Ellipsoid) Cartesian(geographic coord.Coor4D) coord.Coor4D {
	lam, phi, h, t := geographic[0], geographic[1], geographic[2], geographic[3]

	n := e.PrimeVerticalRadiusOfCurvature(phi)
	cosphi, sinphi := math.Cos(phi), math.Sin(phi)
	coslam, sinlam := math.Cos(lam), math.Sin(lam)

	x := (n + h) * cosphi * coslam
	y := (n + h) * cosphi * sinlam
	z := (n*(1-e.EccentricitySquared()) + h) * sinphi
	return coord.Raw(x, y, z, t)
}

// Geographic converts earth centered cartesian coordinates back to
// geographic, using the closed form approximation of Fukushima (1999),
// with Bowring's (1985) expression for the height.
func (e Ellipsoid) Geographic(cartesian coord.Coor4D) coord.Coor4D {
	x, y, z, t := cartesian[0], cartesian[1], cartesian[2], cartesian[3]

	a := e.a
	b := e.SemiminorAxis()
	es := e.EccentricitySquared()
	eps := e.SecondEccentricitySquared()

	lam := math.Atan2(y, x)
	p := math.Hypot(x, y)

	// Closer than a picometer to the rotational axis: phi is a pole, and
	// the general formula divides by zero.
	if p < 1e-12 {
		phi := math.Copysign(math.Pi/2, z)
		return coord.Raw(lam, phi, math.Abs(z)-b, t)
	}

	tt := (z * a) / (p * b)
	c := 1 / math.Sqrt(1+tt*tt)
	s := c * tt

	phiNum := z + eps*b*s*s*s
	phiDenom := p - es*a*c*c*c
	phi := math.Atan2(phiNum, phiDenom)

	lenphi := math.Hypot(phiNum, phiDenom)
	sinphi := phiNum / lenphi
	cosphi := phiDenom / lenphi

	n := a / math.Sqrt(1-sinphi*sinphi*es)

	// Bowring (1985): more accurate than h = p / cos(phi) - N.
	h := p*cosphi + z*sinphi - a*a/n
	return coord.Raw(lam, phi, h, t)
}
