// Package geom provides the small amount of 3D vector math skelgraph needs.
//
// Positions and tangents are sdfx [v3.Vec] values. The helpers here add the
// operations the skeleton and curve packages use that sdfx leaves to the
// caller: zero-safe normalization, interpolation and a compact text form.
package geom

import (
	"math"
	"strconv"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec3 is a point or direction in 3D space.
type Vec3 = v3.Vec

// Epsilon is the tolerance used for geometric comparisons.
const Epsilon = 1e-9

// V returns the vector (x, y, z).
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged instead of producing NaN components.
func Normalize(v Vec3) Vec3 {
	l := v.Length()
	if l < Epsilon {
		return Vec3{}
	}
	return v.MulScalar(1 / l)
}

// Direction returns the unit vector pointing from a to b.
func Direction(a, b Vec3) Vec3 {
	return Normalize(b.Sub(a))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec3) float64 {
	return b.Sub(a).Length()
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vec3) Vec3 {
	return a.Add(b).MulScalar(0.5)
}

// Lerp interpolates linearly between a (t=0) and b (t=1).
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Neg returns -v.
func Neg(v Vec3) Vec3 {
	return v.MulScalar(-1)
}

// ApproxEqual reports whether a and b are within tol of each other
// on every axis.
func ApproxEqual(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v Vec3) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Compact formats v as "X Y Z" using the shortest representation that
// parses back to the same values.
func Compact(v Vec3) string {
	b := make([]byte, 0, 48)
	b = strconv.AppendFloat(b, v.X, 'g', -1, 64)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, v.Y, 'g', -1, 64)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, v.Z, 'g', -1, 64)
	return string(b)
}
