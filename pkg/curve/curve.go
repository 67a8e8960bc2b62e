// Package curve implements the deformable space curves carried by skeleton
// edges.
//
// A [Curve] is an ordered sequence of [PointTangent] samples. The first and
// last samples are the curve's endpoints and coincide with the positions of
// the vertices the owning edge connects. Interior samples describe the shape
// of the edge between those joints.
//
// # Deformation
//
// Two deformation primitives relocate samples while keeping the curve
// connected:
//
//   - [Curve.DeformAt] moves a single sample and spreads the displacement to
//     its neighbours, pinning both endpoints that are not being moved. It
//     needs at least one interior sample to absorb the change and reports
//     false otherwise.
//   - [Curve.PseudoElasticDeform] moves one endpoint and drags the rest of
//     the curve along with a falloff that reaches zero at the opposite end.
//     It always succeeds for curves with at least two samples.
//
// Both recompute tangents afterwards.
package curve

import (
	"fmt"
	"strings"

	"github.com/matzehuels/skelgraph/pkg/geom"
)

// PointTangent is one curve sample: a position and the unit tangent of the
// curve at that position.
type PointTangent struct {
	Point   geom.Vec3
	Tangent geom.Vec3
}

// Curve is an ordered, mutable sequence of point/tangent samples.
// The zero value is an empty curve.
type Curve struct {
	pts []PointTangent
}

// New returns a straight two-sample curve from a to b. Both tangents point
// from a towards b.
func New(a, b geom.Vec3) *Curve {
	dir := geom.Direction(a, b)
	return &Curve{pts: []PointTangent{{a, dir}, {b, dir}}}
}

// FromPoints builds a curve through the given positions and computes the
// tangents. At least two positions are required.
func FromPoints(points []geom.Vec3) (*Curve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("curve needs at least 2 points, got %d", len(points))
	}
	c := &Curve{pts: make([]PointTangent, len(points))}
	for i, p := range points {
		c.pts[i].Point = p
	}
	c.UpdateTangents()
	return c, nil
}

// FromSamples builds a curve from explicit samples. The slice is copied.
func FromSamples(samples []PointTangent) *Curve {
	return &Curve{pts: append([]PointTangent(nil), samples...)}
}

// Clone returns a deep copy of c.
func (c *Curve) Clone() *Curve {
	return FromSamples(c.pts)
}

// Reversed returns a copy of c walked back to front. Tangents are negated so
// they keep following the direction of travel.
func (c *Curve) Reversed() *Curve {
	n := len(c.pts)
	out := &Curve{pts: make([]PointTangent, n)}
	for i, pt := range c.pts {
		out.pts[n-1-i] = PointTangent{pt.Point, geom.Neg(pt.Tangent)}
	}
	return out
}

// Len returns the number of samples.
func (c *Curve) Len() int { return len(c.pts) }

// At returns sample i.
func (c *Curve) At(i int) PointTangent { return c.pts[i] }

// Point returns the position of sample i.
func (c *Curve) Point(i int) geom.Vec3 { return c.pts[i].Point }

// Set replaces sample i.
func (c *Curve) Set(i int, pt PointTangent) { c.pts[i] = pt }

// Front returns the first sample.
func (c *Curve) Front() PointTangent { return c.pts[0] }

// Back returns the last sample.
func (c *Curve) Back() PointTangent { return c.pts[len(c.pts)-1] }

// AfterFront returns the second sample.
func (c *Curve) AfterFront() PointTangent { return c.pts[1] }

// BeforeBack returns the second to last sample.
func (c *Curve) BeforeBack() PointTangent { return c.pts[len(c.pts)-2] }

// SetFront replaces the first sample.
func (c *Curve) SetFront(pt PointTangent) { c.pts[0] = pt }

// SetBack replaces the last sample.
func (c *Curve) SetBack(pt PointTangent) { c.pts[len(c.pts)-1] = pt }

// PushBack appends a sample.
func (c *Curve) PushBack(pt PointTangent) { c.pts = append(c.pts, pt) }

// PopBack removes the last sample. It is a no-op on an empty curve.
func (c *Curve) PopBack() {
	if len(c.pts) > 0 {
		c.pts = c.pts[:len(c.pts)-1]
	}
}

// TrimFront removes the first n samples.
func (c *Curve) TrimFront(n int) {
	if n <= 0 {
		return
	}
	if n >= len(c.pts) {
		c.pts = c.pts[:0]
		return
	}
	c.pts = append(c.pts[:0], c.pts[n:]...)
}

// Append adds the samples of other to the end of c, skipping the first skip
// samples. When reverse is set, other is walked back to front (with negated
// tangents) before skipping.
func (c *Curve) Append(other *Curve, skip int, reverse bool) {
	src := other
	if reverse {
		src = other.Reversed()
	}
	if skip < 0 {
		skip = 0
	}
	if skip >= len(src.pts) {
		return
	}
	c.pts = append(c.pts, src.pts[skip:]...)
}

// Points returns the sample positions.
func (c *Curve) Points() []geom.Vec3 {
	out := make([]geom.Vec3, len(c.pts))
	for i, pt := range c.pts {
		out[i] = pt.Point
	}
	return out
}

// Samples returns a copy of the samples.
func (c *Curve) Samples() []PointTangent {
	return append([]PointTangent(nil), c.pts...)
}

// Length returns the arc length of the polyline through the samples.
func (c *Curve) Length() float64 {
	var l float64
	for i := 1; i < len(c.pts); i++ {
		l += geom.Distance(c.pts[i-1].Point, c.pts[i].Point)
	}
	return l
}

// UpdateTangents recomputes every tangent from neighbouring positions:
// endpoints point along their single segment, interior samples use the
// central difference of their neighbours.
func (c *Curve) UpdateTangents() {
	n := len(c.pts)
	if n < 2 {
		for i := range c.pts {
			c.pts[i].Tangent = geom.Vec3{}
		}
		return
	}
	c.pts[0].Tangent = geom.Direction(c.pts[0].Point, c.pts[1].Point)
	c.pts[n-1].Tangent = geom.Direction(c.pts[n-2].Point, c.pts[n-1].Point)
	for i := 1; i < n-1; i++ {
		c.pts[i].Tangent = geom.Direction(c.pts[i-1].Point, c.pts[i+1].Point)
	}
}

// DeformAt moves sample index to pos. Samples between index and the curve
// ends follow with a weight proportional to their arc-length distance from
// the pinned ends. It reports false, leaving the curve untouched, when the
// index is out of range, the curve has no interior samples, or the curve is
// degenerate.
func (c *Curve) DeformAt(index int, pos geom.Vec3) bool {
	n := len(c.pts)
	if index < 0 || index >= n || n < 3 {
		return false
	}
	s := c.arcLengths()
	total := s[n-1]
	if total < geom.Epsilon {
		return false
	}
	delta := pos.Sub(c.pts[index].Point)
	si := s[index]
	for i := range c.pts {
		var w float64
		switch {
		case i == index:
			w = 1
		case i < index:
			if si > geom.Epsilon {
				w = s[i] / si
			}
		default:
			if rest := total - si; rest > geom.Epsilon {
				w = (total - s[i]) / rest
			}
		}
		c.pts[i].Point = c.pts[i].Point.Add(delta.MulScalar(w))
	}
	c.pts[index].Point = pos
	c.UpdateTangents()
	return true
}

// PseudoElasticDeform moves the front (or back) endpoint to pos and drags
// the remaining samples along. The displacement falls off with arc length
// and vanishes at the opposite endpoint. With maintainShape the falloff is
// quadratic, so samples close to the moved tip translate almost rigidly;
// otherwise it is linear. It reports false only for curves with fewer than
// two samples.
func (c *Curve) PseudoElasticDeform(front bool, pos geom.Vec3, maintainShape bool) bool {
	n := len(c.pts)
	if n < 2 {
		return false
	}
	tip := n - 1
	if front {
		tip = 0
	}
	delta := pos.Sub(c.pts[tip].Point)
	s := c.arcLengths()
	total := s[n-1]
	for i := range c.pts {
		// t runs from 0 at the moved tip to 1 at the pinned end.
		var t float64
		if total > geom.Epsilon {
			t = s[i] / total
		} else {
			t = float64(i) / float64(n-1)
		}
		if !front {
			t = 1 - t
		}
		w := 1 - t
		if maintainShape {
			w = 1 - t*t
		}
		c.pts[i].Point = c.pts[i].Point.Add(delta.MulScalar(w))
	}
	c.pts[tip].Point = pos
	c.UpdateTangents()
	return true
}

// arcLengths returns the cumulative arc length at every sample.
func (c *Curve) arcLengths() []float64 {
	s := make([]float64, len(c.pts))
	for i := 1; i < len(c.pts); i++ {
		s[i] = s[i-1] + geom.Distance(c.pts[i-1].Point, c.pts[i].Point)
	}
	return s
}

// CompactString returns one "X Y Z" line per sample.
func (c *Curve) CompactString() string {
	var sb strings.Builder
	for i, pt := range c.pts {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(geom.Compact(pt.Point))
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (c *Curve) String() string {
	parts := make([]string, len(c.pts))
	for i, pt := range c.pts {
		parts[i] = "(" + geom.Compact(pt.Point) + ")"
	}
	return "[" + strings.Join(parts, " ") + "]"
}
