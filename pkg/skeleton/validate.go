package skeleton

import (
	"fmt"
	"strings"

	"github.com/matzehuels/skelgraph/pkg/geom"
)

// AnchorTolerance is the largest distance accepted by Validate between a
// curve end and the vertex it is anchored to.
const AnchorTolerance = 1e-6

// Validate checks the structural invariants of g: adjacency lists agree
// with edge endpoints, every curve has at least two samples, curve ends sit
// on their vertices, and the running counters match the stored entities.
// Violations are reported as ErrInvariant.
func (g *Graph) Validate() error {
	nv, ne, points := 0, 0, 0
	for i, s := range g.vertices {
		if !s.live {
			continue
		}
		nv++
		v := VertexID{index: uint32(i), gen: s.gen}
		for _, e := range s.in {
			if es := g.eslot(e); es == nil || es.to != v {
				return fmt.Errorf("%w: in-edge %v of %v is not anchored there", ErrInvariant, e, v)
			}
		}
		for _, e := range s.out {
			if es := g.eslot(e); es == nil || es.from != v {
				return fmt.Errorf("%w: out-edge %v of %v is not anchored there", ErrInvariant, e, v)
			}
		}
	}

	for i, s := range g.edges {
		if !s.live {
			continue
		}
		ne++
		e := EdgeID{index: uint32(i), gen: s.gen}
		fs, ts := g.vslot(s.from), g.vslot(s.to)
		if fs == nil || ts == nil {
			return fmt.Errorf("%w: %v has a dangling endpoint", ErrInvariant, e)
		}
		c := s.e.Curve
		if c == nil || c.Len() < 2 {
			return fmt.Errorf("%w: %v has a curve with fewer than two samples", ErrInvariant, e)
		}
		points += c.Len()
		if !geom.ApproxEqual(c.Front().Point, fs.v.Position, AnchorTolerance) {
			return fmt.Errorf("%w: curve of %v starts at %s, source is at %s",
				ErrInvariant, e, geom.Compact(c.Front().Point), geom.Compact(fs.v.Position))
		}
		if !geom.ApproxEqual(c.Back().Point, ts.v.Position, AnchorTolerance) {
			return fmt.Errorf("%w: curve of %v ends at %s, target is at %s",
				ErrInvariant, e, geom.Compact(c.Back().Point), geom.Compact(ts.v.Position))
		}
	}

	switch {
	case nv != g.nv:
		return fmt.Errorf("%w: vertex count %d, found %d", ErrInvariant, g.nv, nv)
	case ne != g.ne:
		return fmt.Errorf("%w: edge count %d, found %d", ErrInvariant, g.ne, ne)
	case points != g.points:
		return fmt.Errorf("%w: point count %d, curves hold %d", ErrInvariant, g.points, points)
	}
	return nil
}

// String returns a multi-line human-readable dump of g.
func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "skeleton: %d vertices, %d edges, %d points\n", g.nv, g.ne, g.points)
	sb.WriteString("vertices:\n")
	index := make(map[VertexID]int, g.nv)
	for i, v := range g.Vertices() {
		index[v] = i
		s := g.vertices[v.index]
		fmt.Fprintf(&sb, "  %d: (%s) radius=%g cycle=%t degree=%d\n",
			i, geom.Compact(s.v.Position), s.v.Radius, s.v.InCycle, len(s.in)+len(s.out))
	}
	sb.WriteString("edges:\n")
	for i, e := range g.Edges() {
		s := g.edges[e.index]
		fmt.Fprintf(&sb, "  %d: %d -> %d cycle=%t %s\n",
			i, index[s.from], index[s.to], s.e.InCycle, s.e.Curve)
	}
	return sb.String()
}
