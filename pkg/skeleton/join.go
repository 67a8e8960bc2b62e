package skeleton

import (
	"fmt"

	"github.com/matzehuels/skelgraph/pkg/curve"
	"github.com/matzehuels/skelgraph/pkg/geom"
)

// VertexPair names the source and target of an edge to create.
type VertexPair struct {
	Source VertexID
	Target VertexID
}

// PathCurve concatenates the curves of the edges joining consecutive
// vertices of path, reversing those that run against the path. Between two
// vertices the first edge in the path direction is preferred.
func (g *Graph) PathCurve(path []VertexID) (*curve.Curve, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("path needs at least 2 vertices, got %d", len(path))
	}
	var out *curve.Curve
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		e, ok := g.EdgeBetween(a, b)
		if !ok {
			if e, ok = g.EdgeBetween(b, a); !ok {
				return nil, fmt.Errorf("%w: %v and %v", ErrNotAdjacent, a, b)
			}
		}
		ec := g.edges[e.index]
		reverse := ec.to == a && ec.from != a
		if out == nil {
			out = ec.e.Curve.Clone()
			if reverse {
				out = out.Reversed()
			}
			continue
		}
		out.Append(ec.e.Curve, 1, reverse)
	}
	return out, nil
}

// adjoining holds the curve pieces found for one requested vertex pair.
type adjoining struct {
	start, end    *curve.Curve
	reverseMiddle bool
	consumed      []EdgeID
}

// SplitEdgeAlongCurve replaces e and the edges adjoining it with one new edge
// per requested pair. Each new edge runs from the pair's source to its
// target, through e: the curve of the edge joining the source to an endpoint
// of e, then the curve of e (reversed if needed and deformed to meet its
// neighbours), then the curve of the edge joining the other endpoint of e to
// the target.
//
// Both vertices of every pair must adjoin e through another edge; otherwise
// ErrNotAdjacent is returned and the graph is left untouched. The consumed
// adjoining edges and e are removed, together with any vertex those removals
// leave isolated.
func (g *Graph) SplitEdgeAlongCurve(e EdgeID, pairs []VertexPair) (Changes, error) {
	es := g.eslot(e)
	if es == nil {
		return Changes{}, ErrUnknownEdge
	}
	s, t := es.from, es.to
	middleCurve := es.e.Curve

	found := make([]adjoining, len(pairs))
	for i, p := range pairs {
		a := &found[i]
		scan := func(end VertexID, atSource bool) {
			for _, id := range g.InEdges(end) {
				if id == e {
					continue
				}
				ec := g.edges[id.index]
				switch ec.from {
				case p.Source:
					a.start = ec.e.Curve.Clone()
					a.reverseMiddle = !atSource
					a.consumed = append(a.consumed, id)
				case p.Target:
					a.end = ec.e.Curve.Reversed()
					a.reverseMiddle = atSource
					a.consumed = append(a.consumed, id)
				}
			}
			for _, id := range g.OutEdges(end) {
				if id == e {
					continue
				}
				ec := g.edges[id.index]
				switch ec.to {
				case p.Source:
					a.start = ec.e.Curve.Reversed()
					a.reverseMiddle = !atSource
					a.consumed = append(a.consumed, id)
				case p.Target:
					a.end = ec.e.Curve.Clone()
					a.reverseMiddle = atSource
					a.consumed = append(a.consumed, id)
				}
			}
		}
		scan(s, true)
		scan(t, false)

		if a.start == nil || a.end == nil {
			return Changes{}, fmt.Errorf("%w: pair %v -> %v does not adjoin %v", ErrNotAdjacent, p.Source, p.Target, e)
		}
	}

	var ch Changes
	for i, p := range pairs {
		a := found[i]
		stitched := a.start
		stitched.PopBack()

		middle := middleCurve.Clone()
		if a.reverseMiddle {
			middle = middle.Reversed()
		}
		middle.PseudoElasticDeform(true, stitched.Back().Point, true)
		middle.PseudoElasticDeform(false, a.end.Point(1), true)
		middle.PopBack()

		stitched.Append(middle, 1, false)
		stitched.Append(a.end, 1, false)
		stitched.UpdateTangents()

		id, err := g.AddEdgeWithCurve(p.Source, p.Target, stitched)
		if err != nil {
			return ch, fmt.Errorf("split along curve: %w", err)
		}
		ch.AddedEdges = append(ch.AddedEdges, id)
	}

	seen := map[EdgeID]bool{}
	var toRemove []EdgeID
	for _, a := range found {
		for _, id := range a.consumed {
			if !seen[id] {
				seen[id] = true
				toRemove = append(toRemove, id)
			}
		}
	}
	toRemove = append(toRemove, e)

	for _, id := range toRemove {
		if !g.HasEdge(id) {
			continue
		}
		rs, rt := g.RemoveEdge(id)
		ch.RemovedEdges = append(ch.RemovedEdges, id)
		for _, v := range []VertexID{rs, rt} {
			if !v.IsNil() {
				ch.RemovedVertices = append(ch.RemovedVertices, v)
			}
		}
	}
	return ch, nil
}

// trimBack walks displacement arc-length units back from the end of c,
// dropping samples it passes (keeping at least two), and returns the point
// reached.
func trimBack(c *curve.Curve, displacement float64) geom.Vec3 {
	junction := c.Back().Point
	walked := 0.0
	for c.Len() > 2 && walked < displacement {
		seg := geom.Distance(c.BeforeBack().Point, c.Back().Point)
		step := min(seg, displacement-walked)
		junction = junction.Add(geom.Direction(c.Back().Point, c.BeforeBack().Point).MulScalar(step))
		walked += seg
		c.PopBack()
	}
	return junction
}

// trimFront is trimBack for the start of c.
func trimFront(c *curve.Curve, displacement float64) geom.Vec3 {
	junction := c.Front().Point
	walked := 0.0
	index := 0
	for index < c.Len()-2 && walked < displacement {
		seg := geom.Distance(c.Point(index), c.Point(index+1))
		step := min(seg, displacement-walked)
		junction = junction.Add(geom.Direction(c.Point(index), c.Point(index+1)).MulScalar(step))
		walked += seg
		index++
	}
	c.TrimFront(index)
	return junction
}

// SplitPath joins edges a and b into a single new edge that follows the
// shortest path between their closest endpoints.
//
// The new edge runs from the far endpoint of a to the far endpoint of b. Its
// curve is the curve of a with displacement arc-length units trimmed off the
// near end, then the curve of the connecting path, then the curve of b
// trimmed the same way. a and b are removed, and every vertex of the
// connecting path left at degree 2 is dissolved with
// RemoveVerticesOfDegree2AndMergeEdges.
func (g *Graph) SplitPath(a, b EdgeID, displacement float64) (Changes, error) {
	if a == b {
		return Changes{}, ErrSelfJoin
	}
	if !g.HasEdge(a) || !g.HasEdge(b) {
		return Changes{}, ErrUnknownEdge
	}
	path, pair, err := g.closestEndpoints(a, b)
	if err != nil {
		return Changes{}, fmt.Errorf("split path: %w", err)
	}

	as, at := g.Endpoints(a)
	bs, bt := g.Endpoints(b)
	ac := g.edges[a.index].e.Curve
	bc := g.edges[b.index].e.Curve

	var start, end *curve.Curve
	var from, to VertexID
	switch pair {
	case pairSourceSource:
		start, end, from, to = ac.Reversed(), bc.Clone(), at, bt
	case pairSourceTarget:
		start, end, from, to = ac.Reversed(), bc.Reversed(), at, bs
	case pairTargetSource:
		start, end, from, to = ac.Clone(), bc.Clone(), as, bt
	case pairTargetTarget:
		start, end, from, to = ac.Clone(), bc.Reversed(), as, bs
	}

	var middle *curve.Curve
	if len(path) > 1 {
		if middle, err = g.PathCurve(path); err != nil {
			return Changes{}, fmt.Errorf("split path: %w", err)
		}
	}

	j1 := trimBack(start, displacement)
	start.PseudoElasticDeform(false, j1, true)
	j2 := trimFront(end, displacement)
	end.PseudoElasticDeform(true, j2, true)

	if middle != nil && middle.Len() > 2 {
		middle.PseudoElasticDeform(true, j1, true)
		middle.PseudoElasticDeform(false, j2, true)
		start.Append(middle, 1, false)
		start.PopBack()
	}
	start.Append(end, 0, false)
	start.UpdateTangents()

	joined, err := g.AddEdgeWithCurve(from, to, start)
	if err != nil {
		return Changes{}, fmt.Errorf("split path: %w", err)
	}

	ch := Changes{AddedEdges: []EdgeID{joined}}
	for _, id := range []EdgeID{a, b} {
		rs, rt := g.RemoveEdge(id)
		ch.RemovedEdges = append(ch.RemovedEdges, id)
		for _, v := range []VertexID{rs, rt} {
			if !v.IsNil() {
				ch.RemovedVertices = append(ch.RemovedVertices, v)
			}
		}
	}

	merged, err := g.RemoveVerticesOfDegree2AndMergeEdges(path)
	ch.merge(merged)
	if err != nil {
		return ch, fmt.Errorf("split path: %w", err)
	}
	return ch, nil
}
