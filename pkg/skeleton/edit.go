package skeleton

import (
	"fmt"

	"github.com/matzehuels/skelgraph/pkg/curve"
	"github.com/matzehuels/skelgraph/pkg/geom"
)

// CutGap is the distance between a cut position and each of the two tips
// created by CutEdgeAt.
const CutGap = 1.0

// CollapseOption selects which endpoint survives a collapse and where it ends
// up.
type CollapseOption int

const (
	// CollapseSource keeps the source at its position.
	CollapseSource CollapseOption = iota
	// CollapseTarget keeps the target at its position.
	CollapseTarget
	// CollapseMidpoint keeps the source and moves it to the midpoint of the
	// two endpoints.
	CollapseMidpoint
)

// String implements fmt.Stringer.
func (o CollapseOption) String() string {
	switch o {
	case CollapseSource:
		return "source"
	case CollapseTarget:
		return "target"
	case CollapseMidpoint:
		return "midpoint"
	}
	return fmt.Sprintf("CollapseOption(%d)", int(o))
}

// ParseCollapseOption parses "source", "target" or "midpoint".
func ParseCollapseOption(s string) (CollapseOption, error) {
	switch s {
	case "source", "":
		return CollapseSource, nil
	case "target":
		return CollapseTarget, nil
	case "midpoint", "mid":
		return CollapseMidpoint, nil
	}
	return 0, fmt.Errorf("unknown collapse option %q (want source, target or midpoint)", s)
}

// SplitResult describes the outcome of SplitEdgeAt.
type SplitResult struct {
	Vertex VertexID // The inserted joint
	Left   EdgeID   // Old source -> Vertex
	Right  EdgeID   // Vertex -> old target
}

// CutResult describes the outcome of CutEdgeAt.
type CutResult struct {
	Left      VertexID // Tip on the source side
	Right     VertexID // Tip on the target side
	LeftEdge  EdgeID   // Old source -> Left
	RightEdge EdgeID   // Right -> old target
}

// Neighborhood is a vertex together with the edges that were detached from it.
type Neighborhood struct {
	Vertex VertexID
	Edges  []EdgeID
}

// CollapseResult describes the outcome of CollapseEdge and MergeVertices.
type CollapseResult struct {
	Kept    VertexID     // Surviving endpoint
	Removed Neighborhood // Removed endpoint and every edge detached from it
	Added   []EdgeID     // Edges rerouted onto Kept
	Dropped int          // Parallel edges between the two endpoints discarded
}

// MergeResult describes the outcome of RemoveDegree2VertexAndMergeEdges.
type MergeResult struct {
	Vertex  VertexID  // The removed degree-2 vertex
	Edge    EdgeID    // The merged edge
	Removed [2]EdgeID // The two edges it replaces
}

// Changes lists the net structural side effects of a compound edit.
type Changes struct {
	AddedVertices   []VertexID
	AddedEdges      []EdgeID
	RemovedVertices []VertexID
	RemovedEdges    []EdgeID
}

// merge folds o into c.
func (c *Changes) merge(o Changes) {
	c.AddedVertices = append(c.AddedVertices, o.AddedVertices...)
	c.AddedEdges = append(c.AddedEdges, o.AddedEdges...)
	c.RemovedVertices = append(c.RemovedVertices, o.RemovedVertices...)
	c.RemovedEdges = append(c.RemovedEdges, o.RemovedEdges...)
}

// UpdateVertexPosition moves v to pos and re-anchors every incident curve.
// Each curve is first deformed locally at its end sample; curves that cannot
// be deformed locally fall back to a whole-curve pseudo-elastic deformation.
// maintainShape is forwarded to the fallback.
func (g *Graph) UpdateVertexPosition(v VertexID, pos geom.Vec3, maintainShape bool) error {
	s := g.vslot(v)
	if s == nil {
		return ErrUnknownVertex
	}
	s.v.Position = pos

	for _, e := range s.in {
		c := g.edges[e.index].e.Curve
		if !c.DeformAt(c.Len()-1, pos) && !c.PseudoElasticDeform(false, pos, maintainShape) {
			return fmt.Errorf("%w: cannot deform curve of %v", ErrInvariant, e)
		}
	}
	for _, e := range s.out {
		c := g.edges[e.index].e.Curve
		if !c.DeformAt(0, pos) && !c.PseudoElasticDeform(true, pos, maintainShape) {
			return fmt.Errorf("%w: cannot deform curve of %v", ErrInvariant, e)
		}
	}
	return nil
}

// DeformEdge moves sample index of the curve of e to pos, dragging its
// neighbours along. The first and last samples are anchored at the
// endpoints of e, so moving one of them moves that endpoint with
// UpdateVertexPosition and re-anchors every curve incident to it. It reports
// false when the deformation is not possible.
func (g *Graph) DeformEdge(e EdgeID, index int, pos geom.Vec3) bool {
	s := g.eslot(e)
	if s == nil || index < 0 || index >= s.e.Curve.Len() {
		return false
	}
	switch index {
	case 0:
		return g.UpdateVertexPosition(s.from, pos, true) == nil
	case s.e.Curve.Len() - 1:
		return g.UpdateVertexPosition(s.to, pos, true) == nil
	}
	return s.e.Curve.DeformAt(index, pos)
}

// SplitEdgeAt inserts a new joint at pos on segment segment of e (between
// samples segment and segment+1) and replaces e with two edges meeting at the
// new joint. Junction tangents are recomputed from neighbouring samples. Both
// halves, and the new joint, inherit the cycle flag of e. The new joint's
// radius is interpolated with EdgeRadius.
func (g *Graph) SplitEdgeAt(e EdgeID, segment int, pos geom.Vec3) (SplitResult, error) {
	s := g.eslot(e)
	if s == nil {
		return SplitResult{}, ErrUnknownEdge
	}
	c := s.e.Curve
	n := c.Len()
	if segment < 0 || segment >= n-1 {
		return SplitResult{}, fmt.Errorf("%w: segment %d of a %d-sample curve", ErrSegmentOutOfRange, segment, n)
	}
	from, to, inCycle := s.from, s.to, s.e.InCycle

	first := curve.FromSamples([]curve.PointTangent{c.Front()})
	for i := 1; i <= segment; i++ {
		first.PushBack(c.At(i))
	}
	first.PushBack(curve.PointTangent{Point: pos, Tangent: geom.Direction(c.Point(segment), pos)})
	if k := first.Len(); k >= 3 {
		pt := first.At(k - 2)
		pt.Tangent = geom.Direction(first.Point(k-3), first.Point(k-1))
		first.Set(k-2, pt)
	}

	second := curve.FromSamples([]curve.PointTangent{{Point: pos, Tangent: geom.Direction(pos, c.Point(segment+1))}})
	for i := segment + 1; i < n-1; i++ {
		second.PushBack(c.At(i))
	}
	second.PushBack(c.Back())
	if second.Len() >= 3 {
		pt := second.At(1)
		pt.Tangent = geom.Direction(second.Point(0), second.Point(2))
		second.Set(1, pt)
	}

	mid := g.AddVertex(Vertex{Position: pos, Radius: g.EdgeRadius(e, segment)})
	g.vertices[mid.index].v.InCycle = inCycle

	left := g.addEdge(from, mid, first)
	right := g.addEdge(mid, to, second)
	g.edges[left.index].e.InCycle = inCycle
	g.edges[right.index].e.InCycle = inCycle

	g.RemoveEdge(e)
	return SplitResult{Vertex: mid, Left: left, Right: right}, nil
}

// CutEdgeAt opens a gap in e around pos on segment segment. Two tips are
// created CutGap units away from pos, towards the previous and the next
// sample, and the piece of curve between them is deleted.
func (g *Graph) CutEdgeAt(e EdgeID, segment int, pos geom.Vec3) (CutResult, error) {
	ed, ok := g.Edge(e)
	if !ok {
		return CutResult{}, ErrUnknownEdge
	}
	c := ed.Curve
	if segment < 0 || segment >= c.Len()-1 {
		return CutResult{}, fmt.Errorf("%w: segment %d of a %d-sample curve", ErrSegmentOutOfRange, segment, c.Len())
	}
	toPrev := geom.Direction(pos, c.Point(segment))
	toNext := geom.Direction(pos, c.Point(segment+1))
	leftPos := pos.Add(toPrev.MulScalar(CutGap))
	rightPos := pos.Add(toNext.MulScalar(CutGap))

	r1, err := g.SplitEdgeAt(e, segment, rightPos)
	if err != nil {
		return CutResult{}, err
	}
	lc, _ := g.Edge(r1.Left)
	r2, err := g.SplitEdgeAt(r1.Left, lc.Curve.Len()-2, leftPos)
	if err != nil {
		return CutResult{}, err
	}
	g.RemoveEdge(r2.Right)

	return CutResult{
		Left:      r2.Vertex,
		Right:     r1.Vertex,
		LeftEdge:  r2.Left,
		RightEdge: r1.Right,
	}, nil
}

// reanchorBack moves the last sample of c to pos, pointing the tangent along
// the final segment. On a 2-sample curve that segment is the whole curve, so
// the front tangent is recomputed too.
func reanchorBack(c *curve.Curve, pos geom.Vec3) {
	c.SetBack(curve.PointTangent{Point: pos, Tangent: geom.Direction(c.BeforeBack().Point, pos)})
	if c.Len() == 2 {
		c.UpdateTangents()
	}
}

// reanchorFront moves the first sample of c to pos, pointing the tangent along
// the first segment. 2-sample curves get both tangents recomputed.
func reanchorFront(c *curve.Curve, pos geom.Vec3) {
	c.SetFront(curve.PointTangent{Point: pos, Tangent: geom.Direction(pos, c.AfterFront().Point)})
	if c.Len() == 2 {
		c.UpdateTangents()
	}
}

type reroute struct {
	from, to VertexID
	c        *curve.Curve
	inCycle  bool
}

// CollapseEdge contracts e into one of its endpoints. The other endpoint is
// removed and its remaining edges are rerouted onto the kept vertex, with the
// near curve end re-anchored at the kept position. Edges joining the two
// endpoints other than e would become self-loops and are dropped instead;
// their number is reported in CollapseResult.Dropped. When the kept vertex
// moves (CollapseMidpoint), its own curves are re-anchored too.
func (g *Graph) CollapseEdge(e EdgeID, option CollapseOption) (CollapseResult, error) {
	s := g.eslot(e)
	if s == nil {
		return CollapseResult{}, ErrUnknownEdge
	}
	source, target := s.from, s.to
	if source == target {
		return CollapseResult{}, ErrSelfLoop
	}

	keep, drop := source, target
	if option == CollapseTarget {
		keep, drop = target, source
	}
	pos := g.Position(keep)
	if option == CollapseMidpoint {
		pos = geom.Midpoint(g.Position(source), g.Position(target))
	}

	var pending []reroute
	dropped := 0
	for _, id := range g.IncidentEdges(drop) {
		if id == e {
			continue
		}
		es := g.edges[id.index]
		switch {
		case es.from == drop && es.to == drop:
			c := es.e.Curve.Clone()
			reanchorFront(c, pos)
			reanchorBack(c, pos)
			pending = append(pending, reroute{keep, keep, c, es.e.InCycle})
		case es.from == keep || es.to == keep:
			dropped++
		case es.to == drop:
			c := es.e.Curve.Clone()
			reanchorBack(c, pos)
			pending = append(pending, reroute{es.from, keep, c, es.e.InCycle})
		default:
			c := es.e.Curve.Clone()
			reanchorFront(c, pos)
			pending = append(pending, reroute{keep, es.to, c, es.e.InCycle})
		}
	}

	removed := Neighborhood{Vertex: drop, Edges: g.ClearVertex(drop)}
	g.freeVertex(drop)

	ks := g.vslot(keep)
	if ks.v.Position != pos {
		ks.v.Position = pos
		for _, id := range ks.in {
			reanchorBack(g.edges[id.index].e.Curve, pos)
		}
		for _, id := range ks.out {
			reanchorFront(g.edges[id.index].e.Curve, pos)
		}
	}

	added := make([]EdgeID, 0, len(pending))
	for _, r := range pending {
		id := g.addEdge(r.from, r.to, r.c)
		g.edges[id.index].e.InCycle = r.inCycle
		added = append(added, id)
	}

	return CollapseResult{Kept: keep, Removed: removed, Added: added, Dropped: dropped}, nil
}

// MergeVertices joins v1 and v2 with a synthetic edge and collapses it with
// the given option. The vertex that does not survive is removed.
func (g *Graph) MergeVertices(v1, v2 VertexID, option CollapseOption) (CollapseResult, error) {
	if v1 == v2 {
		return CollapseResult{}, ErrSelfMerge
	}
	e, err := g.AddEdge(v1, v2)
	if err != nil {
		return CollapseResult{}, fmt.Errorf("merge vertices: %w", err)
	}
	res, err := g.CollapseEdge(e, option)
	if err != nil {
		g.detach(e)
		return CollapseResult{}, fmt.Errorf("merge vertices: %w", err)
	}
	return res, nil
}

// RemoveDegree2VertexAndMergeEdges removes v, which must have degree
// exactly 2, and splices its two curves into one edge between its
// neighbours. The splice depends on the edge directions:
//
//	a -> v -> b   curve(a,v) + curve(v,b)
//	a -> v <- b   curve(a,v) + reversed curve(b,v)
//	a <- v -> b   reversed curve(v,a) + curve(v,b)
//
// The junction tangent is recomputed. A self-loop on v is reported as an
// invariant violation.
func (g *Graph) RemoveDegree2VertexAndMergeEdges(v VertexID) (MergeResult, error) {
	s := g.vslot(v)
	if s == nil {
		return MergeResult{}, ErrUnknownVertex
	}
	if d := len(s.in) + len(s.out); d != 2 {
		return MergeResult{}, fmt.Errorf("%w: %v has degree %d", ErrNotDegree2, v, d)
	}

	var merged *curve.Curve
	var from, to VertexID
	var e1, e2 EdgeID
	switch {
	case len(s.in) == 1 && len(s.out) == 1:
		e1, e2 = s.in[0], s.out[0]
		if e1 == e2 {
			return MergeResult{}, fmt.Errorf("%w: degree-2 vertex %v carries a self-loop", ErrInvariant, v)
		}
		in, out := g.edges[e1.index], g.edges[e2.index]
		merged = in.e.Curve.Clone()
		junction := merged.Back()
		junction.Tangent = geom.Direction(junction.Point, out.e.Curve.Point(1))
		merged.SetBack(junction)
		merged.Append(out.e.Curve, 1, false)
		from, to = in.from, out.to

	case len(s.in) == 2:
		e1, e2 = s.in[0], s.in[1]
		a, b := g.edges[e1.index], g.edges[e2.index]
		merged = a.e.Curve.Clone()
		junction := merged.Back()
		junction.Tangent = geom.Direction(junction.Point, b.e.Curve.BeforeBack().Point)
		merged.SetBack(junction)
		merged.Append(b.e.Curve, 1, true)
		from, to = a.from, b.from

	case len(s.out) == 2:
		e1, e2 = s.out[0], s.out[1]
		a, b := g.edges[e1.index], g.edges[e2.index]
		merged = a.e.Curve.Reversed()
		junction := merged.Back()
		junction.Tangent = geom.Direction(junction.Point, b.e.Curve.Point(1))
		merged.SetBack(junction)
		merged.Append(b.e.Curve, 1, false)
		from, to = a.to, b.to

	default:
		return MergeResult{}, fmt.Errorf("%w: unexpected edge configuration at %v", ErrInvariant, v)
	}

	inCycle := g.edges[e1.index].e.InCycle || g.edges[e2.index].e.InCycle
	ne := g.addEdge(from, to, merged)
	g.edges[ne.index].e.InCycle = inCycle

	removed := g.RemoveVertex(v)
	if len(removed) != 2 {
		return MergeResult{}, fmt.Errorf("%w: removing %v detached %d edges", ErrInvariant, v, len(removed))
	}
	return MergeResult{Vertex: v, Edge: ne, Removed: [2]EdgeID{removed[0], removed[1]}}, nil
}

// mergeable reports whether v has degree 2 through two distinct edges. The
// last joint of a closed ring carries a single self-loop and is not
// mergeable.
func (g *Graph) mergeable(v VertexID) bool {
	return g.Degree(v) == 2 && len(g.IncidentEdges(v)) == 2
}

// RemoveVerticesOfDegree2AndMergeEdges applies
// RemoveDegree2VertexAndMergeEdges to every candidate that is still live and
// joined to the rest of the graph by two distinct edges when its turn comes.
// A ring of degree-2 vertices therefore shrinks to one vertex with a
// self-loop. Edges created and then consumed by a later merge in the same
// batch are reported in neither list. An invariant violation stops the batch
// and is returned with the changes so far.
func (g *Graph) RemoveVerticesOfDegree2AndMergeEdges(candidates []VertexID) (Changes, error) {
	var ch Changes
	added := map[EdgeID]bool{}
	var order []EdgeID

	for _, v := range candidates {
		if !g.mergeable(v) {
			continue
		}
		res, err := g.RemoveDegree2VertexAndMergeEdges(v)
		if err != nil {
			return ch.finish(order, added), err
		}
		for _, r := range res.Removed {
			if added[r] {
				delete(added, r)
			} else {
				ch.RemovedEdges = append(ch.RemovedEdges, r)
			}
		}
		ch.RemovedVertices = append(ch.RemovedVertices, v)
		added[res.Edge] = true
		order = append(order, res.Edge)
	}
	return ch.finish(order, added), nil
}

func (c Changes) finish(order []EdgeID, live map[EdgeID]bool) Changes {
	for _, e := range order {
		if live[e] {
			c.AddedEdges = append(c.AddedEdges, e)
		}
	}
	return c
}
