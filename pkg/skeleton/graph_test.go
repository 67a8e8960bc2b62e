package skeleton

import (
	"errors"
	"testing"

	"github.com/matzehuels/skelgraph/pkg/curve"
	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/geom"
)

// mustValidate fails the test if g breaks a structural invariant.
func mustValidate(t *testing.T, g *Graph) {
	t.Helper()
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() error = %v\n%s", err, g)
	}
}

// polyline builds a curve through the given x coordinates on the x axis.
func polyline(xs ...float64) *curve.Curve {
	pts := make([]geom.Vec3, len(xs))
	for i, x := range xs {
		pts[i] = geom.V(x, 0, 0)
	}
	c, err := curve.FromPoints(pts)
	if err != nil {
		panic(err)
	}
	return c
}

// addVertices adds one vertex per position.
func addVertices(g *Graph, positions ...geom.Vec3) []VertexID {
	ids := make([]VertexID, len(positions))
	for i, p := range positions {
		ids[i] = g.AddVertex(Vertex{Position: p})
	}
	return ids
}

func mustEdge(t *testing.T, g *Graph, from, to VertexID) EdgeID {
	t.Helper()
	e, err := g.AddEdge(from, to)
	if err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	return e
}

func mustCurveEdge(t *testing.T, g *Graph, from, to VertexID, c *curve.Curve) EdgeID {
	t.Helper()
	e, err := g.AddEdgeWithCurve(from, to, c)
	if err != nil {
		t.Fatalf("AddEdgeWithCurve() error = %v", err)
	}
	return e
}

func TestAddVertex(t *testing.T) {
	g := New()
	p := geom.V(1, 2, 3)
	v := g.AddVertex(Vertex{Position: p, Radius: 2.5, InCycle: true})

	got, ok := g.Vertex(v)
	if !ok {
		t.Fatal("Vertex() ok = false, want true")
	}
	if got.Position != p {
		t.Errorf("Position = %v, want %v", got.Position, p)
	}
	if got.Radius != 2.5 {
		t.Errorf("Radius = %v, want 2.5", got.Radius)
	}
	if got.InCycle {
		t.Error("InCycle = true, want cleared on add")
	}
	if d := g.Degree(v); d != 0 {
		t.Errorf("Degree() = %d, want 0", d)
	}
	if g.VertexCount() != 1 {
		t.Errorf("VertexCount() = %d, want 1", g.VertexCount())
	}
}

func TestClampRadius(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, DefaultRadius},
		{-3, DefaultRadius},
		{0.25, 0.25},
		{MaxRadius, MaxRadius},
		{MaxRadius * 2, MaxRadius},
	}
	for _, tt := range tests {
		if got := ClampRadius(tt.in); got != tt.want {
			t.Errorf("ClampRadius(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAddEdgeUnknownVertex(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(1, 0, 0))

	if _, err := g.AddEdge(vs[0], VertexID{}); !errors.Is(err, ErrUnknownVertex) {
		t.Errorf("AddEdge(null) error = %v, want ErrUnknownVertex", err)
	}
	if !errs.Is(ErrUnknownVertex, errs.ErrCodeStaleDescriptor) {
		t.Error("ErrUnknownVertex does not carry the stale descriptor code")
	}

	g.RemoveVertex(vs[1])
	if _, err := g.AddEdge(vs[0], vs[1]); !errors.Is(err, ErrUnknownVertex) {
		t.Errorf("AddEdge(stale) error = %v, want ErrUnknownVertex", err)
	}
	if g.EdgeCount() != 0 || g.PointCount() != 0 {
		t.Errorf("failed AddEdge changed counts: edges=%d points=%d", g.EdgeCount(), g.PointCount())
	}
}

func TestAddEdgeStraightCurve(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(0, 0, 2))
	e := mustEdge(t, g, vs[0], vs[1])

	ed, _ := g.Edge(e)
	if ed.Curve.Len() != 2 {
		t.Fatalf("curve Len() = %d, want 2", ed.Curve.Len())
	}
	if ed.Curve.Front().Tangent != geom.V(0, 0, 1) {
		t.Errorf("tangent = %v, want (0,0,1)", ed.Curve.Front().Tangent)
	}
	if g.Source(e) != vs[0] || g.Target(e) != vs[1] {
		t.Errorf("endpoints = %v, %v", g.Source(e), g.Target(e))
	}
	if g.PointCount() != 2 {
		t.Errorf("PointCount() = %d, want 2", g.PointCount())
	}
	mustValidate(t, g)
}

func TestAddEdgeWithCurveTooShort(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(1, 0, 0))
	c := curve.FromSamples([]curve.PointTangent{{Point: geom.V(0, 0, 0)}})
	if _, err := g.AddEdgeWithCurve(vs[0], vs[1], c); !errors.Is(err, ErrInvalidCurve) {
		t.Errorf("AddEdgeWithCurve(1 sample) error = %v, want ErrInvalidCurve", err)
	}
}

func TestAddEdgeCycleFlag(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(1, 0, 0), geom.V(2, 0, 0))
	a, _ := g.Vertex(vs[0])
	b, _ := g.Vertex(vs[1])
	a.InCycle = true
	b.InCycle = true

	both := mustEdge(t, g, vs[0], vs[1])
	one := mustEdge(t, g, vs[1], vs[2])

	if e, _ := g.Edge(both); !e.InCycle {
		t.Error("edge between in-cycle vertices: InCycle = false, want true")
	}
	if e, _ := g.Edge(one); e.InCycle {
		t.Error("edge with one in-cycle endpoint: InCycle = true, want false")
	}
}

func TestRemoveEdgeRemovesIsolatedEndpoints(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(1, 0, 0), geom.V(2, 0, 0))
	ab := mustEdge(t, g, vs[0], vs[1])
	bc := mustEdge(t, g, vs[1], vs[2])

	rs, rt := g.RemoveEdge(ab)
	if rs != vs[0] {
		t.Errorf("removed source = %v, want %v", rs, vs[0])
	}
	if !rt.IsNil() {
		t.Errorf("removed target = %v, want nil (B still has degree 1)", rt)
	}
	if g.HasVertex(vs[0]) {
		t.Error("A still present after its only edge was removed")
	}
	if !g.HasVertex(vs[1]) {
		t.Error("B removed although it still has an edge")
	}
	mustValidate(t, g)

	// Both ends drop to degree 0, but the last vertex stays.
	rs, rt = g.RemoveEdge(bc)
	if rs != vs[1] || !rt.IsNil() {
		t.Errorf("RemoveEdge(last) = %v, %v, want %v, nil", rs, rt, vs[1])
	}
	if g.VertexCount() != 1 || !g.HasVertex(vs[2]) {
		t.Errorf("VertexCount() = %d, want C to remain", g.VertexCount())
	}
	if g.PointCount() != 0 {
		t.Errorf("PointCount() = %d, want 0", g.PointCount())
	}
	mustValidate(t, g)
}

func TestRemoveEdgeSelfLoop(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(1, 0, 0))
	loop := mustEdge(t, g, vs[0], vs[0])
	if g.Degree(vs[0]) != 2 {
		t.Errorf("Degree(self-loop) = %d, want 2", g.Degree(vs[0]))
	}
	rs, rt := g.RemoveEdge(loop)
	if rs != vs[0] || !rt.IsNil() {
		t.Errorf("RemoveEdge(loop) = %v, %v, want %v, nil", rs, rt, vs[0])
	}
	mustValidate(t, g)
}

func TestStaleHandles(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(1, 0, 0))
	g.RemoveVertex(vs[0])

	reused := g.AddVertex(Vertex{Position: geom.V(5, 5, 5)})
	if reused == vs[0] {
		t.Fatal("new vertex reuses the removed handle")
	}
	if _, ok := g.Vertex(vs[0]); ok {
		t.Error("Vertex(stale) ok = true, want false")
	}
	if g.Degree(vs[0]) != 0 {
		t.Error("Degree(stale) != 0")
	}
	if got := g.RemoveVertex(vs[0]); got != nil {
		t.Errorf("RemoveVertex(stale) = %v, want nil", got)
	}
	if got := g.RemoveVertex(VertexID{}); got != nil {
		t.Errorf("RemoveVertex(null) = %v, want nil", got)
	}
	if g.VertexCount() != 2 {
		t.Errorf("VertexCount() = %d, want 2", g.VertexCount())
	}
}

func TestRemoveVertexKeepsNeighbours(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(1, 0, 0), geom.V(2, 0, 0))
	mustEdge(t, g, vs[0], vs[1])
	mustEdge(t, g, vs[1], vs[2])

	removed := g.RemoveVertex(vs[1])
	if len(removed) != 2 {
		t.Errorf("RemoveVertex() removed %d edges, want 2", len(removed))
	}
	if g.VertexCount() != 2 || g.EdgeCount() != 0 {
		t.Errorf("counts = %d vertices, %d edges, want 2, 0", g.VertexCount(), g.EdgeCount())
	}
	mustValidate(t, g)
}

func TestClearVertex(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(1, 0, 0), geom.V(2, 0, 0))
	mustCurveEdge(t, g, vs[0], vs[1], polyline(0, 0.5, 1))
	mustEdge(t, g, vs[2], vs[1])

	removed := g.ClearVertex(vs[1])
	if len(removed) != 2 {
		t.Errorf("ClearVertex() removed %d edges, want 2", len(removed))
	}
	if !g.HasVertex(vs[1]) {
		t.Error("ClearVertex() removed the vertex")
	}
	if g.PointCount() != 0 {
		t.Errorf("PointCount() = %d, want 0", g.PointCount())
	}
	mustValidate(t, g)
}

func TestEdgesBetween(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(1, 0, 0), geom.V(2, 0, 0))
	ab := mustEdge(t, g, vs[0], vs[1])
	ba := mustEdge(t, g, vs[1], vs[0])

	got := g.EdgesBetween(vs[0], vs[1])
	if len(got) != 2 || got[0] != ba || got[1] != ab {
		t.Errorf("EdgesBetween() = %v, want [%v %v]", got, ba, ab)
	}
	if e, ok := g.EdgeBetween(vs[0], vs[1]); !ok || e != ab {
		t.Errorf("EdgeBetween(a, b) = %v, %v, want %v", e, ok, ab)
	}
	if _, ok := g.EdgeBetween(vs[0], vs[2]); ok {
		t.Error("EdgeBetween(a, c) ok = true, want false")
	}
	if o, ok := g.OppositeVertex(ab, vs[1]); !ok || o != vs[0] {
		t.Errorf("OppositeVertex() = %v, %v, want %v", o, ok, vs[0])
	}
	if _, ok := g.OppositeVertex(ab, vs[2]); ok {
		t.Error("OppositeVertex(non-endpoint) ok = true, want false")
	}
}

func TestEdgeRadius(t *testing.T) {
	g := New()
	a := g.AddVertex(Vertex{Position: geom.V(0, 0, 0), Radius: 1})
	b := g.AddVertex(Vertex{Position: geom.V(2, 0, 0), Radius: 3})
	e := mustCurveEdge(t, g, a, b, polyline(0, 1, 2))

	tests := []struct {
		segment int
		want    float64
	}{
		{0, 1.5},
		{1, 2.25},
		{2, 3},
		{9, 3},
	}
	for _, tt := range tests {
		if got := g.EdgeRadius(e, tt.segment); got != tt.want {
			t.Errorf("EdgeRadius(%d) = %v, want %v", tt.segment, got, tt.want)
		}
	}
}

func TestSetAndUpdateCurve(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(3, 0, 0))
	e := mustEdge(t, g, vs[0], vs[1])

	if err := g.SetCurve(e, polyline(0, 1, 2, 3)); err != nil {
		t.Fatalf("SetCurve() error = %v", err)
	}
	if g.PointCount() != 4 {
		t.Errorf("PointCount() = %d, want 4", g.PointCount())
	}
	if err := g.UpdateCurve(e, func(c *curve.Curve) {
		last := c.Back()
		c.PopBack()
		c.PopBack()
		c.PushBack(last)
	}); err != nil {
		t.Fatalf("UpdateCurve() error = %v", err)
	}
	if g.PointCount() != 3 {
		t.Errorf("PointCount() = %d, want 3", g.PointCount())
	}
	mustValidate(t, g)

	if err := g.SetCurve(EdgeID{}, polyline(0, 3)); !errors.Is(err, ErrUnknownEdge) {
		t.Errorf("SetCurve(null) error = %v, want ErrUnknownEdge", err)
	}
}

func TestCopy(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(2, 0, 0))
	e := mustCurveEdge(t, g, vs[0], vs[1], polyline(0, 1, 2))

	c := g.Copy()
	mustValidate(t, c)
	if c.PointCount() != g.PointCount() || c.EdgeCount() != 1 {
		t.Fatalf("Copy() counts differ")
	}

	ce, ok := c.Edge(e)
	if !ok {
		t.Fatal("handle not valid in copy")
	}
	pt := ce.Curve.At(1)
	pt.Point = geom.V(1, 5, 0)
	ce.Curve.Set(1, pt)

	if orig, _ := g.Edge(e); orig.Curve.Point(1) != geom.V(1, 0, 0) {
		t.Error("editing the copy changed the original curve")
	}

	c.RemoveEdge(e)
	if !g.HasEdge(e) {
		t.Error("removing from the copy removed from the original")
	}
}

func TestMoveAndScale(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(2, 0, 0))
	mustCurveEdge(t, g, vs[0], vs[1], polyline(0, 1, 2))

	g.MoveAndScale(geom.V(1, 0, 0), 2)
	if p := g.Position(vs[1]); p != geom.V(6, 0, 0) {
		t.Errorf("Position() = %v, want (6,0,0)", p)
	}
	mustValidate(t, g)
}

func TestPointCountStaysInSync(t *testing.T) {
	g := New()
	vs := addVertices(g, geom.V(0, 0, 0), geom.V(4, 0, 0), geom.V(4, 4, 0))
	e := mustCurveEdge(t, g, vs[0], vs[1], polyline(0, 1, 2, 3, 4))
	mustEdge(t, g, vs[1], vs[2])
	mustValidate(t, g)

	res, err := g.SplitEdgeAt(e, 2, geom.V(2.5, 0, 0))
	if err != nil {
		t.Fatalf("SplitEdgeAt() error = %v", err)
	}
	mustValidate(t, g)

	if _, err := g.CollapseEdge(res.Right, CollapseMidpoint); err != nil {
		t.Fatalf("CollapseEdge() error = %v", err)
	}
	mustValidate(t, g)

	g.RemoveVertex(vs[2])
	mustValidate(t, g)
}
