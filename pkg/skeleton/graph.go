package skeleton

import (
	"fmt"

	"github.com/matzehuels/skelgraph/pkg/curve"
	"github.com/matzehuels/skelgraph/pkg/geom"
)

const (
	// DefaultRadius is assigned to vertices added with a non-positive radius.
	DefaultRadius = 1.0
	// MaxRadius caps vertex radii. Larger values are clamped.
	MaxRadius = 10000.0
)

// VertexID identifies a vertex. The zero value is the null handle.
type VertexID struct {
	index uint32
	gen   uint32
}

// IsNil reports whether v is the null handle.
func (v VertexID) IsNil() bool { return v.gen == 0 }

// String implements fmt.Stringer.
func (v VertexID) String() string {
	if v.IsNil() {
		return "v<nil>"
	}
	return fmt.Sprintf("v%d.%d", v.index, v.gen)
}

// EdgeID identifies an edge. The zero value is the null handle.
type EdgeID struct {
	index uint32
	gen   uint32
}

// IsNil reports whether e is the null handle.
func (e EdgeID) IsNil() bool { return e.gen == 0 }

// String implements fmt.Stringer.
func (e EdgeID) String() string {
	if e.IsNil() {
		return "e<nil>"
	}
	return fmt.Sprintf("e%d.%d", e.index, e.gen)
}

// Vertex is a joint of the skeleton.
type Vertex struct {
	Position geom.Vec3
	Radius   float64 // Local thickness; see DefaultRadius and MaxRadius
	InCycle  bool    // Set by FindCycles
}

// Edge is a curve connecting two joints. The edge owns its curve.
//
// Operations that change the number of curve samples must go through
// [Graph.SetCurve] or [Graph.UpdateCurve] so the graph's point count stays in
// sync. Moving samples in place is fine.
type Edge struct {
	Curve   *curve.Curve
	InCycle bool // Set by FindCycles
}

type vertexSlot struct {
	gen  uint32
	live bool
	v    Vertex
	in   []EdgeID
	out  []EdgeID
}

type edgeSlot struct {
	gen      uint32
	live     bool
	e        Edge
	from, to VertexID
}

// Graph is a directed multigraph of joints and curves.
//
// The zero value is not usable - use New to create a graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	vertices []*vertexSlot
	edges    []*edgeSlot
	freeV    []uint32
	freeE    []uint32
	nv, ne   int
	points   int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// ClampRadius maps r to the accepted radius range: non-positive values become
// DefaultRadius and values above MaxRadius are capped.
func ClampRadius(r float64) float64 {
	if !(r > 0) {
		return DefaultRadius
	}
	if r > MaxRadius {
		return MaxRadius
	}
	return r
}

func (g *Graph) vslot(v VertexID) *vertexSlot {
	if v.IsNil() || int(v.index) >= len(g.vertices) {
		return nil
	}
	s := g.vertices[v.index]
	if !s.live || s.gen != v.gen {
		return nil
	}
	return s
}

func (g *Graph) eslot(e EdgeID) *edgeSlot {
	if e.IsNil() || int(e.index) >= len(g.edges) {
		return nil
	}
	s := g.edges[e.index]
	if !s.live || s.gen != e.gen {
		return nil
	}
	return s
}

// AddVertex adds a joint and returns its handle. The radius is clamped with
// ClampRadius and the cycle flag starts cleared.
func (g *Graph) AddVertex(v Vertex) VertexID {
	v.Radius = ClampRadius(v.Radius)
	v.InCycle = false

	var idx uint32
	var s *vertexSlot
	if n := len(g.freeV); n > 0 {
		idx = g.freeV[n-1]
		g.freeV = g.freeV[:n-1]
		s = g.vertices[idx]
	} else {
		idx = uint32(len(g.vertices))
		s = &vertexSlot{}
		g.vertices = append(g.vertices, s)
	}
	s.gen++
	s.live = true
	s.v = v
	s.in, s.out = nil, nil
	g.nv++
	return VertexID{index: idx, gen: s.gen}
}

// Vertex returns the vertex for v. The pointer stays valid until v is
// removed and may be used to edit the radius or cycle flag. Positions should
// be changed with UpdateVertexPosition so incident curves follow.
func (g *Graph) Vertex(v VertexID) (*Vertex, bool) {
	s := g.vslot(v)
	if s == nil {
		return nil, false
	}
	return &s.v, true
}

// HasVertex reports whether v refers to a live vertex.
func (g *Graph) HasVertex(v VertexID) bool { return g.vslot(v) != nil }

// Position returns the position of v, or the zero vector for unknown handles.
func (g *Graph) Position(v VertexID) geom.Vec3 {
	if s := g.vslot(v); s != nil {
		return s.v.Position
	}
	return geom.Vec3{}
}

// AddEdge connects from and to with a straight two-sample curve.
// It returns ErrUnknownVertex if either endpoint is null or removed.
func (g *Graph) AddEdge(from, to VertexID) (EdgeID, error) {
	fs, ts := g.vslot(from), g.vslot(to)
	if fs == nil || ts == nil {
		return EdgeID{}, ErrUnknownVertex
	}
	return g.addEdge(from, to, curve.New(fs.v.Position, ts.v.Position)), nil
}

// AddEdgeWithCurve connects from and to with c. The graph takes ownership of
// c. A nil curve is replaced by a straight one.
func (g *Graph) AddEdgeWithCurve(from, to VertexID, c *curve.Curve) (EdgeID, error) {
	fs, ts := g.vslot(from), g.vslot(to)
	if fs == nil || ts == nil {
		return EdgeID{}, ErrUnknownVertex
	}
	if c == nil {
		c = curve.New(fs.v.Position, ts.v.Position)
	}
	if c.Len() < 2 {
		return EdgeID{}, ErrInvalidCurve
	}
	return g.addEdge(from, to, c), nil
}

func (g *Graph) addEdge(from, to VertexID, c *curve.Curve) EdgeID {
	fs, ts := g.vslot(from), g.vslot(to)

	var idx uint32
	var s *edgeSlot
	if n := len(g.freeE); n > 0 {
		idx = g.freeE[n-1]
		g.freeE = g.freeE[:n-1]
		s = g.edges[idx]
	} else {
		idx = uint32(len(g.edges))
		s = &edgeSlot{}
		g.edges = append(g.edges, s)
	}
	s.gen++
	s.live = true
	s.from, s.to = from, to
	s.e = Edge{Curve: c, InCycle: fs.v.InCycle && ts.v.InCycle}

	id := EdgeID{index: idx, gen: s.gen}
	fs.out = append(fs.out, id)
	ts.in = append(ts.in, id)
	g.ne++
	g.points += c.Len()
	return id
}

// detach unlinks and frees an edge without touching its endpoints.
func (g *Graph) detach(e EdgeID) {
	s := g.eslot(e)
	if s == nil {
		return
	}
	if fs := g.vslot(s.from); fs != nil {
		fs.out = without(fs.out, e)
	}
	if ts := g.vslot(s.to); ts != nil {
		ts.in = without(ts.in, e)
	}
	g.points -= s.e.Curve.Len()
	s.live = false
	s.e = Edge{}
	g.freeE = append(g.freeE, e.index)
	g.ne--
}

func without(ids []EdgeID, e EdgeID) []EdgeID {
	for i, id := range ids {
		if id == e {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// RemoveEdge removes e. Each endpoint left at degree 0 is removed as well,
// unless it is the last vertex of the graph; removed endpoints are returned
// (null handles otherwise). Unknown handles are ignored.
func (g *Graph) RemoveEdge(e EdgeID) (VertexID, VertexID) {
	s := g.eslot(e)
	if s == nil {
		return VertexID{}, VertexID{}
	}
	from, to := s.from, s.to
	g.detach(e)

	var rs, rt VertexID
	if g.Degree(from) == 0 && g.nv > 1 {
		g.freeVertex(from)
		rs = from
	}
	if to != from && g.Degree(to) == 0 && g.nv > 1 {
		g.freeVertex(to)
		rt = to
	}
	return rs, rt
}

// ClearVertex detaches and removes every edge incident to v but keeps v.
// It returns the removed edges. Neighbours are never removed.
func (g *Graph) ClearVertex(v VertexID) []EdgeID {
	edges := g.IncidentEdges(v)
	for _, e := range edges {
		g.detach(e)
	}
	return edges
}

// RemoveVertex removes every edge incident to v, then v itself, and returns
// the removed edges. It is a no-op for null or removed handles.
func (g *Graph) RemoveVertex(v VertexID) []EdgeID {
	if g.vslot(v) == nil {
		return nil
	}
	edges := g.ClearVertex(v)
	g.freeVertex(v)
	return edges
}

func (g *Graph) freeVertex(v VertexID) {
	s := g.vslot(v)
	if s == nil {
		return
	}
	s.live = false
	s.v = Vertex{}
	s.in, s.out = nil, nil
	g.freeV = append(g.freeV, v.index)
	g.nv--
}

// Edge returns the edge for e. The pointer stays valid until e is removed.
func (g *Graph) Edge(e EdgeID) (*Edge, bool) {
	s := g.eslot(e)
	if s == nil {
		return nil, false
	}
	return &s.e, true
}

// HasEdge reports whether e refers to a live edge.
func (g *Graph) HasEdge(e EdgeID) bool { return g.eslot(e) != nil }

// Source returns the source vertex of e, or the null handle.
func (g *Graph) Source(e EdgeID) VertexID {
	if s := g.eslot(e); s != nil {
		return s.from
	}
	return VertexID{}
}

// Target returns the target vertex of e, or the null handle.
func (g *Graph) Target(e EdgeID) VertexID {
	if s := g.eslot(e); s != nil {
		return s.to
	}
	return VertexID{}
}

// Endpoints returns the source and target of e.
func (g *Graph) Endpoints(e EdgeID) (VertexID, VertexID) {
	if s := g.eslot(e); s != nil {
		return s.from, s.to
	}
	return VertexID{}, VertexID{}
}

// OppositeVertex returns the endpoint of e that is not v. For self-loops it
// returns v. The boolean is false if v is not an endpoint of e.
func (g *Graph) OppositeVertex(e EdgeID, v VertexID) (VertexID, bool) {
	s := g.eslot(e)
	switch {
	case s == nil:
		return VertexID{}, false
	case s.from == v:
		return s.to, true
	case s.to == v:
		return s.from, true
	}
	return VertexID{}, false
}

// InEdges returns the edges ending at v.
func (g *Graph) InEdges(v VertexID) []EdgeID {
	if s := g.vslot(v); s != nil {
		return append([]EdgeID(nil), s.in...)
	}
	return nil
}

// OutEdges returns the edges starting at v.
func (g *Graph) OutEdges(v VertexID) []EdgeID {
	if s := g.vslot(v); s != nil {
		return append([]EdgeID(nil), s.out...)
	}
	return nil
}

// IncidentEdges returns the in-edges of v followed by its out-edges. A
// self-loop is listed once.
func (g *Graph) IncidentEdges(v VertexID) []EdgeID {
	s := g.vslot(v)
	if s == nil {
		return nil
	}
	out := make([]EdgeID, 0, len(s.in)+len(s.out))
	out = append(out, s.in...)
	for _, e := range s.out {
		if g.edges[e.index].to != v {
			out = append(out, e)
		}
	}
	return out
}

// Degree returns the in-degree plus the out-degree of v. A self-loop counts
// twice.
func (g *Graph) Degree(v VertexID) int {
	if s := g.vslot(v); s != nil {
		return len(s.in) + len(s.out)
	}
	return 0
}

// InDegree returns the number of edges ending at v.
func (g *Graph) InDegree(v VertexID) int {
	if s := g.vslot(v); s != nil {
		return len(s.in)
	}
	return 0
}

// OutDegree returns the number of edges starting at v.
func (g *Graph) OutDegree(v VertexID) int {
	if s := g.vslot(v); s != nil {
		return len(s.out)
	}
	return 0
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return g.nv }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.ne }

// PointCount returns the total number of curve samples over all edges.
func (g *Graph) PointCount() int { return g.points }

// Vertices returns the live vertex handles in slot order.
func (g *Graph) Vertices() []VertexID {
	out := make([]VertexID, 0, g.nv)
	for i, s := range g.vertices {
		if s.live {
			out = append(out, VertexID{index: uint32(i), gen: s.gen})
		}
	}
	return out
}

// Edges returns the live edge handles in slot order.
func (g *Graph) Edges() []EdgeID {
	out := make([]EdgeID, 0, g.ne)
	for i, s := range g.edges {
		if s.live {
			out = append(out, EdgeID{index: uint32(i), gen: s.gen})
		}
	}
	return out
}

// EdgeBetween returns the first edge from -> to.
func (g *Graph) EdgeBetween(from, to VertexID) (EdgeID, bool) {
	s := g.vslot(from)
	if s == nil {
		return EdgeID{}, false
	}
	for _, e := range s.out {
		if g.edges[e.index].to == to {
			return e, true
		}
	}
	return EdgeID{}, false
}

// EdgesBetween returns every edge joining a and b in either direction:
// the b -> a edges first, then a -> b.
func (g *Graph) EdgesBetween(a, b VertexID) []EdgeID {
	s := g.vslot(a)
	if s == nil || g.vslot(b) == nil {
		return nil
	}
	var out []EdgeID
	for _, e := range s.in {
		if g.edges[e.index].from == b {
			out = append(out, e)
		}
	}
	for _, e := range s.out {
		if g.edges[e.index].to == b && a != b {
			out = append(out, e)
		}
	}
	return out
}

// SetCurve replaces the curve of e and keeps the point count in sync.
func (g *Graph) SetCurve(e EdgeID, c *curve.Curve) error {
	s := g.eslot(e)
	if s == nil {
		return ErrUnknownEdge
	}
	if c == nil || c.Len() < 2 {
		return ErrInvalidCurve
	}
	g.points += c.Len() - s.e.Curve.Len()
	s.e.Curve = c
	return nil
}

// UpdateCurve calls fn with the curve of e and then resynchronizes the point
// count. fn may add or remove samples.
func (g *Graph) UpdateCurve(e EdgeID, fn func(c *curve.Curve)) error {
	s := g.eslot(e)
	if s == nil {
		return ErrUnknownEdge
	}
	before := s.e.Curve.Len()
	fn(s.e.Curve)
	g.points += s.e.Curve.Len() - before
	return nil
}

// IsSimpleEdge reports whether the curve of e has no interior samples.
func (g *Graph) IsSimpleEdge(e EdgeID) bool {
	s := g.eslot(e)
	return s != nil && s.e.Curve.Len() <= 2
}

// EdgeRadius interpolates a radius along e for the given segment. The value
// blends from the harmonic mean of the endpoint radii at the source to the
// target radius at the target.
func (g *Graph) EdgeRadius(e EdgeID, segment int) float64 {
	s := g.eslot(e)
	if s == nil {
		return DefaultRadius
	}
	r1 := g.vertices[s.from.index].v.Radius
	r2 := g.vertices[s.to.index].v.Radius
	rStart := 2 * r1 * r2 / (r1 + r2)
	rEnd := r2

	n := s.e.Curve.Len()
	if n < 2 {
		return rEnd
	}
	segment = max(0, min(segment, n-1))
	t := float64(segment) / float64(n-1)
	return (1-t)*(rStart-rEnd) + rEnd
}

// MoveAndScale translates every vertex and curve sample by displacement and
// then scales it by factor around the origin.
func (g *Graph) MoveAndScale(displacement geom.Vec3, factor float64) {
	tr := func(p geom.Vec3) geom.Vec3 { return p.Add(displacement).MulScalar(factor) }
	for _, s := range g.vertices {
		if s.live {
			s.v.Position = tr(s.v.Position)
		}
	}
	for _, s := range g.edges {
		if !s.live {
			continue
		}
		c := s.e.Curve
		for i := 0; i < c.Len(); i++ {
			pt := c.At(i)
			pt.Point = tr(pt.Point)
			c.Set(i, pt)
		}
		c.UpdateTangents()
	}
}

// Copy returns a deep copy of g. Handles valid in g are valid in the copy
// and refer to the corresponding entities.
func (g *Graph) Copy() *Graph {
	c := &Graph{
		vertices: make([]*vertexSlot, len(g.vertices)),
		edges:    make([]*edgeSlot, len(g.edges)),
		freeV:    append([]uint32(nil), g.freeV...),
		freeE:    append([]uint32(nil), g.freeE...),
		nv:       g.nv,
		ne:       g.ne,
		points:   g.points,
	}
	for i, s := range g.vertices {
		cs := *s
		cs.in = append([]EdgeID(nil), s.in...)
		cs.out = append([]EdgeID(nil), s.out...)
		c.vertices[i] = &cs
	}
	for i, s := range g.edges {
		cs := *s
		if s.live {
			cs.e.Curve = s.e.Curve.Clone()
		}
		c.edges[i] = &cs
	}
	return c
}
