package pipeline

import (
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

// Stats summarizes a graph.
type Stats struct {
	Vertices      int         `json:"vertices"`
	Edges         int         `json:"edges"`
	Points        int         `json:"points"`
	Components    int         `json:"components"`
	CycleVertices int         `json:"cycle_vertices"`
	CycleEdges    int         `json:"cycle_edges"`
	Degrees       map[int]int `json:"degrees"`
	TotalLength   float64     `json:"total_length"`
	Scale         float64     `json:"scale"`
}

// Analyze refreshes the cycle flags of g and returns its statistics.
// It fails only when cycle tagging finds a broken invariant.
func Analyze(g *skeleton.Graph, scale float64) (Stats, error) {
	if err := g.FindCycles(); err != nil {
		return Stats{}, err
	}
	s := Stats{
		Vertices:      g.VertexCount(),
		Edges:         g.EdgeCount(),
		Points:        g.PointCount(),
		Components:    g.ConnectedComponents(),
		CycleVertices: len(g.CycleVertices()),
		CycleEdges:    len(g.CycleEdges()),
		Degrees:       make(map[int]int),
		Scale:         scale,
	}
	for _, v := range g.Vertices() {
		s.Degrees[g.Degree(v)]++
	}
	for _, id := range g.Edges() {
		e, _ := g.Edge(id)
		s.TotalLength += e.Curve.Length()
	}
	return s, nil
}
