package skeleton_test

import (
	"fmt"

	"github.com/matzehuels/skelgraph/pkg/geom"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

func ExampleGraph_basic() {
	// A two-bone limb: shoulder -> elbow -> wrist
	g := skeleton.New()
	shoulder := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 0, 0)})
	elbow := g.AddVertex(skeleton.Vertex{Position: geom.V(0, -3, 0)})
	wrist := g.AddVertex(skeleton.Vertex{Position: geom.V(2, -3, 0)})
	_, _ = g.AddEdge(shoulder, elbow)
	_, _ = g.AddEdge(elbow, wrist)

	fmt.Println("Vertices:", g.VertexCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Points:", g.PointCount())
	fmt.Println("Elbow degree:", g.Degree(elbow))
	// Output:
	// Vertices: 3
	// Edges: 2
	// Points: 4
	// Elbow degree: 2
}

func ExampleGraph_SplitEdgeAt() {
	g := skeleton.New()
	a := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 0, 0)})
	b := g.AddVertex(skeleton.Vertex{Position: geom.V(4, 0, 0)})
	e, _ := g.AddEdge(a, b)

	res, _ := g.SplitEdgeAt(e, 0, geom.V(1, 0, 0))
	fmt.Println("Vertices:", g.VertexCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Joint at:", geom.Compact(g.Position(res.Vertex)))
	// Output:
	// Vertices: 3
	// Edges: 2
	// Joint at: 1 0 0
}

func ExampleGraph_FindCycles() {
	// A loop with a dangling tail
	g := skeleton.New()
	a := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 0, 0)})
	b := g.AddVertex(skeleton.Vertex{Position: geom.V(1, 0, 0)})
	c := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 1, 0)})
	d := g.AddVertex(skeleton.Vertex{Position: geom.V(-1, 1, 0)})
	_, _ = g.AddEdge(a, b)
	_, _ = g.AddEdge(b, c)
	_, _ = g.AddEdge(c, a)
	_, _ = g.AddEdge(c, d)

	_ = g.FindCycles()
	fmt.Println("Cycle vertices:", len(g.CycleVertices()))
	fmt.Println("Cycle edges:", len(g.CycleEdges()))
	// Output:
	// Cycle vertices: 3
	// Cycle edges: 3
}

func ExampleGraph_ShortestPath() {
	g := skeleton.New()
	a := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 0, 0)})
	b := g.AddVertex(skeleton.Vertex{Position: geom.V(1, 0, 0)})
	c := g.AddVertex(skeleton.Vertex{Position: geom.V(2, 0, 0)})
	_, _ = g.AddEdge(a, b)
	_, _ = g.AddEdge(c, b) // direction is ignored

	path, _ := g.ShortestPath(a, c)
	fmt.Println("Hops:", len(path)-1)
	// Output:
	// Hops: 2
}
