// Package skeleton provides the skeletal graph: a directed multigraph whose
// vertices are 3D joints and whose edges are deformable space curves.
//
// # Overview
//
// A curve-skeleton approximates the medial structure of a 3D shape with a
// graph of curves. Vertices carry a position and a radius (the local
// thickness of the shape). Edges carry a [curve.Curve] whose first and last
// samples coincide with the positions of the vertices the edge connects.
//
// The package has three parts that share the [Graph] type:
//
//   - the store: vertex and edge records behind stable handles
//     ([Graph.AddVertex], [Graph.AddEdge], [Graph.RemoveEdge], ...)
//   - the editor: structural edits that keep curves and joints consistent
//     ([Graph.SplitEdgeAt], [Graph.CutEdgeAt], [Graph.CollapseEdge],
//     [Graph.MergeVertices], [Graph.RemoveDegree2VertexAndMergeEdges],
//     [Graph.SplitEdgeAlongCurve], [Graph.SplitPath])
//   - the analyzer: shortest paths, connected components and cycle tagging
//     ([Graph.ShortestPath], [Graph.ConnectedComponents], [Graph.FindCycles])
//
// Batch cleanup lives in the simplify subpackage.
//
// # Handles
//
// [VertexID] and [EdgeID] are generation-tagged slot handles. A handle stays
// valid until its entity is removed; afterwards every lookup reports it as
// unknown instead of aliasing whatever entity reuses the slot. The zero value
// of both types is the null handle.
//
//	g := skeleton.New()
//	a := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 0, 0)})
//	b := g.AddVertex(skeleton.Vertex{Position: geom.V(1, 0, 0)})
//	e, _ := g.AddEdge(a, b)
//	g.RemoveEdge(e) // removes e, then b (left at degree 0)
//	_, ok := g.Vertex(b) // ok == false
//
// # Invariants
//
// Every operation maintains:
//
//   - each curve's first and last sample equal its edge's endpoint positions
//   - [Graph.PointCount] equals the sum of all curve lengths
//   - [Graph.RemoveEdge] removes endpoints left at degree 0, unless the
//     endpoint is the last vertex of the graph
//
// [Graph.Validate] checks all of them and is cheap enough to call in tests
// after every mutation.
//
// # Errors
//
// Precondition failures (bad segment index, wrong degree, self merge, stale
// handle, unreachable path) are returned as errors carrying a domain code from
// the errors package. Batch callers may skip the item and carry on. States
// that should be unreachable are returned with the INVARIANT_BREACH code and
// abort the current operation.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Traversals keep their scratch
// state locally, so concurrent read-only calls (ShortestPath,
// ConnectedComponents, Components) on a graph nobody mutates are safe.
// FindCycles writes cycle flags and counts as a mutation.
package skeleton
