package skeleton

import (
	errs "github.com/matzehuels/skelgraph/pkg/errors"
)

var (
	// ErrUnknownVertex is returned when a vertex handle is null or refers to
	// a vertex that has been removed.
	ErrUnknownVertex = errs.New(errs.ErrCodeStaleDescriptor, "unknown or removed vertex")

	// ErrUnknownEdge is returned when an edge handle is null or refers to an
	// edge that has been removed.
	ErrUnknownEdge = errs.New(errs.ErrCodeStaleDescriptor, "unknown or removed edge")

	// ErrInvalidCurve is returned by [Graph.AddEdgeWithCurve] and
	// [Graph.SetCurve] when the curve has fewer than two samples.
	ErrInvalidCurve = errs.New(errs.ErrCodeInvalidInput, "curve needs at least two samples")

	// ErrSegmentOutOfRange is returned by [Graph.SplitEdgeAt] and
	// [Graph.CutEdgeAt] when the segment index is not below PointCount-1.
	ErrSegmentOutOfRange = errs.New(errs.ErrCodeInvalidIndex, "segment index out of range")

	// ErrNotDegree2 is returned by [Graph.RemoveDegree2VertexAndMergeEdges]
	// when the vertex does not have exactly two incident edge ends.
	ErrNotDegree2 = errs.New(errs.ErrCodeInvalidDegree, "vertex is not of degree 2")

	// ErrSelfMerge is returned by [Graph.MergeVertices] when both handles
	// name the same vertex.
	ErrSelfMerge = errs.New(errs.ErrCodeSelfMerge, "cannot merge a vertex with itself")

	// ErrSelfLoop is returned by [Graph.CollapseEdge] for an edge whose
	// source and target are the same vertex.
	ErrSelfLoop = errs.New(errs.ErrCodeInvalidInput, "cannot collapse a self-loop")

	// ErrSelfJoin is returned by [Graph.SplitPath] when both edges are the
	// same edge.
	ErrSelfJoin = errs.New(errs.ErrCodeInvalidInput, "cannot join an edge to itself")

	// ErrNoPath is returned by the shortest path searches when the endpoints
	// lie in different connected components.
	ErrNoPath = errs.New(errs.ErrCodeNoPath, "no path between vertices")

	// ErrNotAdjacent is returned when consecutive path vertices are not joined
	// by an edge, or when a vertex requested by [Graph.SplitEdgeAlongCurve]
	// does not adjoin the split edge.
	ErrNotAdjacent = errs.New(errs.ErrCodeNotFound, "vertices are not adjacent")

	// ErrInvariant reports a state that valid graphs never reach, such as a
	// missing spanning-tree edge during cycle tagging. The operation that
	// returns it has been aborted.
	ErrInvariant = errs.New(errs.ErrCodeInvariant, "skeleton invariant violated")
)
