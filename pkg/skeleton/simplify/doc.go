// Package simplify provides batch cleanup passes for skeletal graphs.
//
// # Overview
//
// Skeletons extracted from voxel data carry noise: very short edges between
// junctions, edges whose curves have no interior samples, and chains of
// trivial joints. The passes in this package remove that noise with the
// structural edits of [skeleton.Graph]:
//
//   - [Simplifier.CollapseEdgesShorterThan] collapses short junction edges
//   - [Simplifier.CollapseEdgesWithLessThanNSplines] collapses sparse edges and
//     splices chains of sparse edges into one curve
//   - [Simplifier.RemoveVerticesOfDegree] prunes every vertex of a given degree
//   - [Simplifier.Clean] repeats the passes until nothing changes
//
// # Error Handling
//
// Passes never abort on a single bad item. An edit that fails with a domain
// error (a stale handle, a self-loop) is logged at warn level and skipped.
// Invariant violations are logged at error level; Clean returns them.
//
// Edges touching a degree-1 vertex are never collapsed, so branch tips keep
// their length.
package simplify
