// Package io provides the flat text import and export of skeletal graphs.
//
// # Overview
//
// The format is a line-oriented, tag-delimited description of a
// [skeleton.Graph]. It is designed for:
//
//   - Handing skeletons between extraction, cleanup and inspection tools
//   - Caching cleaned results byte for byte (see package cache)
//   - Round trips: export, re-import, and get the same counts and attributes
//
// # Text Format
//
// A scale factor comes first, then every vertex, then every edge:
//
//	<scale>1</scale>
//	<vertices>
//	<vertex>
//	<pos>0 0 0</pos>
//	<radius>1.5</radius>
//	<cycle>0</cycle>
//	</vertex>
//	</vertices>
//	<edges>
//	<edge>
//	<source>0</source>
//	<target>1</target>
//	<cycle>0</cycle>
//	<curve>
//	0 0 0
//	0.5 0.1 0
//	1 0 0
//	</curve>
//	</edge>
//	</edges>
//
// Edge endpoints are 0-based indices into the vertex list. Floats use the
// shortest representation that parses back to the same value.
//
// # Import
//
// [Import] reads from any io.Reader and [ImportFile] from a path. Both add the
// content to an existing graph and return the scale:
//
//	g := skeleton.New()
//	scale, err := io.ImportFile("bunny.skel", g, logger)
//
// The reader is lenient. Indentation is ignored and several tags may share a
// line. A malformed field is logged and replaced by a default (zero
// position, default radius, no cycle). An edge referring to an unknown vertex
// is logged and skipped. Only a nil destination, an unreadable input or an
// unopenable file fail the import.
//
// # Export
//
// [Export] writes to any io.Writer and [ExportFile] to a path. Vertices are
// numbered in the graph's slot order. An edge whose endpoint is not in the
// graph fails the export with [ErrDanglingVertex].
package io
