// Package pkg provides the core libraries for skelgraph curve-skeleton editing.
//
// # Overview
//
// A curve skeleton is a graph whose vertices are joints in 3D space and whose
// edges are sampled curves joining them. Skeletons extracted from meshes or
// volumes are noisy: they carry tiny spurs, chains of redundant joints and
// short edges around junctions. skelgraph loads them, edits their topology
// while keeping the curve geometry consistent, cleans them and writes them
// back out. The pkg directory is organized into four areas:
//
//  1. Geometry - [geom] vectors and [curve] sampled polylines
//  2. Graph - [skeleton] topology, edits and queries, plus [skeleton/simplify]
//  3. Serialization and rendering - [io] text format and [render/nodelink]
//  4. Infrastructure - [pipeline], [cache], [server] and [observability]
//
// # Architecture
//
// The typical data flow:
//
//	skeleton file
//	     ↓
//	[io.Import] (parse the tagged text format)
//	     ↓
//	[skeleton.Graph] (edits, cycles, paths)
//	     ↓
//	[simplify.Simplifier] (collapse, splice, prune)
//	     ↓
//	[io.Export] or [nodelink.ToDOT]
//
// [pipeline.Runner] ties these steps together with a content-addressed
// [cache] and is shared by the CLI and the HTTP [server].
//
// # Quick Start
//
// Clean a skeleton file:
//
//	g := skeleton.New()
//	scale, err := io.ImportFile("tree.skel", g, logger)
//	if err != nil {
//	    return err
//	}
//	report, err := simplify.New(g, logger).Clean(simplify.Options{
//	    MinLength:    0.5,
//	    MinPoints:    3,
//	    PruneDegrees: []int{0},
//	})
//	if err != nil {
//	    return err
//	}
//	err = io.ExportFile(g, "tree.clean.skel", scale)
//
// # Main Packages
//
// [skeleton] - A directed multigraph with generational vertex and edge
// handles. Every edit keeps curve ends anchored on their vertices; stale
// handles are rejected instead of aliasing new entities.
//
// [skeleton/simplify] - Cleanup passes built from the graph edits, run to a
// fixpoint.
//
// [io] - The flat tagged text format, read tolerantly and written
// deterministically.
//
// [render/nodelink] - Topology diagrams as DOT, or SVG through an embedded
// Graphviz.
//
// [pipeline] - Load, clean, analyze and render with caching and bounded
// batch parallelism.
//
// [cache] - Result caches on the filesystem, Badger, Redis or MongoDB.
//
// [server] - The pipeline over HTTP.
//
// [observability] - Hooks for pipeline, cache and HTTP events, with a
// Prometheus implementation.
//
// [errors] - Coded errors shared by the CLI, the HTTP API and the library.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/skeleton/...           # Specific package
//	go test -run Example ./pkg/skeleton  # Examples only
//
// Redis and MongoDB cache tests run when SKELGRAPH_TEST_REDIS_ADDR or
// SKELGRAPH_TEST_MONGO_URI is set.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/geom
// [curve]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/curve
// [skeleton]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/skeleton
// [skeleton/simplify]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/skeleton/simplify
// [io]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/io
// [io.Import]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/io#Import
// [io.Export]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/io#Export
// [skeleton.Graph]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/skeleton#Graph
// [simplify.Simplifier]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/skeleton/simplify#Simplifier
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/render/nodelink
// [nodelink.ToDOT]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/render/nodelink#ToDOT
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/skelgraph/pkg/errors
package pkg
