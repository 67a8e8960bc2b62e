// Package nodelink draws skeletal graphs as node-link diagrams.
//
// # Overview
//
// The diagram is descriptive: vertices become circles labelled with their
// export index, degree and radius; edges become arrows labelled with the
// number of curve samples. Vertices and edges on a cycle are highlighted.
// Geometry is not preserved; Graphviz chooses the placement.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{CyclesOnly: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] output can also be saved and passed to external Graphviz tools.
//
// # Dependencies
//
// [RenderSVG] uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly, so no system installation is needed.
package nodelink
