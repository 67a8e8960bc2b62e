package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/geom"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

// Colors used for cycle members.
const (
	cycleFill = "#fde2e1"
	cycleLine = "#d1495b"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the vertex position and the edge length to labels.
	Detailed bool
	// CyclesOnly restricts the diagram to vertices and edges on a cycle.
	CyclesOnly bool
	// RankDir is the Graphviz rank direction (TB, LR, BT, RL). Defaults to LR.
	RankDir string
}

var rankDirs = map[string]bool{"TB": true, "LR": true, "BT": true, "RL": true}

// Validate checks the option values.
func (o Options) Validate() error {
	if o.RankDir != "" && !rankDirs[o.RankDir] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid rankdir %q (must be TB, LR, BT or RL)", o.RankDir)
	}
	return nil
}

// ToDOT describes g in Graphviz DOT. Vertices are named by their position in
// slot order, which matches the indices of the flat export. Cycle flags are
// read as they are; run [skeleton.Graph.FindCycles] first to refresh them.
func ToDOT(g *skeleton.Graph, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph skeleton {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12, margin=\"0.05\"];\n")
	buf.WriteString("  edge [fontsize=10, arrowsize=0.6];\n")
	buf.WriteString("\n")

	index := make(map[skeleton.VertexID]int, g.VertexCount())
	for i, id := range g.Vertices() {
		index[id] = i
		v, _ := g.Vertex(id)
		if opts.CyclesOnly && !v.InCycle {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", vertexLabel(i, g.Degree(id), v, opts.Detailed))}
		if v.InCycle {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", cycleFill), fmt.Sprintf("color=%q", cycleLine))
		}
		fmt.Fprintf(&buf, "  \"%d\" [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, id := range g.Edges() {
		e, _ := g.Edge(id)
		if opts.CyclesOnly && !e.InCycle {
			continue
		}
		src, dst := g.Endpoints(id)
		attrs := []string{fmt.Sprintf("label=%q", edgeLabel(e, opts.Detailed))}
		if e.InCycle {
			attrs = append(attrs, fmt.Sprintf("color=%q", cycleLine), "penwidth=2")
		}
		fmt.Fprintf(&buf, "  \"%d\" -> \"%d\" [%s];\n", index[src], index[dst], strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func vertexLabel(i, degree int, v *skeleton.Vertex, detailed bool) string {
	label := fmt.Sprintf("%d\ndeg %d\nr %s", i, degree, strconv.FormatFloat(v.Radius, 'g', 4, 64))
	if detailed {
		label += "\n(" + geom.Compact(v.Position) + ")"
	}
	return label
}

func edgeLabel(e *skeleton.Edge, detailed bool) string {
	label := fmt.Sprintf("%d pts", e.Curve.Len())
	if detailed {
		label += fmt.Sprintf("\nlen %.3g", e.Curve.Length())
	}
	return label
}

// RenderSVG lays out a DOT graph with the embedded Graphviz and returns SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized svg header with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
