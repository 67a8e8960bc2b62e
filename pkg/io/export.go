package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/geom"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

// ErrDanglingVertex is returned by Export when an edge refers to a vertex that
// is not part of the graph.
var ErrDanglingVertex = errs.New(errs.ErrCodeInvariant, "edge refers to a vertex outside the graph")

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Export writes g to w in the flat text format, preceded by scale.
// The output can be read back with [Import].
func Export(g *skeleton.Graph, w io.Writer, scale float64) error {
	if g == nil {
		return errs.New(errs.ErrCodeInvalidInput, "nil graph")
	}
	if err := errs.ValidateScale(scale); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "<scale>%s</scale>\n", formatFloat(scale))

	index := make(map[skeleton.VertexID]int, g.VertexCount())
	bw.WriteString("<vertices>\n")
	for i, id := range g.Vertices() {
		v, _ := g.Vertex(id)
		index[id] = i
		bw.WriteString("<vertex>\n")
		fmt.Fprintf(bw, "<pos>%s</pos>\n", geom.Compact(v.Position))
		fmt.Fprintf(bw, "<radius>%s</radius>\n", formatFloat(v.Radius))
		fmt.Fprintf(bw, "<cycle>%s</cycle>\n", formatBool(v.InCycle))
		bw.WriteString("</vertex>\n")
	}
	bw.WriteString("</vertices>\n")

	bw.WriteString("<edges>\n")
	for _, id := range g.Edges() {
		e, _ := g.Edge(id)
		src, dst := g.Endpoints(id)
		si, ok := index[src]
		if !ok {
			return fmt.Errorf("%w: source of %v", ErrDanglingVertex, id)
		}
		ti, ok := index[dst]
		if !ok {
			return fmt.Errorf("%w: target of %v", ErrDanglingVertex, id)
		}
		bw.WriteString("<edge>\n")
		fmt.Fprintf(bw, "<source>%d</source>\n", si)
		fmt.Fprintf(bw, "<target>%d</target>\n", ti)
		fmt.Fprintf(bw, "<cycle>%s</cycle>\n", formatBool(e.InCycle))
		bw.WriteString("<curve>\n")
		bw.WriteString(e.Curve.CompactString())
		bw.WriteString("\n</curve>\n")
		bw.WriteString("</edge>\n")
	}
	bw.WriteString("</edges>\n")

	if err := bw.Flush(); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "write skeleton")
	}
	return nil
}

// ExportFile writes g to the file at path, creating or truncating it.
// This is a convenience wrapper around [Export].
func ExportFile(g *skeleton.Graph, path string, scale float64) error {
	if err := errs.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create %s", path)
	}
	if err := Export(g, f, scale); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "close %s", path)
	}
	return nil
}
