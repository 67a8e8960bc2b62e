package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/geom"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

// stdio is the path that selects stdin or stdout.
const stdio = "-"

// readInput reads a skeleton file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == stdio {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "read stdin")
		}
		return data, nil
	}
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeIO, err, "read %s", path)
	}
	return data, nil
}

// writeOutput writes data to path, or to w when path is "" or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == stdio {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// indexer maps between graph handles and their positions in export order.
type indexer struct {
	vertices []skeleton.VertexID
	edges    []skeleton.EdgeID
	vindex   map[skeleton.VertexID]int
	eindex   map[skeleton.EdgeID]int
}

func newIndexer(g *skeleton.Graph) *indexer {
	ix := &indexer{
		vertices: g.Vertices(),
		edges:    g.Edges(),
		vindex:   make(map[skeleton.VertexID]int),
		eindex:   make(map[skeleton.EdgeID]int),
	}
	for i, v := range ix.vertices {
		ix.vindex[v] = i
	}
	for i, e := range ix.edges {
		ix.eindex[e] = i
	}
	return ix
}

func (ix *indexer) vertex(arg string) (skeleton.VertexID, error) {
	i, err := parseIndex("vertex", arg, len(ix.vertices))
	if err != nil {
		return skeleton.VertexID{}, err
	}
	return ix.vertices[i], nil
}

func (ix *indexer) edge(arg string) (skeleton.EdgeID, error) {
	i, err := parseIndex("edge", arg, len(ix.edges))
	if err != nil {
		return skeleton.EdgeID{}, err
	}
	return ix.edges[i], nil
}

func (ix *indexer) vertexIndices(vs []skeleton.VertexID) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = ix.vindex[v]
	}
	return out
}

func (ix *indexer) edgeIndices(es []skeleton.EdgeID) []int {
	out := make([]int, len(es))
	for i, e := range es {
		out[i] = ix.eindex[e]
	}
	return out
}

func parseIndex(kind, arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid %s index %q", kind, arg)
	}
	if i < 0 || i >= n {
		return 0, errs.New(errs.ErrCodeInvalidIndex, "%s index %d out of range [0, %d)", kind, i, n)
	}
	return i, nil
}

// parseVec parses "x,y,z" (commas or spaces).
func parseVec(s string) (geom.Vec3, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 3 {
		return geom.Vec3{}, errs.New(errs.ErrCodeInvalidInput, "invalid position %q (want x,y,z)", s)
	}
	var xyz [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geom.Vec3{}, errs.New(errs.ErrCodeInvalidInput, "invalid position %q (want x,y,z)", s)
		}
		xyz[i] = v
	}
	v := geom.V(xyz[0], xyz[1], xyz[2])
	if !geom.IsFinite(v) {
		return geom.Vec3{}, errs.New(errs.ErrCodeInvalidInput, "position %q is not finite", s)
	}
	return v, nil
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func plural(n int, word string) string {
	switch {
	case n == 1:
		return fmt.Sprintf("%d %s", n, word)
	case word == "vertex":
		return fmt.Sprintf("%d vertices", n)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
