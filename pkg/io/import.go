package io

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skelgraph/pkg/curve"
	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/geom"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// splitTags splits a line into tags and the text between them:
// "<pos>1 2 3</pos>" becomes ["<pos>", "1 2 3", "</pos>"].
func splitTags(line string) []string {
	var out []string
	for line != "" {
		open := strings.IndexByte(line, '<')
		if open < 0 {
			if text := strings.TrimSpace(line); text != "" {
				out = append(out, text)
			}
			break
		}
		if text := strings.TrimSpace(line[:open]); text != "" {
			out = append(out, text)
		}
		end := strings.IndexByte(line[open:], '>')
		if end < 0 {
			out = append(out, line[open:])
			break
		}
		out = append(out, line[open:open+end+1])
		line = line[open+end+1:]
	}
	return out
}

// pendingEdge accumulates the fields of one <edge> block.
type pendingEdge struct {
	source, target int
	inCycle        bool
	points         []geom.Vec3
}

// reader is the scanner state of one import.
type reader struct {
	g      *skeleton.Graph
	logger *log.Logger
	scale  float64
	line   int

	vertices []skeleton.VertexID

	inVertices, inEdges, inCurve bool
	vertex                       *skeleton.Vertex
	edge                         *pendingEdge
	field                        string // open field tag, such as "pos"
	text                         string // text read inside the open field
	stop                         bool
}

// Import reads a skeleton in the flat text format from r and adds it to g.
// It returns the scale stored in the input, or 1 when absent or malformed.
//
// Malformed fields are logged as warnings and replaced by defaults; edges
// with unknown vertex indices are logged and skipped. Import fails only when
// g is nil or r cannot be read. A nil logger discards the warnings.
func Import(r io.Reader, g *skeleton.Graph, logger *log.Logger) (float64, error) {
	if g == nil {
		return 1, errs.New(errs.ErrCodeInvalidInput, "cannot import into a nil graph")
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	rd := &reader{g: g, logger: logger, scale: 1}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for !rd.stop && sc.Scan() {
		rd.line++
		for _, tok := range splitTags(strings.TrimSpace(sc.Text())) {
			rd.token(tok)
			if rd.stop {
				break
			}
		}
		// A field left open at the end of a line is taken as complete.
		if rd.field != "" {
			rd.closeField()
		}
	}
	if err := sc.Err(); err != nil {
		return rd.scale, errs.Wrap(errs.ErrCodeIO, err, "read skeleton")
	}

	logger.Debug("imported skeleton",
		"vertices", g.VertexCount(),
		"edges", g.EdgeCount(),
		"points", g.PointCount(),
		"scale", rd.scale,
	)
	return rd.scale, nil
}

func (rd *reader) token(tok string) {
	if !strings.HasPrefix(tok, "<") {
		rd.textToken(tok)
		return
	}
	name := strings.Trim(tok, "<>/ ")
	closing := strings.HasPrefix(tok, "</")

	if rd.field != "" {
		if closing && name == rd.field {
			rd.closeField()
			return
		}
		rd.closeField()
	}

	switch {
	case name == "scale" || name == "pos" || name == "radius" ||
		name == "cycle" || name == "source" || name == "target":
		if !closing {
			rd.field, rd.text = name, ""
		}
	case name == "vertices":
		rd.inVertices = !closing
	case name == "edges":
		if closing {
			rd.inEdges = false
			return
		}
		if len(rd.vertices) == 0 {
			rd.logger.Warn("edges listed before any vertex, stopping", "line", rd.line)
			rd.stop = true
			return
		}
		rd.inEdges = true
	case name == "vertex" && rd.inVertices:
		if closing {
			rd.finishVertex()
		} else {
			rd.vertex = &skeleton.Vertex{Radius: skeleton.DefaultRadius}
		}
	case name == "edge" && rd.inEdges:
		if closing {
			rd.finishEdge()
		} else {
			rd.edge = &pendingEdge{source: -1, target: -1}
		}
	case name == "curve" && rd.edge != nil:
		rd.inCurve = !closing
	default:
		rd.logger.Warn("ignoring unexpected tag", "line", rd.line, "tag", tok)
	}
}

func (rd *reader) textToken(text string) {
	switch {
	case rd.field != "":
		rd.text = strings.TrimSpace(rd.text + " " + text)
	case rd.inCurve:
		p, ok := parseVec(text)
		if !ok {
			rd.logger.Warn("could not read curve point", "line", rd.line, "text", text)
			return
		}
		rd.edge.points = append(rd.edge.points, p)
	default:
		rd.logger.Warn("ignoring stray text", "line", rd.line, "text", text)
	}
}

// closeField applies the text of the open field to the pending block.
func (rd *reader) closeField() {
	field, text := rd.field, rd.text
	rd.field, rd.text = "", ""

	warn := func() {
		rd.logger.Warn("could not read field, using default", "line", rd.line, "field", field, "text", text)
	}

	switch {
	case field == "scale":
		s, err := strconv.ParseFloat(text, 64)
		if err != nil || errs.ValidateScale(s) != nil {
			warn()
			return
		}
		rd.scale = s

	case rd.vertex != nil && field == "pos":
		p, ok := parseVec(text)
		if !ok {
			warn()
			p = geom.Vec3{}
		}
		rd.vertex.Position = p
	case rd.vertex != nil && field == "radius":
		r, err := strconv.ParseFloat(text, 64)
		if err != nil {
			warn()
			r = skeleton.DefaultRadius
		}
		rd.vertex.Radius = r
	case rd.vertex != nil && field == "cycle":
		c, ok := parseFlag(text)
		if !ok {
			warn()
		}
		rd.vertex.InCycle = c

	case rd.edge != nil && field == "source":
		rd.edge.source = parseIndex(text)
		if rd.edge.source < 0 {
			warn()
		}
	case rd.edge != nil && field == "target":
		rd.edge.target = parseIndex(text)
		if rd.edge.target < 0 {
			warn()
		}
	case rd.edge != nil && field == "cycle":
		c, ok := parseFlag(text)
		if !ok {
			warn()
		}
		rd.edge.inCycle = c

	default:
		rd.logger.Warn("field outside of a vertex or edge", "line", rd.line, "field", field)
	}
}

func (rd *reader) finishVertex() {
	if rd.vertex == nil {
		return
	}
	pv := *rd.vertex
	rd.vertex = nil
	if pv.Radius > skeleton.MaxRadius {
		rd.logger.Warn("radius above maximum, clamping", "line", rd.line, "radius", pv.Radius)
	}
	id := rd.g.AddVertex(pv)
	if v, ok := rd.g.Vertex(id); ok {
		v.InCycle = pv.InCycle
	}
	rd.vertices = append(rd.vertices, id)
}

func (rd *reader) finishEdge() {
	pe := rd.edge
	rd.edge, rd.inCurve = nil, false
	if pe == nil {
		return
	}
	if pe.source < 0 || pe.source >= len(rd.vertices) || pe.target < 0 || pe.target >= len(rd.vertices) {
		rd.logger.Error("skipping edge with invalid vertex indices",
			"line", rd.line, "source", pe.source, "target", pe.target, "vertices", len(rd.vertices))
		return
	}
	src, dst := rd.vertices[pe.source], rd.vertices[pe.target]

	var c *curve.Curve
	if len(pe.points) >= 2 {
		c, _ = curve.FromPoints(anchor(pe.points, rd.g.Position(src), rd.g.Position(dst)))
	} else {
		rd.logger.Warn("edge curve has fewer than 2 points, using a straight curve",
			"line", rd.line, "points", len(pe.points))
	}
	id, err := rd.g.AddEdgeWithCurve(src, dst, c)
	if err != nil {
		rd.logger.Error("skipping edge", "line", rd.line, "err", err)
		return
	}
	if e, ok := rd.g.Edge(id); ok {
		e.InCycle = pe.inCycle
	}
}

// anchor pins the curve ends to the endpoint positions so the graph's
// anchoring invariant holds even for hand-edited files.
func anchor(points []geom.Vec3, from, to geom.Vec3) []geom.Vec3 {
	points[0] = from
	points[len(points)-1] = to
	return points
}

func parseVec(s string) (geom.Vec3, bool) {
	f := strings.Fields(s)
	if len(f) != 3 {
		return geom.Vec3{}, false
	}
	var xyz [3]float64
	for i, part := range f {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return geom.Vec3{}, false
		}
		xyz[i] = v
	}
	p := geom.V(xyz[0], xyz[1], xyz[2])
	return p, geom.IsFinite(p)
}

func parseFlag(s string) (bool, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return false, false
	}
	return n != 0, true
}

func parseIndex(s string) int {
	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return -1
	}
	return int(n)
}

// ImportFile reads the file at path with [Import].
func ImportFile(path string, g *skeleton.Graph, logger *log.Logger) (float64, error) {
	if g == nil {
		return 1, errs.New(errs.ErrCodeInvalidInput, "cannot import into a nil graph")
	}
	if err := errs.ValidatePath(path); err != nil {
		return 1, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 1, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return 1, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return Import(f, g, logger)
}
