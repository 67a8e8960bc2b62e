package simplify

import (
	"io"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

const (
	// SimpleEdgePoints is the point threshold used by CollapseSimpleEdges:
	// curves below it have no interior samples.
	SimpleEdgePoints = 3

	// DefaultMaxRounds bounds the fixpoint loop of Clean.
	DefaultMaxRounds = 8
)

// Simplifier runs cleanup passes over one graph.
type Simplifier struct {
	g      *skeleton.Graph
	logger *log.Logger
	err    error
}

// New returns a Simplifier editing g in place. A nil logger discards output.
func New(g *skeleton.Graph, logger *log.Logger) *Simplifier {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Simplifier{g: g, logger: logger}
}

// Err returns the first invariant violation met by any pass, or nil.
func (s *Simplifier) Err() error { return s.err }

// skip logs a failed item. Domain errors are expected in batch passes;
// anything else is remembered and returned by Clean.
func (s *Simplifier) skip(pass string, err error, keyvals ...any) {
	keyvals = append([]any{"pass", pass, "err", err}, keyvals...)
	if errs.IsDomain(err) {
		s.logger.Warn("skipping item", keyvals...)
		return
	}
	s.logger.Error("invariant violated, skipping item", keyvals...)
	if s.err == nil {
		s.err = err
	}
}

// collapsible reports whether e may be collapsed by a batch pass: it is not
// a self-loop and neither endpoint is a branch tip.
func (s *Simplifier) collapsible(e skeleton.EdgeID) bool {
	src, dst := s.g.Endpoints(e)
	return !src.IsNil() && src != dst && s.g.Degree(src) != 1 && s.g.Degree(dst) != 1
}

// collapseWhere collapses every collapsible edge selected by match at its
// midpoint. Candidates are gathered first and re-checked before each
// collapse, since earlier collapses reroute and drop edges.
func (s *Simplifier) collapseWhere(pass string, match func(*skeleton.Edge) bool) int {
	var candidates []skeleton.EdgeID
	for _, e := range s.g.Edges() {
		if ed, _ := s.g.Edge(e); match(ed) && s.collapsible(e) {
			candidates = append(candidates, e)
		}
	}

	collapsed := 0
	for _, e := range candidates {
		ed, ok := s.g.Edge(e)
		if !ok {
			s.logger.Debug("edge gone before its turn", "pass", pass, "edge", e)
			continue
		}
		if !match(ed) || !s.collapsible(e) {
			continue
		}
		res, err := s.g.CollapseEdge(e, skeleton.CollapseMidpoint)
		if err != nil {
			s.skip(pass, err, "edge", e)
			continue
		}
		collapsed++
		if res.Dropped > 0 {
			s.logger.Debug("dropped parallel edges", "pass", pass, "kept", res.Kept, "dropped", res.Dropped)
		}
	}
	s.logger.Debug("collapse pass done", "pass", pass, "candidates", len(candidates), "collapsed", collapsed)
	return collapsed
}

// CollapseEdgesShorterThan collapses at their midpoint the edges whose
// curve is shorter than minLength, except edges touching a degree-1 vertex.
// It returns the number of vertices removed.
func (s *Simplifier) CollapseEdgesShorterThan(minLength float64) int {
	return s.collapseWhere("min_length", func(e *skeleton.Edge) bool {
		return e.Curve.Length() < minLength
	})
}

// CollapseEdgesWithLessThanNSplines collapses at their midpoint the edges
// whose curve has fewer than n samples, except edges touching a degree-1
// vertex. Degree-2 vertices whose two curves both have fewer than n samples
// are then dissolved, so chains of sparse edges become one curve. It returns
// the number of vertices removed.
func (s *Simplifier) CollapseEdgesWithLessThanNSplines(n int) int {
	return s.collapseSparse(n) + s.spliceSparse(n)
}

func (s *Simplifier) collapseSparse(n int) int {
	return s.collapseWhere("min_points", func(e *skeleton.Edge) bool {
		return e.Curve.Len() < n
	})
}

// spliceSparse dissolves degree-2 vertices joining two sparse curves.
// Candidates are chosen up front: once a chain starts merging its curve
// grows past n, but the remaining joints of the chain still dissolve.
func (s *Simplifier) spliceSparse(n int) int {
	var candidates []skeleton.VertexID
	for _, v := range s.g.Vertices() {
		if !s.spliceable(v) {
			continue
		}
		sparse := true
		for _, e := range s.g.IncidentEdges(v) {
			if ed, _ := s.g.Edge(e); ed.Curve.Len() >= n {
				sparse = false
			}
		}
		if sparse {
			candidates = append(candidates, v)
		}
	}

	spliced := 0
	for _, v := range candidates {
		if !s.spliceable(v) {
			continue
		}
		if _, err := s.g.RemoveDegree2VertexAndMergeEdges(v); err != nil {
			s.skip("splice", err, "vertex", v)
			continue
		}
		spliced++
	}
	s.logger.Debug("splice pass done", "candidates", len(candidates), "spliced", spliced)
	return spliced
}

// spliceable reports whether v has degree 2 through two distinct edges. A
// vertex carrying only a self-loop is the last joint of a closed chain and
// stays.
func (s *Simplifier) spliceable(v skeleton.VertexID) bool {
	return s.g.Degree(v) == 2 && len(s.g.IncidentEdges(v)) == 2
}

// CollapseSimpleEdges collapses edges with no interior samples and
// dissolves the joints of simple-edge chains.
func (s *Simplifier) CollapseSimpleEdges() int {
	return s.CollapseEdgesWithLessThanNSplines(SimpleEdgePoints)
}

// RemoveVerticesOfDegree removes every vertex of degree k together with its
// edges. Neighbours are not re-linked. Degrees are checked as the pass
// advances, so a vertex whose degree drops to k because of an earlier removal
// is removed too if it comes later in slot order.
func (s *Simplifier) RemoveVerticesOfDegree(k int) int {
	removed := 0
	for _, v := range s.g.Vertices() {
		if s.g.Degree(v) != k {
			continue
		}
		s.g.RemoveVertex(v)
		removed++
	}
	s.logger.Debug("prune pass done", "degree", k, "removed", removed)
	return removed
}
