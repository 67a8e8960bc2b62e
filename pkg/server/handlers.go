package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/pipeline"
	"github.com/matzehuels/skelgraph/pkg/render/nodelink"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

// Response headers set by the /v1 endpoints.
const (
	CacheHeader   = "X-Skelgraph-Cache"
	RemovedHeader = "X-Skelgraph-Removed"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatsResponse is the body of POST /v1/stats.
type StatsResponse struct {
	pipeline.Stats
	CacheHit bool `json:"cache_hit"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	stats, hit, err := s.runner.Stats(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, StatsResponse{Stats: stats, CacheHit: hit})
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	opts, err := cleanOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Execute(r.Context(), body, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCacheHeader(w, res.CacheHit)
	w.Header().Set(RemovedHeader, strconv.Itoa(res.Report.Removed()))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Output)
}

// PathResponse is the body of POST /v1/path. Vertices are indices in the
// order of the request's export.
type PathResponse struct {
	Vertices []int   `json:"vertices"`
	Edges    int     `json:"edges"`
	Length   float64 `json:"length"`
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	byEdge := q.Has("from_edge") || q.Has("to_edge")
	fromKey, toKey := "from", "to"
	if byEdge {
		fromKey, toKey = "from_edge", "to_edge"
	}
	from, err := queryIndex(r, fromKey)
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := queryIndex(r, toKey)
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	g, _, err := s.runner.Load(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var path []skeleton.VertexID
	if byEdge {
		edges := g.Edges()
		if err := checkIndex(fromKey, from, len(edges)); err != nil {
			writeError(w, r, err)
			return
		}
		if err := checkIndex(toKey, to, len(edges)); err != nil {
			writeError(w, r, err)
			return
		}
		path, err = g.ShortestPathBetweenEdges(edges[from], edges[to])
	} else {
		verts := g.Vertices()
		if err := checkIndex(fromKey, from, len(verts)); err != nil {
			writeError(w, r, err)
			return
		}
		if err := checkIndex(toKey, to, len(verts)); err != nil {
			writeError(w, r, err)
			return
		}
		path, err = g.ShortestPath(verts[from], verts[to])
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	index := make(map[skeleton.VertexID]int, g.VertexCount())
	for i, v := range g.Vertices() {
		index[v] = i
	}
	resp := PathResponse{Vertices: make([]int, len(path)), Edges: len(path) - 1}
	for i, v := range path {
		resp.Vertices[i] = index[v]
	}
	if len(path) > 1 {
		c, err := g.PathCurve(path)
		if err != nil {
			writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "path curve"))
			return
		}
		resp.Length = c.Length()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatDOT
	}
	opts := nodelink.Options{RankDir: q.Get("rankdir")}
	var err error
	if opts.Detailed, err = queryBool(r, "detailed"); err != nil {
		writeError(w, r, err)
		return
	}
	if opts.CyclesOnly, err = queryBool(r, "cycles_only"); err != nil {
		writeError(w, r, err)
		return
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	out, hit, err := s.runner.Diagram(r.Context(), body, format, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	if format == pipeline.FormatSVG {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// readBody reads the request body up to the configured limit. On failure it
// writes the error response and returns false.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
				Code:      "BODY_TOO_LARGE",
				Message:   "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
				RequestID: RequestID(r.Context()),
			})
			return nil, false
		}
		writeError(w, r, errs.Wrap(errs.ErrCodeIO, err, "read request body"))
		return nil, false
	}
	return body, true
}

func cleanOptions(r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	q := r.URL.Query()
	var err error
	if opts.Clean.MinLength, err = queryFloat(r, "min_length"); err != nil {
		return opts, err
	}
	if opts.Scale, err = queryFloat(r, "scale"); err != nil {
		return opts, err
	}
	if opts.Clean.MinPoints, err = queryInt(r, "min_points"); err != nil {
		return opts, err
	}
	if opts.Clean.MaxRounds, err = queryInt(r, "max_rounds"); err != nil {
		return opts, err
	}
	if opts.Refresh, err = queryBool(r, "refresh"); err != nil {
		return opts, err
	}
	for _, raw := range q["prune_degree"] {
		for _, part := range strings.Split(raw, ",") {
			k, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return opts, errs.New(errs.ErrCodeInvalidInput, "invalid prune_degree %q", part)
			}
			opts.Clean.PruneDegrees = append(opts.Clean.PruneDegrees, k)
		}
	}
	return opts, opts.Validate()
}

func queryFloat(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid %s %q", key, raw)
	}
	return f, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid %s %q", key, raw)
	}
	return n, nil
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errs.New(errs.ErrCodeInvalidInput, "invalid %s %q", key, raw)
	}
	return b, nil
}

func queryIndex(r *http.Request, key string) (int, error) {
	if !r.URL.Query().Has(key) {
		return 0, errs.New(errs.ErrCodeInvalidInput, "missing %s", key)
	}
	return queryInt(r, key)
}

func checkIndex(key string, i, n int) error {
	if i < 0 || i >= n {
		return errs.New(errs.ErrCodeInvalidIndex, "%s %d out of range [0, %d)", key, i, n)
	}
	return nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
}
