package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/skelgraph/pkg/cache"
	"github.com/matzehuels/skelgraph/pkg/geom"
	skelio "github.com/matzehuels/skelgraph/pkg/io"
	"github.com/matzehuels/skelgraph/pkg/observability"
	"github.com/matzehuels/skelgraph/pkg/pipeline"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

func export(t *testing.T, g *skeleton.Graph) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := skelio.Export(g, &buf, 1); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// chain is 0-1-2-3 along x plus the isolated vertex 4.
func chain(t *testing.T) []byte {
	t.Helper()
	g := skeleton.New()
	var vs []skeleton.VertexID
	for i := 0; i < 4; i++ {
		vs = append(vs, g.AddVertex(skeleton.Vertex{Position: geom.V(float64(i), 0, 0)}))
	}
	g.AddVertex(skeleton.Vertex{Position: geom.V(5, 5, 5)})
	for i := 0; i < 3; i++ {
		if _, err := g.AddEdge(vs[i], vs[i+1]); err != nil {
			t.Fatal(err)
		}
	}
	return export(t, g)
}

func triangle(t *testing.T) []byte {
	t.Helper()
	g := skeleton.New()
	a := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 0, 0)})
	b := g.AddVertex(skeleton.Vertex{Position: geom.V(1, 0, 0)})
	c := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 1, 0)})
	for _, p := range [][2]skeleton.VertexID{{a, b}, {b, c}, {c, a}} {
		if _, err := g.AddEdge(p[0], p[1]); err != nil {
			t.Fatal(err)
		}
	}
	return export(t, g)
}

func newTestServer(t *testing.T, cfg Config, gather prometheus.Gatherer) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := pipeline.NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return New(r, cfg, gather, nil)
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body %q: %v", rec.Body.String(), err)
	}
	return e
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{}, nil)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("%s = %q is not a UUID", RequestIDHeader, rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t, Config{}, nil)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != id {
		t.Errorf("request ID = %q, want %q", got, id)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("request ID = %q, want a fresh UUID", got)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t, Config{}, nil)

	rec := do(t, s, http.MethodPost, "/v1/stats", triangle(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Vertices != 3 || got.Edges != 3 || got.CycleEdges != 3 || got.Components != 1 {
		t.Errorf("stats = %+v", got)
	}
	if got.CacheHit || rec.Header().Get(CacheHeader) != "miss" {
		t.Errorf("first request cache = %q", rec.Header().Get(CacheHeader))
	}

	rec = do(t, s, http.MethodPost, "/v1/stats", triangle(t))
	if rec.Header().Get(CacheHeader) != "hit" {
		t.Errorf("second request cache = %q, want hit", rec.Header().Get(CacheHeader))
	}
}

func TestClean(t *testing.T) {
	s := newTestServer(t, Config{}, nil)
	target := "/v1/clean?min_points=3&prune_degree=0"

	rec := do(t, s, http.MethodPost, target, chain(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RemovedHeader) != "3" {
		t.Errorf("%s = %q, want 3", RemovedHeader, rec.Header().Get(RemovedHeader))
	}
	g := skeleton.New()
	if _, err := skelio.Import(bytes.NewReader(rec.Body.Bytes()), g, nil); err != nil {
		t.Fatal(err)
	}
	if g.VertexCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("cleaned graph has %d vertices and %d edges, want 2 and 1", g.VertexCount(), g.EdgeCount())
	}

	again := do(t, s, http.MethodPost, target, chain(t))
	if again.Header().Get(CacheHeader) != "hit" || !bytes.Equal(again.Body.Bytes(), rec.Body.Bytes()) {
		t.Errorf("second request cache = %q", again.Header().Get(CacheHeader))
	}
}

func TestCleanBadOptions(t *testing.T) {
	s := newTestServer(t, Config{}, nil)
	tests := []string{
		"/v1/clean?min_points=abc",
		"/v1/clean?min_points=1",
		"/v1/clean?min_length=-1",
		"/v1/clean?prune_degree=1,x",
		"/v1/clean?refresh=maybe",
	}
	for _, target := range tests {
		rec := do(t, s, http.MethodPost, target, chain(t))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
			continue
		}
		if e := decodeError(t, rec); e.Code != "INVALID_INPUT" || e.RequestID == "" {
			t.Errorf("%s: error = %+v", target, e)
		}
	}
}

func TestPath(t *testing.T) {
	s := newTestServer(t, Config{}, nil)
	tests := []struct {
		name   string
		target string
		status int
		want   []int
		length float64
		code   string
	}{
		{"chain", "/v1/path?from=0&to=3", http.StatusOK, []int{0, 1, 2, 3}, 3, ""},
		{"reverse", "/v1/path?from=2&to=0", http.StatusOK, []int{2, 1, 0}, 2, ""},
		{"same", "/v1/path?from=1&to=1", http.StatusOK, []int{1}, 0, ""},
		{"edges", "/v1/path?from_edge=0&to_edge=2", http.StatusOK, []int{1, 2}, 1, ""},
		{"unreachable", "/v1/path?from=0&to=4", http.StatusUnprocessableEntity, nil, 0, "NO_PATH"},
		{"out of range", "/v1/path?from=0&to=9", http.StatusBadRequest, nil, 0, "INVALID_INDEX"},
		{"missing", "/v1/path?from=0", http.StatusBadRequest, nil, 0, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, chain(t))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.code != "" {
				if e := decodeError(t, rec); e.Code != tt.code {
					t.Errorf("code = %q, want %q", e.Code, tt.code)
				}
				return
			}
			var got PathResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.Vertices, tt.want) {
				t.Errorf("Vertices = %v, want %v", got.Vertices, tt.want)
			}
			if got.Edges != len(tt.want)-1 {
				t.Errorf("Edges = %d, want %d", got.Edges, len(tt.want)-1)
			}
			if got.Length != tt.length {
				t.Errorf("Length = %v, want %v", got.Length, tt.length)
			}
		})
	}
}

func TestDOT(t *testing.T) {
	s := newTestServer(t, Config{}, nil)

	rec := do(t, s, http.MethodPost, "/v1/dot?rankdir=TB", triangle(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if body := rec.Body.String(); !strings.Contains(body, "digraph skeleton") || !strings.Contains(body, "rankdir=TB") {
		t.Errorf("body =\n%s", body)
	}

	for _, target := range []string{"/v1/dot?format=png", "/v1/dot?rankdir=XY", "/v1/dot?detailed=yes please"} {
		if rec := do(t, s, http.MethodPost, strings.ReplaceAll(target, " ", "%20"), triangle(t)); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestRouting(t *testing.T) {
	s := newTestServer(t, Config{}, nil)

	rec := do(t, s, http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Code != "NOT_FOUND" {
		t.Errorf("GET /nope = %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s, http.MethodGet, "/v1/stats", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/stats = %d, want 405", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/metrics", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET /metrics without gatherer = %d, want 404", rec.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, Config{MaxBodyBytes: 16}, nil)
	rec := do(t, s, http.MethodPost, "/v1/stats", triangle(t))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.SetHTTPHooks(observability.NewMetrics(reg))
	defer observability.Reset()

	s := newTestServer(t, Config{}, reg)
	do(t, s, http.MethodPost, "/v1/stats", triangle(t))

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	want := `skelgraph_http_requests_total{method="POST",route="/v1/stats",status="200"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q:\n%s", want, body)
	}
}
