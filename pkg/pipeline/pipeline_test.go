package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skelgraph/pkg/cache"
	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/geom"
	skelio "github.com/matzehuels/skelgraph/pkg/io"
	"github.com/matzehuels/skelgraph/pkg/render/nodelink"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
	"github.com/matzehuels/skelgraph/pkg/skeleton/simplify"
)

// chainInput exports a straight chain 0-1-2-3 plus one isolated vertex.
func chainInput(t *testing.T) []byte {
	t.Helper()
	g := skeleton.New()
	var vs []skeleton.VertexID
	for i := 0; i < 4; i++ {
		vs = append(vs, g.AddVertex(skeleton.Vertex{Position: geom.V(float64(i), 0, 0)}))
	}
	g.AddVertex(skeleton.Vertex{Position: geom.V(9, 9, 9)})
	for i := 0; i < 3; i++ {
		if _, err := g.AddEdge(vs[i], vs[i+1]); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := skelio.Export(g, &buf, 1); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// triangleInput exports a 3-cycle with a tail.
func triangleInput(t *testing.T) []byte {
	t.Helper()
	g := skeleton.New()
	a := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 0, 0)})
	b := g.AddVertex(skeleton.Vertex{Position: geom.V(1, 0, 0)})
	c := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 1, 0)})
	d := g.AddVertex(skeleton.Vertex{Position: geom.V(0, 2, 0)})
	for _, p := range [][2]skeleton.VertexID{{a, b}, {b, c}, {c, a}, {c, d}} {
		if _, err := g.AddEdge(p[0], p[1]); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := skelio.Export(g, &buf, 2); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func cleanOpts() Options {
	return Options{Clean: simplify.Options{MinPoints: 3, PruneDegrees: []int{0}}}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"DOT", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero", Options{}, false},
		{"clean", cleanOpts(), false},
		{"negative scale", Options{Scale: -1}, true},
		{"bad min points", Options{Clean: simplify.Options{MinPoints: 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKeyOptsDependOnCleanOptions(t *testing.T) {
	k := cache.NewDefaultKeyer()
	a, b := cleanOpts(), cleanOpts()
	b.Clean.MinLength = 0.5
	if k.CleanKey("h", a.KeyOpts()) == k.CleanKey("h", b.KeyOpts()) {
		t.Error("CleanKey() ignores MinLength")
	}
}

func TestAnalyze(t *testing.T) {
	g := skeleton.New()
	if _, err := skelio.Import(bytes.NewReader(triangleInput(t)), g, nil); err != nil {
		t.Fatal(err)
	}
	s, err := Analyze(g, 2)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if s.Vertices != 4 || s.Edges != 4 || s.Points != 8 {
		t.Errorf("counts = %d/%d/%d, want 4/4/8", s.Vertices, s.Edges, s.Points)
	}
	if s.Components != 1 || s.CycleVertices != 3 || s.CycleEdges != 3 {
		t.Errorf("components = %d, cycle = %d/%d; want 1, 3/3", s.Components, s.CycleVertices, s.CycleEdges)
	}
	if s.Degrees[1] != 1 || s.Degrees[2] != 2 || s.Degrees[3] != 1 {
		t.Errorf("Degrees = %v, want {1:1 2:2 3:1}", s.Degrees)
	}
	if s.Scale != 2 {
		t.Errorf("Scale = %v, want 2", s.Scale)
	}
}

func TestExecute(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	r := NewRunner(c, nil, log.NewWithOptions(&logs, log.Options{}))
	defer r.Close()
	ctx := context.Background()
	input := chainInput(t)

	first, err := r.Execute(ctx, input, cleanOpts())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheHit {
		t.Error("first run hit the cache")
	}
	if first.Stats.Vertices != 2 || first.Stats.Edges != 1 || first.Stats.Points != 3 {
		t.Errorf("stats = %+v, want a single 3-point edge", first.Stats)
	}
	if first.Report.Collapsed != 1 || first.Report.Spliced != 1 || first.Report.Pruned != 1 {
		t.Errorf("report = %+v, want 1 collapsed, 1 spliced and 1 pruned", first.Report)
	}
	if err := first.Graph.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if !strings.Contains(logs.String(), "cleaned skeleton") {
		t.Errorf("log output missing summary:\n%s", logs.String())
	}

	second, err := r.Execute(ctx, input, cleanOpts())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !second.CacheHit {
		t.Error("second run missed the cache")
	}
	if !bytes.Equal(first.Output, second.Output) {
		t.Errorf("cached output differs:\n%s\n---\n%s", first.Output, second.Output)
	}
	if second.Stats.Edges != 1 {
		t.Errorf("cached stats = %+v", second.Stats)
	}

	refreshed, err := r.Execute(ctx, input, Options{Clean: cleanOpts().Clean, Refresh: true})
	if err != nil {
		t.Fatalf("Execute(refresh) error = %v", err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh still hit the cache")
	}
}

func TestExecuteScaleOverride(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), triangleInput(t), Options{Scale: 0.25})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Scale != 0.25 || !bytes.HasPrefix(res.Output, []byte("<scale>0.25</scale>\n")) {
		t.Errorf("scale = %v, output starts %q", res.Scale, res.Output[:20])
	}
	if res.Stats.CycleEdges != 3 {
		t.Errorf("CycleEdges = %d, want 3", res.Stats.CycleEdges)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	_, err := r.Execute(context.Background(), chainInput(t), Options{Scale: -2})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Execute(bad scale) error = %v, want invalid input", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Execute(ctx, chainInput(t), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute(canceled) error = %v, want context.Canceled", err)
	}
}

func TestStats(t *testing.T) {
	c, err := cache.NewBadgerCache(cache.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()
	ctx := context.Background()

	s, hit, err := r.Stats(ctx, triangleInput(t))
	if err != nil || hit {
		t.Fatalf("Stats() hit = %v, err = %v", hit, err)
	}
	cached, hit, err := r.Stats(ctx, triangleInput(t))
	if err != nil || !hit {
		t.Fatalf("Stats() second call hit = %v, err = %v", hit, err)
	}
	if cached.CycleEdges != s.CycleEdges || cached.Degrees[3] != 1 {
		t.Errorf("cached stats = %+v, want %+v", cached, s)
	}
}

func TestDiagram(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	dot, hit, err := r.Diagram(ctx, triangleInput(t), FormatDOT, nodelink.Options{})
	if err != nil || hit {
		t.Fatalf("Diagram() hit = %v, err = %v", hit, err)
	}
	if !strings.HasPrefix(string(dot), "digraph skeleton {") || strings.Count(string(dot), "penwidth=2") != 3 {
		t.Errorf("Diagram() =\n%s", dot)
	}

	if _, _, err := r.Diagram(ctx, triangleInput(t), "png", nodelink.Options{}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Diagram(png) error = %v, want invalid input", err)
	}
}

func TestExecuteBatch(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	jobs := []Job{
		{Name: "chain", Input: chainInput(t)},
		{Name: "triangle", Input: triangleInput(t)},
		{Name: "empty", Input: nil},
	}

	results, err := r.ExecuteBatch(context.Background(), jobs, cleanOpts(), 2)
	if err != nil {
		t.Fatalf("ExecuteBatch() error = %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(jobs))
	}
	for i, res := range results {
		if res.Name != jobs[i].Name {
			t.Errorf("results[%d].Name = %q, want %q", i, res.Name, jobs[i].Name)
		}
		if res.Err != nil {
			t.Errorf("%s: error = %v", res.Name, res.Err)
		}
	}
	if got := results[0].Result.Stats.Edges; got != 1 {
		t.Errorf("chain edges = %d, want 1", got)
	}
	if got := results[2].Result.Stats.Vertices; got != 0 {
		t.Errorf("empty vertices = %d, want 0", got)
	}
	if len(Failed(results)) != 0 {
		t.Errorf("Failed() = %v, want none", Failed(results))
	}
}

func TestExecuteBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, nil, nil)

	results, err := r.ExecuteBatch(ctx, []Job{{Name: "a", Input: chainInput(t)}}, Options{}, 1)
	if err != context.Canceled {
		t.Errorf("ExecuteBatch() error = %v, want context.Canceled", err)
	}
	if len(Failed(results)) != 1 {
		t.Errorf("Failed() = %d results, want 1", len(Failed(results)))
	}
}
