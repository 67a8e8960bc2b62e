package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/skelgraph/pkg/geom"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

// lollipop is a triangle 0-1-2 with a tail 2-3.
func lollipop(t *testing.T) *skeleton.Graph {
	t.Helper()
	g := skeleton.New()
	var vs []skeleton.VertexID
	for _, p := range []geom.Vec3{geom.V(0, 0, 0), geom.V(1, 0, 0), geom.V(0, 1, 0), geom.V(0, 3, 0)} {
		vs = append(vs, g.AddVertex(skeleton.Vertex{Position: p}))
	}
	for _, p := range [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}} {
		if _, err := g.AddEdge(vs[p[0]], vs[p[1]]); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.FindCycles(); err != nil {
		t.Fatal(err)
	}
	return g
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m VertexListModel, keys ...string) VertexListModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(VertexListModel)
	}
	return m
}

func TestNewVertexListModel(t *testing.T) {
	m := NewVertexListModel("lollipop", lollipop(t))
	if len(m.Rows) != 4 {
		t.Fatalf("len(Rows) = %d, want 4", len(m.Rows))
	}
	tests := []struct {
		index   int
		degree  int
		inCycle bool
	}{
		{0, 2, true},
		{1, 2, true},
		{2, 3, true},
		{3, 1, false},
	}
	for _, tt := range tests {
		r := m.Rows[tt.index]
		if r.Index != tt.index || r.Degree != tt.degree || r.InCycle != tt.inCycle || len(r.Edges) != tt.degree {
			t.Errorf("Rows[%d] = %+v, want degree %d, cycle %v", tt.index, r, tt.degree, tt.inCycle)
		}
	}
	tail := m.Rows[3].Edges[0]
	if tail.Index != 3 || tail.Opposite != 2 || tail.Points != 2 || tail.Length != 2 || tail.InCycle {
		t.Errorf("tail edge = %+v", tail)
	}
}

func TestVertexListNavigation(t *testing.T) {
	m := NewVertexListModel("lollipop", lollipop(t))
	m.Height = 2

	m = send(m, "down", "j", "down")
	if m.Cursor != 3 || m.Offset != 2 {
		t.Errorf("after three downs Cursor, Offset = %d, %d, want 3, 2", m.Cursor, m.Offset)
	}
	m = send(m, "down")
	if m.Cursor != 3 {
		t.Errorf("Cursor moved past the end: %d", m.Cursor)
	}
	m = send(m, "up", "k", "up", "up")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("after four ups Cursor, Offset = %d, %d, want 0, 0", m.Cursor, m.Offset)
	}
}

func TestVertexListCyclesOnly(t *testing.T) {
	m := NewVertexListModel("lollipop", lollipop(t))
	m = send(m, "down", "down", "down", "c")
	if !m.CyclesOnly || m.Cursor != 0 {
		t.Fatalf("CyclesOnly = %v, Cursor = %d", m.CyclesOnly, m.Cursor)
	}
	m = send(m, "down", "down", "down")
	sel, ok := m.Selected()
	if !ok || sel.Index != 2 {
		t.Errorf("Selected() = %+v, %v, want vertex 2", sel, ok)
	}
}

func TestVertexListView(t *testing.T) {
	m := NewVertexListModel("lollipop", lollipop(t))
	view := m.View()
	for _, want := range []string{"lollipop", "Vertex", "Degree", "0 3 0", "[1/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "edge 3") {
		t.Errorf("collapsed View() shows edges:\n%s", view)
	}

	m = send(m, "down", "down", "down", "enter")
	if view := m.View(); !strings.Contains(view, "edge 3") || !strings.Contains(view, "vertex 2") {
		t.Errorf("expanded View() missing the tail edge:\n%s", view)
	}
}

func TestVertexListQuit(t *testing.T) {
	m := NewVertexListModel("lollipop", lollipop(t))
	for _, k := range []string{"q", "esc"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Errorf("Update(%q) returned no command", k)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("Update(%q) did not quit", k)
		}
	}
}

func TestVertexListWindowSize(t *testing.T) {
	m := NewVertexListModel("lollipop", lollipop(t))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	if got := next.(VertexListModel).Height; got != 28 {
		t.Errorf("Height = %d, want 28", got)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if got := next.(VertexListModel).Height; got != 5 {
		t.Errorf("Height = %d, want 5", got)
	}
}
