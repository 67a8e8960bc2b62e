package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skelgraph/pkg/geom"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse the vertices of a skeleton interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := g.FindCycles(); err != nil {
				return err
			}
			m := NewVertexListModel(args[0], g)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// =============================================================================
// VertexListModel - Interactive vertex browser
// =============================================================================

// VertexRow is one vertex as shown by the browser.
type VertexRow struct {
	Index    int
	Position geom.Vec3
	Radius   float64
	Degree   int
	InCycle  bool
	Edges    []EdgeRow
}

// EdgeRow is an incident edge of the selected vertex.
type EdgeRow struct {
	Index    int
	Opposite int
	Points   int
	Length   float64
	InCycle  bool
}

// VertexListModel is the bubbletea model for the vertex browser.
type VertexListModel struct {
	Title      string
	Rows       []VertexRow
	Cursor     int
	Offset     int
	Height     int
	CyclesOnly bool
	Expanded   bool
}

// NewVertexListModel builds the browser rows from g. Cycle flags must be
// current.
func NewVertexListModel(title string, g *skeleton.Graph) VertexListModel {
	ix := newIndexer(g)
	rows := make([]VertexRow, 0, len(ix.vertices))
	for i, v := range ix.vertices {
		vx, _ := g.Vertex(v)
		row := VertexRow{
			Index:    i,
			Position: vx.Position,
			Radius:   vx.Radius,
			Degree:   g.Degree(v),
			InCycle:  vx.InCycle,
		}
		for _, e := range g.IncidentEdges(v) {
			ed, _ := g.Edge(e)
			other, _ := g.OppositeVertex(e, v)
			row.Edges = append(row.Edges, EdgeRow{
				Index:    ix.eindex[e],
				Opposite: ix.vindex[other],
				Points:   ed.Curve.Len(),
				Length:   ed.Curve.Length(),
				InCycle:  ed.InCycle,
			})
		}
		rows = append(rows, row)
	}
	return VertexListModel{Title: title, Rows: rows, Height: 15}
}

// visible returns the indices into Rows shown under the current filter.
func (m VertexListModel) visible() []int {
	out := make([]int, 0, len(m.Rows))
	for i, r := range m.Rows {
		if !m.CyclesOnly || r.InCycle {
			out = append(out, i)
		}
	}
	return out
}

// Selected returns the row under the cursor.
func (m VertexListModel) Selected() (VertexRow, bool) {
	vis := m.visible()
	if m.Cursor < 0 || m.Cursor >= len(vis) {
		return VertexRow{}, false
	}
	return m.Rows[vis[m.Cursor]], true
}

func (m VertexListModel) Init() tea.Cmd {
	return nil
}

func (m VertexListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		n := len(m.visible())
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		case "c":
			m.CyclesOnly = !m.CyclesOnly
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m VertexListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ edges  c cycles only  q quit"))
	b.WriteString("\n\n")

	vis := m.visible()
	if len(vis) == 0 {
		b.WriteString(listDimStyle.Render("  no vertices"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(vis))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.Rows[vis[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		cycle := ""
		if r.InCycle {
			cycle = "●"
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(r.Index),
			geom.Compact(r.Position),
			formatFloat(r.Radius),
			strconv.Itoa(r.Degree),
			cycle,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Vertex", "Position", "Radius", "Degree", "Cycle").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(vis) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Rows[vis[idx]].InCycle && col == 5 {
				base = base.Foreground(colorRed)
			}
			if idx == m.Cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(vis))))
	b.WriteString("\n")

	if sel, ok := m.Selected(); ok && m.Expanded {
		b.WriteString("\n")
		if len(sel.Edges) == 0 {
			b.WriteString(listDimStyle.Render("  isolated vertex"))
			b.WriteString("\n")
		}
		for _, e := range sel.Edges {
			line := fmt.Sprintf("  edge %d %s vertex %d  %s  length %s",
				e.Index, iconArrow, e.Opposite, plural(e.Points, "point"), formatFloat(e.Length))
			if e.InCycle {
				line = StyleCycle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return b.String()
}
