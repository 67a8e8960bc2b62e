package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skelgraph/pkg/pipeline"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// info
// =============================================================================

func (c *CLI) infoCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "info [file]",
		Short: "Print skeleton statistics",
		Long: `Print the size, connectivity and cycle statistics of a skeleton file.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd.Context(), args[0], asJSON, noCache)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runInfo(ctx context.Context, path string, asJSON, noCache bool) error {
	input, err := readInput(path)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	stats, cached, err := runner.Stats(ctx, input)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(c.out, stats)
	}
	printStatsTable(c.out, path, stats, cached)
	return nil
}

func printStatsTable(w io.Writer, name string, s pipeline.Stats, cached bool) {
	fmt.Fprintln(w, StyleTitle.Render(name))
	printStats(w, s.Vertices, s.Edges, s.Points, cached)
	fmt.Fprintln(w)
	printKeyValue(w, "components", strconv.Itoa(s.Components))
	printKeyValue(w, "cycle vertices", strconv.Itoa(s.CycleVertices))
	printKeyValue(w, "cycle edges", strconv.Itoa(s.CycleEdges))
	printKeyValue(w, "total length", formatFloat(s.TotalLength))
	printKeyValue(w, "scale", formatFloat(s.Scale))

	degrees := make([]int, 0, len(s.Degrees))
	for d := range s.Degrees {
		degrees = append(degrees, d)
	}
	sort.Ints(degrees)
	for _, d := range degrees {
		printKeyValue(w, fmt.Sprintf("degree %d", d), strconv.Itoa(s.Degrees[d]))
	}
}

// =============================================================================
// cycles
// =============================================================================

// CycleReport lists the cycle members of a skeleton by export index.
type CycleReport struct {
	Vertices []int       `json:"vertices"`
	Edges    []CycleEdge `json:"edges"`
}

// CycleEdge is an edge on a cycle.
type CycleEdge struct {
	Index  int `json:"index"`
	Source int `json:"source"`
	Target int `json:"target"`
}

func (c *CLI) cyclesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "cycles [file]",
		Short: "List the vertices and edges that lie on a cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			report, err := findCycles(g)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(c.out, report)
			}
			if len(report.Edges) == 0 {
				printInfo(c.out, "No cycles")
				return nil
			}
			printSuccess(c.out, "%s and %s on cycles", plural(len(report.Vertices), "vertex"), plural(len(report.Edges), "edge"))
			printKeyValue(c.out, "vertices", StyleCycle.Render(joinInts(report.Vertices)))
			for _, e := range report.Edges {
				printDetail(c.out, "edge %d: %d %s %d", e.Index, e.Source, iconArrow, e.Target)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func findCycles(g *skeleton.Graph) (CycleReport, error) {
	if err := g.FindCycles(); err != nil {
		return CycleReport{}, err
	}
	ix := newIndexer(g)
	report := CycleReport{
		Vertices: ix.vertexIndices(g.CycleVertices()),
		Edges:    []CycleEdge{},
	}
	for _, e := range g.CycleEdges() {
		s, t := g.Endpoints(e)
		report.Edges = append(report.Edges, CycleEdge{
			Index:  ix.eindex[e],
			Source: ix.vindex[s],
			Target: ix.vindex[t],
		})
	}
	return report, nil
}

// =============================================================================
// path
// =============================================================================

// PathReport is the result of the path command.
type PathReport struct {
	Vertices []int   `json:"vertices"`
	Edges    int     `json:"edges"`
	Length   float64 `json:"length"`
}

func (c *CLI) pathCommand() *cobra.Command {
	var (
		byEdge bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "path [file] [from] [to]",
		Short: "Find the shortest path between two vertices",
		Long: `Find the path with the fewest edges between two vertices, given by their
index in the file. With --edges, from and to are edge indices and the path
joins their closest endpoints.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := c.loadGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			report, err := shortestPath(g, args[1], args[2], byEdge)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(c.out, report)
			}
			printSuccess(c.out, "%s, length %s", plural(report.Edges, "edge"), formatFloat(report.Length))
			printKeyValue(c.out, "vertices", joinInts(report.Vertices))
			return nil
		},
	}
	cmd.Flags().BoolVar(&byEdge, "edges", false, "treat from and to as edge indices")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func shortestPath(g *skeleton.Graph, from, to string, byEdge bool) (PathReport, error) {
	ix := newIndexer(g)
	var path []skeleton.VertexID
	if byEdge {
		a, err := ix.edge(from)
		if err != nil {
			return PathReport{}, err
		}
		b, err := ix.edge(to)
		if err != nil {
			return PathReport{}, err
		}
		path, err = g.ShortestPathBetweenEdges(a, b)
		if err != nil {
			return PathReport{}, err
		}
	} else {
		a, err := ix.vertex(from)
		if err != nil {
			return PathReport{}, err
		}
		b, err := ix.vertex(to)
		if err != nil {
			return PathReport{}, err
		}
		path, err = g.ShortestPath(a, b)
		if err != nil {
			return PathReport{}, err
		}
	}

	report := PathReport{Vertices: ix.vertexIndices(path), Edges: len(path) - 1}
	if len(path) > 1 {
		curve, err := g.PathCurve(path)
		if err != nil {
			return PathReport{}, err
		}
		report.Length = curve.Length()
	}
	return report, nil
}

// loadGraph reads and imports a skeleton file without caching.
func (c *CLI) loadGraph(ctx context.Context, path string) (*skeleton.Graph, float64, error) {
	input, err := readInput(path)
	if err != nil {
		return nil, 0, err
	}
	return pipeline.NewRunner(nil, nil, c.Logger).Load(ctx, input)
}
