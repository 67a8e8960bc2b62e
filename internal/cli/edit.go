package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/geom"
	skelio "github.com/matzehuels/skelgraph/pkg/io"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
)

// editFlags are shared by every edit subcommand.
type editFlags struct {
	output  string
	inPlace bool
}

// editFunc applies one edit and returns a one-line summary.
type editFunc func(g *skeleton.Graph, ix *indexer) (string, error)

func (c *CLI) editCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Apply a topology edit to a skeleton file",
		Long: `Apply a single topology edit to a skeleton file.

Vertices and edges are named by their index in the file. The edited skeleton
is written to stdout, to --output, or over the input with --in-place.`,
	}

	cmd.AddCommand(c.editSplitCommand())
	cmd.AddCommand(c.editCutCommand())
	cmd.AddCommand(c.editCollapseCommand())
	cmd.AddCommand(c.editMergeCommand())
	cmd.AddCommand(c.editJoinCommand())
	cmd.AddCommand(c.editDissolveCommand())
	cmd.AddCommand(c.editMoveCommand())
	return cmd
}

func (f *editFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&f.inPlace, "in-place", false, "overwrite the input file")
}

// runEdit loads path, applies fn, checks the result and writes it out.
func (c *CLI) runEdit(cmd *cobra.Command, path string, flags *editFlags, fn editFunc) error {
	if flags.inPlace && path == stdio {
		return errs.New(errs.ErrCodeInvalidInput, "--in-place needs a file, not stdin")
	}
	g, scale, err := c.loadGraph(cmd.Context(), path)
	if err != nil {
		return err
	}
	summary, err := fn(g, newIndexer(g))
	if err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvariant, err, "edited skeleton")
	}
	if c.Config.Export.Scale != 0 {
		scale = c.Config.Export.Scale
	}

	var buf bytes.Buffer
	if err := skelio.Export(g, &buf, scale); err != nil {
		return err
	}
	dest := flags.output
	if flags.inPlace {
		dest = path
	}
	if err := writeOutput(c.out, dest, buf.Bytes()); err != nil {
		return err
	}

	status := cmd.ErrOrStderr()
	printSuccess(status, "%s", summary)
	printStats(status, g.VertexCount(), g.EdgeCount(), g.PointCount(), false)
	if dest != "" && dest != stdio {
		printFile(status, dest)
	}
	return nil
}

// segmentPosition returns pos when set, else the midpoint of the segment.
func segmentPosition(g *skeleton.Graph, e skeleton.EdgeID, segArg, pos string) (int, geom.Vec3, error) {
	ed, _ := g.Edge(e)
	seg, err := parseIndex("segment", segArg, ed.Curve.Len()-1)
	if err != nil {
		return 0, geom.Vec3{}, err
	}
	if pos != "" {
		p, err := parseVec(pos)
		return seg, p, err
	}
	return seg, geom.Midpoint(ed.Curve.Point(seg), ed.Curve.Point(seg+1)), nil
}

func parseKeep(s string) (skeleton.CollapseOption, error) {
	opt, err := skeleton.ParseCollapseOption(s)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "--keep")
	}
	return opt, nil
}

func (c *CLI) editSplitCommand() *cobra.Command {
	var (
		flags editFlags
		at    string
	)
	cmd := &cobra.Command{
		Use:   "split [file] [edge] [segment]",
		Short: "Split an edge in two at a new joint",
		Long: `Insert a joint on the given segment of an edge (between curve points
segment and segment+1) and replace the edge by two edges meeting there. The
joint goes to the middle of the segment unless --at is given.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], &flags, func(g *skeleton.Graph, ix *indexer) (string, error) {
				e, err := ix.edge(args[1])
				if err != nil {
					return "", err
				}
				seg, pos, err := segmentPosition(g, e, args[2], at)
				if err != nil {
					return "", err
				}
				res, err := g.SplitEdgeAt(e, seg, pos)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Split edge %s at %s", args[1], geom.Compact(g.Position(res.Vertex))), nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&at, "at", "", "joint position as x,y,z")
	return cmd
}

func (c *CLI) editCutCommand() *cobra.Command {
	var (
		flags editFlags
		at    string
	)
	cmd := &cobra.Command{
		Use:   "cut [file] [edge] [segment]",
		Short: "Cut an edge open around a point",
		Long: `Open a gap in an edge around a point on the given segment. Two tips are
created one unit either side of the point and the curve between them is
removed.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], &flags, func(g *skeleton.Graph, ix *indexer) (string, error) {
				e, err := ix.edge(args[1])
				if err != nil {
					return "", err
				}
				seg, pos, err := segmentPosition(g, e, args[2], at)
				if err != nil {
					return "", err
				}
				if _, err := g.CutEdgeAt(e, seg, pos); err != nil {
					return "", err
				}
				return fmt.Sprintf("Cut edge %s at %s", args[1], geom.Compact(pos)), nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&at, "at", "", "cut position as x,y,z")
	return cmd
}

func (c *CLI) editCollapseCommand() *cobra.Command {
	var (
		flags editFlags
		keep  string
	)
	cmd := &cobra.Command{
		Use:   "collapse [file] [edge]",
		Short: "Collapse an edge into one of its endpoints",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], &flags, func(g *skeleton.Graph, ix *indexer) (string, error) {
				opt, err := parseKeep(keep)
				if err != nil {
					return "", err
				}
				e, err := ix.edge(args[1])
				if err != nil {
					return "", err
				}
				res, err := g.CollapseEdge(e, opt)
				if err != nil {
					return "", err
				}
				return collapseSummary("Collapsed edge "+args[1], res), nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&keep, "keep", "source", "surviving endpoint: source, target or midpoint")
	return cmd
}

func (c *CLI) editMergeCommand() *cobra.Command {
	var (
		flags editFlags
		keep  string
	)
	cmd := &cobra.Command{
		Use:   "merge [file] [vertex] [vertex]",
		Short: "Merge two vertices into one",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], &flags, func(g *skeleton.Graph, ix *indexer) (string, error) {
				opt, err := parseKeep(keep)
				if err != nil {
					return "", err
				}
				a, err := ix.vertex(args[1])
				if err != nil {
					return "", err
				}
				b, err := ix.vertex(args[2])
				if err != nil {
					return "", err
				}
				res, err := g.MergeVertices(a, b, opt)
				if err != nil {
					return "", err
				}
				return collapseSummary(fmt.Sprintf("Merged vertices %s and %s", args[1], args[2]), res), nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&keep, "keep", "source", "surviving vertex: source (first), target (second) or midpoint")
	return cmd
}

func collapseSummary(prefix string, res skeleton.CollapseResult) string {
	s := fmt.Sprintf("%s, rerouted %s", prefix, plural(len(res.Added), "edge"))
	if res.Dropped > 0 {
		s += fmt.Sprintf(", dropped %s", plural(res.Dropped, "parallel edge"))
	}
	return s
}

func (c *CLI) editJoinCommand() *cobra.Command {
	var (
		flags        editFlags
		displacement float64
	)
	cmd := &cobra.Command{
		Use:   "join [file] [edge] [edge]",
		Short: "Join two edges along the shortest path between them",
		Long: `Replace two edges by a single edge that runs from the far end of the first,
along the shortest path between their closest endpoints, to the far end of
the second. --displacement arc-length units are trimmed off each edge at the
joined end. Path vertices left with degree 2 are dissolved.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("displacement") {
				displacement = c.Config.Join.Displacement
			}
			if err := errs.ValidateThreshold("displacement", displacement); err != nil {
				return err
			}
			return c.runEdit(cmd, args[0], &flags, func(g *skeleton.Graph, ix *indexer) (string, error) {
				a, err := ix.edge(args[1])
				if err != nil {
					return "", err
				}
				b, err := ix.edge(args[2])
				if err != nil {
					return "", err
				}
				ch, err := g.SplitPath(a, b, displacement)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Joined edges %s and %s, removed %s", args[1], args[2],
					plural(len(ch.RemovedEdges), "edge")), nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64Var(&displacement, "displacement", 0, "arc length trimmed at each joined end")
	return cmd
}

func (c *CLI) editDissolveCommand() *cobra.Command {
	var (
		flags editFlags
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "dissolve [file] [vertex...]",
		Short: "Remove degree-2 vertices and merge their edges",
		Long: `Remove the given degree-2 vertices, or every degree-2 vertex with --all,
splicing each pair of curves into a single edge.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) < 2 {
				return errs.New(errs.ErrCodeInvalidInput, "name at least one vertex or use --all")
			}
			return c.runEdit(cmd, args[0], &flags, func(g *skeleton.Graph, ix *indexer) (string, error) {
				if len(args) == 2 && !all {
					v, err := ix.vertex(args[1])
					if err != nil {
						return "", err
					}
					if _, err := g.RemoveDegree2VertexAndMergeEdges(v); err != nil {
						return "", err
					}
					return "Dissolved vertex " + args[1], nil
				}
				candidates := ix.vertices
				if !all {
					candidates = nil
					for _, arg := range args[1:] {
						v, err := ix.vertex(arg)
						if err != nil {
							return "", err
						}
						candidates = append(candidates, v)
					}
				}
				ch, err := g.RemoveVerticesOfDegree2AndMergeEdges(candidates)
				if err != nil {
					return "", err
				}
				return "Dissolved " + plural(len(ch.RemovedVertices), "vertex"), nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "dissolve every degree-2 vertex")
	return cmd
}

func (c *CLI) editMoveCommand() *cobra.Command {
	var (
		flags         editFlags
		maintainShape bool
	)
	cmd := &cobra.Command{
		Use:   "move [file] [vertex] [x,y,z]",
		Short: "Move a vertex and deform its curves to follow",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parseVec(args[2])
			if err != nil {
				return err
			}
			return c.runEdit(cmd, args[0], &flags, func(g *skeleton.Graph, ix *indexer) (string, error) {
				v, err := ix.vertex(args[1])
				if err != nil {
					return "", err
				}
				if err := g.UpdateVertexPosition(v, pos, maintainShape); err != nil {
					return "", err
				}
				return fmt.Sprintf("Moved vertex %s to %s", args[1], geom.Compact(pos)), nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&maintainShape, "maintain-shape", false, "keep curve shape when deforming whole curves")
	return cmd
}
