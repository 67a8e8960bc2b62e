package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skelgraph/pkg/pipeline"
	"github.com/matzehuels/skelgraph/pkg/render/nodelink"
)

// visualizeCommand creates the visualize command for rendering the topology.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		format  string
		output  string
		noCache bool
		opts    nodelink.Options
	)

	cmd := &cobra.Command{
		Use:   "visualize [file]",
		Short: "Render the skeleton topology as a DOT or SVG diagram",
		Long: `Render the skeleton topology as a node-link diagram.

Vertices are labelled with their index, degree and radius; edges with their
number of curve points. Vertices and edges on a cycle are highlighted. The
DOT output can be fed to Graphviz; SVG is rendered in-process.

When --output is omitted the diagram goes to stdout for DOT, and next to the
input with an .svg extension for SVG. Results are cached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = formatFromPath(output)
			}
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			opts.RankDir = strings.ToUpper(opts.RankDir)
			if err := opts.Validate(); err != nil {
				return err
			}
			return c.runVisualize(cmd, args[0], format, output, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: dot (default), svg")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add positions and curve lengths to labels")
	cmd.Flags().BoolVar(&opts.CyclesOnly, "cycles-only", false, "only draw vertices and edges on a cycle")
	cmd.Flags().StringVar(&opts.RankDir, "rankdir", "", "layout direction: LR (default), TB, BT, RL")

	return cmd
}

func (c *CLI) runVisualize(cmd *cobra.Command, input, format, output string, opts nodelink.Options, noCache bool) error {
	ctx := cmd.Context()
	data, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	out, cacheHit, err := renderDiagram(ctx, cmd, runner, data, format, opts)
	if err != nil {
		return err
	}

	if output == "" && format == pipeline.FormatSVG && input != stdio {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}
	if err := writeOutput(c.out, output, out); err != nil {
		return err
	}
	if output != "" && output != stdio {
		status := cmd.ErrOrStderr()
		if cacheHit {
			printSuccess(status, "Rendered %s (%s)", format, iconCached)
		} else {
			printSuccess(status, "Rendered %s", format)
		}
		printFile(status, output)
	}
	return nil
}

func renderDiagram(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, data []byte, format string, opts nodelink.Options) ([]byte, bool, error) {
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %s...", format))
	spinner.Start()
	out, hit, err := runner.Diagram(ctx, data, format, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return nil, false, fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()
	return out, hit, nil
}

// formatFromPath infers the format from an output file extension.
func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return pipeline.FormatSVG
	}
	return pipeline.FormatDOT
}
