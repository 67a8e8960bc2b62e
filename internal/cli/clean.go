package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/pipeline"
)

// cleanFlags holds the clean command-line flags. Flags left unset keep the
// value from the config file.
type cleanFlags struct {
	minLength    float64
	minPoints    int
	pruneDegrees []int
	maxRounds    int
	scale        float64
	output       string
	suffix       string
	inPlace      bool
	workers      int
	noCache      bool
	refresh      bool
}

func (f *cleanFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.minLength, "min-length", 0, "collapse junction edges shorter than this (0 disables)")
	cmd.Flags().IntVar(&f.minPoints, "min-points", 0, "collapse and splice edges with fewer curve points (0 disables)")
	cmd.Flags().IntSliceVar(&f.pruneDegrees, "prune-degree", nil, "remove vertices of these degrees after cleaning")
	cmd.Flags().IntVar(&f.maxRounds, "max-rounds", 0, "bound on cleanup rounds (0 uses the default)")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "scale to write (0 keeps the input's)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached result exists")
}

// apply overrides opts with the flags the user set.
func (f *cleanFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("min-length") {
		opts.Clean.MinLength = f.minLength
	}
	if flags.Changed("min-points") {
		opts.Clean.MinPoints = f.minPoints
	}
	if flags.Changed("prune-degree") {
		opts.Clean.PruneDegrees = f.pruneDegrees
	}
	if flags.Changed("max-rounds") {
		opts.Clean.MaxRounds = f.maxRounds
	}
	if flags.Changed("scale") {
		opts.Scale = f.scale
	}
	opts.Refresh = f.refresh
}

func (c *CLI) cleanCommand() *cobra.Command {
	var flags cleanFlags

	cmd := &cobra.Command{
		Use:   "clean [file...]",
		Short: "Simplify skeletons by collapsing short edges and pruning vertices",
		Long: `Simplify one or more skeleton files.

Each file goes through the cleanup passes until nothing changes: junction
edges shorter than --min-length and edges with fewer than --min-points curve
points are collapsed, the joints this leaves behind are dissolved, and finally
vertices of the --prune-degree degrees are removed. Defaults come from the
[clean] table of the config file.

A single file is written to stdout or to --output. Several files are cleaned
in parallel and each result is written next to its input with --suffix
inserted before the extension, or over the input with --in-place.

Results are cached, so cleaning an unchanged file again is instant.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cleanOptions()
			flags.apply(cmd, &opts)
			if err := opts.Validate(); err != nil {
				return err
			}
			if len(args) > 1 && flags.output != "" {
				return errs.New(errs.ErrCodeInvalidInput, "--output needs a single input; use --suffix or --in-place")
			}
			return c.runClean(cmd.Context(), cmd.ErrOrStderr(), args, opts, &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single input)")
	cmd.Flags().StringVar(&flags.suffix, "suffix", ".clean", "suffix for outputs of several inputs")
	cmd.Flags().BoolVar(&flags.inPlace, "in-place", false, "overwrite the inputs")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", pipeline.DefaultWorkers, "files cleaned in parallel")
	return cmd
}

func (c *CLI) runClean(ctx context.Context, status io.Writer, paths []string, opts pipeline.Options, flags *cleanFlags) error {
	jobs := make([]pipeline.Job, len(paths))
	for i, p := range paths {
		input, err := readInput(p)
		if err != nil {
			return err
		}
		jobs[i] = pipeline.Job{Name: p, Input: input}
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, status, fmt.Sprintf("Cleaning %s...", plural(len(jobs), "file")))
	spinner.Start()
	results, err := runner.ExecuteBatch(ctx, jobs, opts, flags.workers)
	spinner.Stop()
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			printError(status, "%s: %s", r.Name, errs.UserMessage(r.Err))
			continue
		}
		dest := outputPath(r.Name, flags, len(results))
		if err := writeOutput(c.out, dest, r.Result.Output); err != nil {
			return err
		}
		rep := r.Result.Report
		if r.Result.CacheHit {
			printSuccess(status, "%s", r.Name)
		} else {
			printSuccess(status, "%s: removed %s in %s", r.Name, plural(rep.Removed(), "element"), plural(rep.Rounds, "round"))
		}
		printStats(status, r.Result.Stats.Vertices, r.Result.Stats.Edges, r.Result.Stats.Points, r.Result.CacheHit)
		if dest != "" && dest != stdio {
			printFile(status, dest)
		}
	}

	failed := pipeline.Failed(results)
	prog.done("clean finished", "files", len(results), "failed", len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(results))
	}
	return nil
}

// outputPath picks where a cleaned file goes. An empty result means stdout.
func outputPath(input string, flags *cleanFlags, n int) string {
	switch {
	case flags.inPlace && input != stdio:
		return input
	case n == 1:
		return flags.output
	case input == stdio:
		return ""
	}
	return suffixedPath(input, flags.suffix)
}
