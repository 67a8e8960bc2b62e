package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/pipeline"
)

const defaultDebounce = 300 * time.Millisecond

func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags    cleanFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [file...]",
		Short: "Clean skeleton files again whenever they change",
		Long: `Clean the given skeleton files, then keep watching them and clean each
one again after it changes. Outputs are written next to the inputs with
--suffix inserted before the extension. Stop with Ctrl-C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cleanOptions()
			flags.apply(cmd, &opts)
			if err := opts.Validate(); err != nil {
				return err
			}
			if flags.suffix == "" {
				return errs.New(errs.ErrCodeInvalidInput, "--suffix cannot be empty")
			}
			for _, p := range args {
				if p == stdio {
					return errs.New(errs.ErrCodeInvalidInput, "watch needs files, not stdin")
				}
			}
			return c.runWatch(cmd.Context(), cmd.ErrOrStderr(), args, opts, &flags, debounce)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.suffix, "suffix", ".clean", "suffix inserted before the output extension")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "quiet period before a changed file is cleaned")
	return cmd
}

// watcher cleans a fixed set of files when they change.
type watcher struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	flags  *cleanFlags
	status io.Writer

	// targets maps the absolute path of each input to its name as given.
	targets map[string]string
}

func (c *CLI) runWatch(ctx context.Context, status io.Writer, paths []string, opts pipeline.Options, flags *cleanFlags, debounce time.Duration) error {
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create watcher")
	}
	defer fw.Close()

	w := &watcher{runner: runner, opts: opts, flags: flags, status: status, targets: map[string]string{}}
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve %s", p)
		}
		w.targets[abs] = p
		dirs[filepath.Dir(abs)] = true
	}
	// Parent directories are watched so that files replaced by a rename stay
	// tracked.
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return errs.Wrap(errs.ErrCodeIO, err, "watch %s", dir)
		}
	}

	w.clean(ctx, paths)
	printInfo(status, "Watching %s", plural(len(paths), "file"))

	pending := map[string]bool{}
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name, tracked := w.targets[filepath.Clean(ev.Name)]
			if !tracked || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			pending[name] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			clear(pending)
			w.clean(ctx, changed)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)
		}
	}
}

// clean runs the pipeline over paths and writes each result. Failures are
// reported and do not stop the watch.
func (w *watcher) clean(ctx context.Context, paths []string) {
	jobs := make([]pipeline.Job, 0, len(paths))
	for _, p := range paths {
		input, err := readInput(p)
		if err != nil {
			printError(w.status, "%s: %s", p, errs.UserMessage(err))
			continue
		}
		jobs = append(jobs, pipeline.Job{Name: p, Input: input})
	}
	results, err := w.runner.ExecuteBatch(ctx, jobs, w.opts, w.flags.workers)
	if err != nil {
		return
	}
	for _, r := range results {
		if r.Err != nil {
			printError(w.status, "%s: %s", r.Name, errs.UserMessage(r.Err))
			continue
		}
		dest := suffixedPath(r.Name, w.flags.suffix)
		if err := writeOutput(io.Discard, dest, r.Result.Output); err != nil {
			printError(w.status, "%s: %s", r.Name, errs.UserMessage(err))
			continue
		}
		printSuccess(w.status, "%s %s %s (%s, %s)", r.Name, iconArrow, dest,
			plural(r.Result.Stats.Vertices, "vertex"), plural(r.Result.Stats.Edges, "edge"))
	}
}

func suffixedPath(input, suffix string) string {
	ext := filepath.Ext(input)
	return input[:len(input)-len(ext)] + suffix + ext
}
