package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one input of a batch.
type Job struct {
	Name  string
	Input []byte
}

// BatchResult pairs a job with its outcome. Exactly one of Result and Err is
// set.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// ExecuteBatch runs Execute on every job with at most workers running at
// once (DefaultWorkers when workers <= 0). Results keep the order of jobs.
// A failing job does not stop the others; only cancellation of ctx aborts
// the batch, in which case ctx.Err() is returned with the partial results.
func (r *Runner) ExecuteBatch(ctx context.Context, jobs []Job, opts Options, workers int) ([]BatchResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	out := make([]BatchResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			out[i] = BatchResult{Name: job.Name, Err: gctx.Err()}
			continue
		}
		g.Go(func() error {
			res, err := r.Execute(gctx, job.Input, opts)
			out[i] = BatchResult{Name: job.Name, Result: res, Err: err}
			if err != nil {
				r.Logger.Error("batch job failed", "job", job.Name, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, ctx.Err()
}

// Failed returns the results that carry an error.
func Failed(results []BatchResult) []BatchResult {
	var failed []BatchResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
