// Package pipeline chains the skeleton stages for the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline has four stages:
//
//  1. Load: read the flat text export into a fresh graph
//  2. Clean: run the simplifier passes to a fixpoint
//  3. Analyze: tag cycles and count components
//  4. Export: write the cleaned graph back to the flat text format
//
// The exported bytes are cached under a key built from the input hash and the
// cleanup options, so a repeated request is answered without loading the
// input at all.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	res, err := runner.Execute(ctx, input, pipeline.Options{
//	    Clean: simplify.Options{MinPoints: 3, PruneDegrees: []int{0}},
//	})
//	os.Stdout.Write(res.Output)
//
// Several inputs can be cleaned concurrently with [Runner.ExecuteBatch].
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skelgraph/pkg/cache"
	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
	"github.com/matzehuels/skelgraph/pkg/skeleton/simplify"
)

// Diagram formats produced by [Runner.Diagram].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported diagram formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// DefaultWorkers bounds ExecuteBatch when no limit is given.
const DefaultWorkers = 4

// ValidateFormat checks that a diagram format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be dot or svg)", format)
	}
	return nil
}

// Options configures a pipeline run.
type Options struct {
	// Clean selects the simplifier passes.
	Clean simplify.Options `json:"clean"`

	// Scale overrides the scale written to the output. Zero keeps the
	// scale read from the input.
	Scale float64 `json:"scale,omitempty"`

	// Refresh skips the cache lookup but still stores the new result.
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// Validate checks the option values.
func (o *Options) Validate() error {
	if err := o.Clean.Validate(); err != nil {
		return err
	}
	if o.Scale != 0 {
		if err := errs.ValidateScale(o.Scale); err != nil {
			return err
		}
	}
	return nil
}

// KeyOpts returns the cache key options for a cleanup.
func (o *Options) KeyOpts() cache.CleanKeyOpts {
	return cache.CleanKeyOpts{
		MinLength:    o.Clean.MinLength,
		MinPoints:    o.Clean.MinPoints,
		PruneDegrees: o.Clean.PruneDegrees,
		MaxRounds:    o.Clean.MaxRounds,
		Scale:        o.Scale,
	}
}

func (o *Options) logger(fallback *log.Logger) *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	if fallback != nil {
		return fallback
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

// Result is the outcome of a pipeline run.
type Result struct {
	// Graph is the cleaned graph with fresh cycle flags.
	Graph *skeleton.Graph
	// Output is the flat text export of Graph.
	Output []byte
	// Scale is the scale written to Output.
	Scale float64
	// InputHash is the SHA-256 of the input bytes.
	InputHash string
	// Report is the cleanup summary. Only the counts are set on a cache hit.
	Report simplify.Report
	// Stats describes Graph.
	Stats Stats
	// Timings holds the duration of each stage that ran.
	Timings Timings
	// CacheHit reports whether Output came from the cache.
	CacheHit bool
}

// Timings holds per-stage durations.
type Timings struct {
	Load    time.Duration `json:"load"`
	Clean   time.Duration `json:"clean"`
	Analyze time.Duration `json:"analyze"`
	Export  time.Duration `json:"export"`
}
