package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skelgraph/pkg/cache"
	skelio "github.com/matzehuels/skelgraph/pkg/io"
	"github.com/matzehuels/skelgraph/pkg/observability"
	"github.com/matzehuels/skelgraph/pkg/render/nodelink"
	"github.com/matzehuels/skelgraph/pkg/skeleton"
	"github.com/matzehuels/skelgraph/pkg/skeleton/simplify"
)

// Runner executes pipeline stages with caching. It holds no per-run state,
// so one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL overrides the per-kind cache TTLs when positive.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Load imports input into a new graph and returns it with its scale.
func (r *Runner) Load(ctx context.Context, input []byte) (*skeleton.Graph, float64, error) {
	return r.load(ctx, input, r.Logger)
}

func (r *Runner) load(ctx context.Context, input []byte, logger *log.Logger) (*skeleton.Graph, float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, observability.StageLoad, 0)
	start := time.Now()

	g := skeleton.New()
	scale, err := skelio.Import(bytes.NewReader(input), g, logger)
	hooks.OnStageComplete(ctx, observability.StageLoad, time.Since(start), err)
	if err != nil {
		return nil, 0, err
	}
	return g, scale, nil
}

// Execute runs load → clean → analyze → export on input.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.logger(r.Logger)
	hooks := observability.Pipeline()

	res := &Result{InputHash: cache.Hash(input)}
	key := r.Keyer.CleanKey(res.InputHash, opts.KeyOpts())

	if !opts.Refresh {
		if data, ok := r.get(ctx, "clean", key); ok {
			err := r.fromCache(ctx, res, data, logger)
			if err == nil {
				return res, nil
			}
			logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		}
	}

	start := time.Now()
	g, scale, err := r.load(ctx, input, logger)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Timings.Load = time.Since(start)
	if opts.Scale != 0 {
		scale = opts.Scale
	}
	logger.Debug("loaded skeleton",
		"vertices", g.VertexCount(),
		"edges", g.EdgeCount(),
		"duration", res.Timings.Load)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks.OnStageStart(ctx, observability.StageClean, g.VertexCount())
	start = time.Now()
	rep, err := simplify.New(g, logger).Clean(opts.Clean)
	res.Timings.Clean = time.Since(start)
	hooks.OnStageComplete(ctx, observability.StageClean, res.Timings.Clean, err)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	hooks.OnCleaned(ctx, rep.Collapsed, rep.Spliced, rep.Pruned, rep.Rounds)
	res.Report = rep

	hooks.OnStageStart(ctx, observability.StageAnalyze, g.VertexCount())
	start = time.Now()
	stats, err := Analyze(g, scale)
	res.Timings.Analyze = time.Since(start)
	hooks.OnStageComplete(ctx, observability.StageAnalyze, res.Timings.Analyze, err)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	hooks.OnStageStart(ctx, observability.StageExport, g.VertexCount())
	start = time.Now()
	var buf bytes.Buffer
	err = skelio.Export(g, &buf, scale)
	res.Timings.Export = time.Since(start)
	hooks.OnStageComplete(ctx, observability.StageExport, res.Timings.Export, err)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	res.Graph, res.Scale, res.Stats, res.Output = g, scale, stats, buf.Bytes()
	r.set(ctx, "clean", key, res.Output, cache.TTLClean)

	logger.Info("cleaned skeleton",
		"removed", rep.Removed(),
		"vertices", stats.Vertices,
		"edges", stats.Edges,
		"cycles", stats.CycleEdges > 0,
		"duration", res.Timings.Load+res.Timings.Clean+res.Timings.Analyze+res.Timings.Export)
	return res, nil
}

// fromCache fills res from a cached export.
func (r *Runner) fromCache(ctx context.Context, res *Result, data []byte, logger *log.Logger) error {
	g, scale, err := r.load(ctx, data, logger)
	if err != nil {
		return err
	}
	stats, err := Analyze(g, scale)
	if err != nil {
		return err
	}
	res.Graph, res.Scale, res.Stats, res.Output, res.CacheHit = g, scale, stats, data, true
	res.Report = simplify.Report{
		Converged: true,
		Vertices:  stats.Vertices,
		Edges:     stats.Edges,
		Points:    stats.Points,
	}
	logger.Info("cleaned skeleton (cached)", "vertices", stats.Vertices, "edges", stats.Edges)
	return nil
}

// Stats loads input and returns its statistics. The bool reports a cache hit.
func (r *Runner) Stats(ctx context.Context, input []byte) (Stats, bool, error) {
	key := r.Keyer.StatsKey(cache.Hash(input))
	if data, ok := r.get(ctx, "stats", key); ok {
		var s Stats
		if err := json.Unmarshal(data, &s); err == nil {
			return s, true, nil
		}
	}

	g, scale, err := r.load(ctx, input, r.Logger)
	if err != nil {
		return Stats{}, false, fmt.Errorf("load: %w", err)
	}
	s, err := Analyze(g, scale)
	if err != nil {
		return Stats{}, false, fmt.Errorf("analyze: %w", err)
	}
	if data, err := json.Marshal(s); err == nil {
		r.set(ctx, "stats", key, data, cache.TTLStats)
	}
	return s, false, nil
}

// Diagram loads input and renders it as DOT or SVG. The bool reports a cache
// hit.
func (r *Runner) Diagram(ctx context.Context, input []byte, format string, opts nodelink.Options) ([]byte, bool, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, false, err
	}
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.DOTKey(cache.Hash(input), cache.DOTKeyOpts{
		Format:     format,
		Detailed:   opts.Detailed,
		CyclesOnly: opts.CyclesOnly,
		RankDir:    strings.ToUpper(opts.RankDir),
	})
	if data, ok := r.get(ctx, "dot", key); ok {
		return data, true, nil
	}

	g, _, err := r.load(ctx, input, r.Logger)
	if err != nil {
		return nil, false, fmt.Errorf("load: %w", err)
	}
	if err := g.FindCycles(); err != nil {
		return nil, false, fmt.Errorf("analyze: %w", err)
	}
	out := []byte(nodelink.ToDOT(g, opts))
	if format == FormatSVG {
		if out, err = nodelink.RenderSVG(ctx, string(out)); err != nil {
			return nil, false, fmt.Errorf("render: %w", err)
		}
	}
	r.set(ctx, "dot", key, out, cache.TTLDOT)
	return out, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get looks key up and reports the result to the cache hooks. Backend errors
// are logged and treated as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "kind", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// set stores data under key. Failures are logged and otherwise ignored.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "kind", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
