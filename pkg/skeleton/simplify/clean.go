package simplify

import (
	errs "github.com/matzehuels/skelgraph/pkg/errors"
)

// Options selects the passes run by Clean. Zero values disable a pass.
type Options struct {
	MinLength    float64 `json:"min_length,omitempty" toml:"min_length"`     // Collapse junction edges shorter than this
	MinPoints    int     `json:"min_points,omitempty" toml:"min_points"`     // Collapse and splice edges with fewer samples
	PruneDegrees []int   `json:"prune_degrees,omitempty" toml:"prune_degree"` // Remove vertices of these degrees once the loop settles
	MaxRounds    int     `json:"max_rounds,omitempty" toml:"max_rounds"`     // Fixpoint bound; DefaultMaxRounds when 0
}

// Validate checks the option values.
func (o Options) Validate() error {
	if err := errs.ValidateThreshold("min_length", o.MinLength); err != nil {
		return err
	}
	if err := errs.ValidatePointThreshold(o.MinPoints); err != nil {
		return err
	}
	for _, k := range o.PruneDegrees {
		if k < 0 {
			return errs.New(errs.ErrCodeInvalidInput, "prune degree cannot be negative, got %d", k)
		}
	}
	if o.MaxRounds < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max_rounds cannot be negative, got %d", o.MaxRounds)
	}
	return nil
}

// Report summarizes a Clean run.
type Report struct {
	Rounds    int  `json:"rounds"`
	Collapsed int  `json:"collapsed"`
	Spliced   int  `json:"spliced"`
	Pruned    int  `json:"pruned"`
	Converged bool `json:"converged"`
	Vertices  int  `json:"vertices"`
	Edges     int  `json:"edges"`
	Points    int  `json:"points"`
}

// Removed returns the total number of vertices removed.
func (r Report) Removed() int { return r.Collapsed + r.Spliced + r.Pruned }

// Clean repeats the enabled collapse and splice passes until a round changes
// nothing or MaxRounds is reached, then runs the prune passes once. The first
// invariant violation met along the way is returned with the report.
func (s *Simplifier) Clean(opts Options) (Report, error) {
	if err := opts.Validate(); err != nil {
		return Report{}, err
	}
	maxRounds := opts.MaxRounds
	if maxRounds == 0 {
		maxRounds = DefaultMaxRounds
	}

	var rep Report
	for rep.Rounds < maxRounds {
		rep.Rounds++
		changed := 0
		if opts.MinLength > 0 {
			n := s.CollapseEdgesShorterThan(opts.MinLength)
			rep.Collapsed += n
			changed += n
		}
		if opts.MinPoints > 0 {
			c := s.collapseSparse(opts.MinPoints)
			sp := s.spliceSparse(opts.MinPoints)
			rep.Collapsed += c
			rep.Spliced += sp
			changed += c + sp
		}
		s.logger.Debug("clean round", "round", rep.Rounds, "removed", changed)
		if changed == 0 {
			rep.Converged = true
			break
		}
	}

	for _, k := range opts.PruneDegrees {
		rep.Pruned += s.RemoveVerticesOfDegree(k)
	}

	rep.Vertices = s.g.VertexCount()
	rep.Edges = s.g.EdgeCount()
	rep.Points = s.g.PointCount()
	s.logger.Info("cleaned skeleton",
		"rounds", rep.Rounds,
		"removed", rep.Removed(),
		"vertices", rep.Vertices,
		"edges", rep.Edges,
	)
	return rep, s.err
}
