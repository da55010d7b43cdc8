package cut

// Join modes of a plan. Identity is planned when there is a single segment:
// the one extracted artifact is the final output and no join tool runs.
const (
	JoinIdentity  = "identity"
	JoinDirect    = "direct"
	JoinCrossfade = "crossfade"
)

// Crossfade duration bounds in seconds.
const (
	MinCrossfade = 0.1
	MaxCrossfade = 5.0
)

// Plan is the ordered description of low-level engine operations for one job:
// one extract per segment (in slice order), then the join described by Mode.
type Plan struct {
	Segments  []Segment
	Mode      string  // identity, direct or crossfade
	Crossfade float64 // seconds, crossfade mode only
}

// BuildPlan validates the join parameters against the segment list and
// produces an execution plan. Segments must already be validated and in
// concatenation order.
func BuildPlan(segments []Segment, joinMode string, crossfadeDuration float64) (*Plan, error) {
	if len(segments) == 0 {
		return nil, validationErrorf(CodeInvalidSegment, "at least one segment is required")
	}

	switch joinMode {
	case JoinDirect, JoinCrossfade:
	default:
		return nil, validationErrorf(CodeInvalidJoinMode, "join mode must be %q or %q, got %q", JoinDirect, JoinCrossfade, joinMode)
	}

	if joinMode == JoinCrossfade {
		if crossfadeDuration < MinCrossfade || crossfadeDuration > MaxCrossfade {
			return nil, validationErrorf(CodeInvalidCrossfadeDuration,
				"crossfade duration must be in [%.1f, %.1f] seconds, got %.3f", MinCrossfade, MaxCrossfade, crossfadeDuration)
		}
		// An overlap longer than a participating segment cannot be rendered;
		// reject up front instead of leaving the outcome to the engine.
		for i, s := range segments {
			if s.Duration() < crossfadeDuration {
				return nil, validationErrorf(CodeCrossfadeTooLong,
					"segment %d lasts %.3fs, shorter than the %.3fs crossfade", i, s.Duration(), crossfadeDuration)
			}
		}
	}

	plan := &Plan{Segments: segments, Mode: joinMode}
	if len(segments) == 1 {
		plan.Mode = JoinIdentity
	} else if joinMode == JoinCrossfade {
		plan.Crossfade = crossfadeDuration
	}
	return plan, nil
}

// OutputDuration is the expected duration of the final artifact in seconds:
// the sum of segment durations, minus one crossfade overlap per join for
// crossfade mode.
func (p *Plan) OutputDuration() float64 {
	var total float64
	for _, s := range p.Segments {
		total += s.Duration()
	}
	if p.Mode == JoinCrossfade && len(p.Segments) > 1 {
		total -= float64(len(p.Segments)-1) * p.Crossfade
	}
	return total
}

// StepCount is the number of engine operations the plan will issue: one
// extract per segment plus the join operations (none for identity, one for
// direct, N-1 for the crossfade chain).
func (p *Plan) StepCount() int {
	n := len(p.Segments)
	switch p.Mode {
	case JoinDirect:
		return n + 1
	case JoinCrossfade:
		return n + n - 1
	default:
		return n
	}
}
