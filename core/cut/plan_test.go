package cut

import (
	"math"
	"testing"
)

func TestBuildPlan_SingleSegmentIsIdentity(t *testing.T) {
	// Markers [2.0, 5.0] direct: one segment, output duration 3.0s.
	plan, err := BuildPlan([]Segment{{Start: 2.0, End: 5.0}}, JoinDirect, 0)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}
	if plan.Mode != JoinIdentity {
		t.Fatalf("mode = %s, want %s", plan.Mode, JoinIdentity)
	}
	if plan.OutputDuration() != 3.0 {
		t.Fatalf("output duration = %v, want 3.0", plan.OutputDuration())
	}
	if plan.StepCount() != 1 {
		t.Fatalf("step count = %d, want 1", plan.StepCount())
	}
}

func TestBuildPlan_DirectSumsDurations(t *testing.T) {
	// Markers [0, 10, 20, 30] direct: two 10s segments, 20s output.
	plan, err := BuildPlan([]Segment{{Start: 0, End: 10}, {Start: 20, End: 30}}, JoinDirect, 0)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}
	if plan.Mode != JoinDirect {
		t.Fatalf("mode = %s, want %s", plan.Mode, JoinDirect)
	}
	if plan.OutputDuration() != 20.0 {
		t.Fatalf("output duration = %v, want 20.0", plan.OutputDuration())
	}
	if plan.StepCount() != 3 {
		t.Fatalf("step count = %d, want 3", plan.StepCount())
	}
}

func TestBuildPlan_CrossfadeSubtractsOverlaps(t *testing.T) {
	// Same segments, crossfade 1.0s: 20 - 1 = 19s output.
	plan, err := BuildPlan([]Segment{{Start: 0, End: 10}, {Start: 20, End: 30}}, JoinCrossfade, 1.0)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}
	if math.Abs(plan.OutputDuration()-19.0) > 1e-9 {
		t.Fatalf("output duration = %v, want 19.0", plan.OutputDuration())
	}
	if plan.StepCount() != 3 { // 2 extracts + 1 crossfade
		t.Fatalf("step count = %d, want 3", plan.StepCount())
	}

	// Four segments of 10s with 2s fades: 40 - 3*2 = 34s.
	segs := []Segment{{0, 10}, {15, 25}, {30, 40}, {45, 55}}
	plan, err = BuildPlan(segs, JoinCrossfade, 2.0)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}
	if math.Abs(plan.OutputDuration()-34.0) > 1e-9 {
		t.Fatalf("output duration = %v, want 34.0", plan.OutputDuration())
	}
	if plan.StepCount() != 7 { // 4 extracts + 3 crossfades
		t.Fatalf("step count = %d, want 7", plan.StepCount())
	}
}

func TestBuildPlan_InvalidJoinMode(t *testing.T) {
	_, err := BuildPlan([]Segment{{Start: 0, End: 10}}, "blend", 0)
	assertValidationCode(t, err, CodeInvalidJoinMode)
}

func TestBuildPlan_CrossfadeDurationBounds(t *testing.T) {
	segs := []Segment{{Start: 0, End: 10}, {Start: 20, End: 30}}

	_, err := BuildPlan(segs, JoinCrossfade, 0.05)
	assertValidationCode(t, err, CodeInvalidCrossfadeDuration)

	_, err = BuildPlan(segs, JoinCrossfade, 5.5)
	assertValidationCode(t, err, CodeInvalidCrossfadeDuration)

	if _, err := BuildPlan(segs, JoinCrossfade, MinCrossfade); err != nil {
		t.Fatalf("BuildPlan error at lower bound: %v", err)
	}
	if _, err := BuildPlan(segs, JoinCrossfade, MaxCrossfade); err != nil {
		t.Fatalf("BuildPlan error at upper bound: %v", err)
	}
}

func TestBuildPlan_CrossfadeLongerThanSegment(t *testing.T) {
	segs := []Segment{{Start: 0, End: 10}, {Start: 20, End: 21}} // 1s segment
	_, err := BuildPlan(segs, JoinCrossfade, 2.0)
	assertValidationCode(t, err, CodeCrossfadeTooLong)
}

func TestBuildPlan_NoSegments(t *testing.T) {
	_, err := BuildPlan(nil, JoinDirect, 0)
	assertValidationCode(t, err, CodeInvalidSegment)
}
