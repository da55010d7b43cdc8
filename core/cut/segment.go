package cut

import "sort"

// Segment is a contiguous time range of the source audio.
type Segment struct {
	Start float64 `json:"startTime"`
	End   float64 `json:"endTime"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// BuildSegments pairs a canonical (even-length, ascending) timestamp list into
// segments: markers 2k and 2k+1 bound segment k. Duplicate timestamps at a
// pair boundary survive sorting, so start < end is checked per pair rather
// than assumed.
func BuildSegments(timestamps []float64) ([]Segment, error) {
	if len(timestamps) < 2 || len(timestamps)%2 != 0 {
		return nil, validationErrorf(CodeOddMarkerCount, "canonical marker list must have even length >= 2, got %d", len(timestamps))
	}

	segments := make([]Segment, 0, len(timestamps)/2)
	for k := 0; k < len(timestamps)/2; k++ {
		start, end := timestamps[2*k], timestamps[2*k+1]
		if start >= end {
			return nil, validationErrorf(CodeInvalidSegment,
				"segment %d has start %.3f >= end %.3f", k, start, end)
		}
		segments = append(segments, Segment{Start: start, End: end})
	}
	return segments, nil
}

// CheckRanges validates caller-specified segment ranges that bypass marker
// pairing. Ranges are sorted by start time, checked against the asset
// duration, and rejected on the first overlap. The returned slice is the
// concatenation order.
func CheckRanges(segments []Segment, assetDuration float64) ([]Segment, error) {
	if len(segments) == 0 {
		return nil, validationErrorf(CodeInvalidSegment, "at least one segment is required")
	}

	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i, s := range sorted {
		if s.Start < 0 || s.End > assetDuration {
			return nil, validationErrorf(CodeMarkerOutOfRange,
				"segment [%.3f, %.3f] is outside the asset range [0, %.3f]", s.Start, s.End, assetDuration)
		}
		if s.Start >= s.End {
			return nil, validationErrorf(CodeInvalidSegment,
				"segment %d has start %.3f >= end %.3f", i, s.Start, s.End)
		}
		if i > 0 && s.Start < sorted[i-1].End {
			return nil, validationErrorf(CodeOverlappingSegments,
				"segment [%.3f, %.3f] overlaps [%.3f, %.3f]", s.Start, s.End, sorted[i-1].Start, sorted[i-1].End)
		}
	}
	return sorted, nil
}
