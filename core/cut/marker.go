package cut

import "sort"

// Marker is a raw timestamp annotation as submitted by the caller. Position is
// the caller-assigned order field; it only breaks ties between equal
// timestamps so that validation is deterministic.
type Marker struct {
	Timestamp float64 `json:"timestamp"`
	Position  int     `json:"order"`
}

// ValidateOptions tunes marker canonicalization.
type ValidateOptions struct {
	// Epsilon collapses near-duplicate timestamps (accidental double clicks)
	// into one before the parity check. 0 disables deduplication.
	Epsilon float64
}

// ValidateMarkers turns a raw marker list into a canonical ascending timestamp
// list, or fails with a ValidationError. The first violated rule wins:
// marker count, timestamp range, then parity after deduplication.
func ValidateMarkers(markers []Marker, assetDuration float64, opts ValidateOptions) ([]float64, error) {
	if len(markers) < 2 {
		return nil, validationErrorf(CodeTooFewMarkers, "need at least 2 markers, got %d", len(markers))
	}

	for _, m := range markers {
		if m.Timestamp < 0 {
			return nil, validationErrorf(CodeMarkerOutOfRange, "marker timestamp %.3f is negative", m.Timestamp)
		}
		if m.Timestamp > assetDuration {
			return nil, validationErrorf(CodeMarkerOutOfRange,
				"marker timestamp %.3f exceeds asset duration %.3f", m.Timestamp, assetDuration)
		}
	}

	sorted := make([]Marker, len(markers))
	copy(sorted, markers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp != sorted[j].Timestamp {
			return sorted[i].Timestamp < sorted[j].Timestamp
		}
		return sorted[i].Position < sorted[j].Position
	})

	timestamps := make([]float64, 0, len(sorted))
	for _, m := range sorted {
		if opts.Epsilon > 0 && len(timestamps) > 0 {
			if m.Timestamp-timestamps[len(timestamps)-1] < opts.Epsilon {
				// Within epsilon of the previous kept marker: drop as a duplicate.
				continue
			}
		}
		timestamps = append(timestamps, m.Timestamp)
	}

	if len(timestamps) < 2 {
		return nil, validationErrorf(CodeTooFewMarkers,
			"need at least 2 distinct markers, got %d after deduplication", len(timestamps))
	}
	if len(timestamps)%2 != 0 {
		return nil, validationErrorf(CodeOddMarkerCount,
			"marker count must be even, got %d; each segment consumes exactly 2 markers", len(timestamps))
	}

	return timestamps, nil
}
