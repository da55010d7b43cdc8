package cut

import (
	"errors"
	"fmt"
)

// Validation error codes. These are detected before any engine invocation and
// surface synchronously to the submitter; they never become a failed job.
const (
	CodeTooFewMarkers            = "TooFewMarkers"
	CodeOddMarkerCount           = "OddMarkerCount"
	CodeMarkerOutOfRange         = "MarkerOutOfRange"
	CodeInvalidSegment           = "InvalidSegment"
	CodeOverlappingSegments      = "OverlappingSegments"
	CodeInvalidJoinMode          = "InvalidJoinMode"
	CodeInvalidCrossfadeDuration = "InvalidCrossfadeDuration"
	CodeCrossfadeTooLong         = "CrossfadeTooLong"
)

// ValidationError rejects a processing request before a job is created.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationErrorf(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TranscodeFailure is the single terminal error of a job execution. It carries
// the index of the failed plan step and the underlying engine diagnostic.
// Steps are numbered across the whole plan: extracts first, then join
// operations. Setup and teardown failures use step -1.
type TranscodeFailure struct {
	Step int
	Op   string // "fetch", "extract", "concat", "crossfade", "store"
	Err  error
}

func (e *TranscodeFailure) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("transcode failed during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transcode failed at step %d (%s): %v", e.Step, e.Op, e.Err)
}

func (e *TranscodeFailure) Unwrap() error {
	return e.Err
}
