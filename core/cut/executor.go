package cut

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"wavecut/logger"
)

// Transcoder is the external media engine, invoked by file path. Every call
// blocks until the engine finishes or fails; no call is retried.
type Transcoder interface {
	Extract(ctx context.Context, src string, start, duration float64, dst string) error
	Concat(ctx context.Context, parts []string, dst string) error
	Crossfade(ctx context.Context, a, b string, duration float64, dst string) error
}

// BlobStore moves bytes between object storage and the job workspace.
type BlobStore interface {
	FetchToFile(ctx context.Context, key, path string) error
	PutFile(ctx context.Context, key, path, contentType string) (int64, error)
}

// Executor runs a plan inside a scoped per-job workspace. The workspace is
// created under workDir and removed on every exit path, success or failure.
type Executor struct {
	transcoder Transcoder
	blobs      BlobStore
	workDir    string
}

// NewExecutor creates an Executor writing job workspaces under workDir.
func NewExecutor(transcoder Transcoder, blobs BlobStore, workDir string) *Executor {
	return &Executor{transcoder: transcoder, blobs: blobs, workDir: workDir}
}

// Run executes the plan for one job: fetch the source object, extract each
// segment sequentially, run the join, and store the final artifact under
// outputKey. The first failing step aborts the rest and is returned as a
// TranscodeFailure; no partial output is stored.
func (e *Executor) Run(ctx context.Context, jobID, sourceKey, outputKey string, plan *Plan) (int64, error) {
	if err := os.MkdirAll(e.workDir, 0755); err != nil {
		return 0, &TranscodeFailure{Step: -1, Op: "workspace", Err: err}
	}
	workspace, err := os.MkdirTemp(e.workDir, "job-"+jobID+"-")
	if err != nil {
		return 0, &TranscodeFailure{Step: -1, Op: "workspace", Err: err}
	}
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			logger.Warn("failed to remove job workspace",
				logger.String("jobId", jobID), logger.ErrorField(err))
		}
	}()

	ext := filepath.Ext(sourceKey)
	source := filepath.Join(workspace, "source"+ext)
	if err := e.blobs.FetchToFile(ctx, sourceKey, source); err != nil {
		return 0, &TranscodeFailure{Step: -1, Op: "fetch", Err: err}
	}

	parts := make([]string, len(plan.Segments))
	for i, seg := range plan.Segments {
		parts[i] = filepath.Join(workspace, fmt.Sprintf("part_%03d%s", i, ext))
		if err := e.transcoder.Extract(ctx, source, seg.Start, seg.Duration(), parts[i]); err != nil {
			return 0, &TranscodeFailure{Step: i, Op: "extract", Err: err}
		}
	}

	final, err := e.join(ctx, workspace, ext, plan, parts)
	if err != nil {
		return 0, err
	}

	size, err := e.blobs.PutFile(ctx, outputKey, final, contentTypeFor(ext))
	if err != nil {
		return 0, &TranscodeFailure{Step: -1, Op: "store", Err: err}
	}

	logger.Info("job transcode finished",
		logger.String("jobId", jobID),
		logger.Int("segments", len(plan.Segments)),
		logger.String("joinMode", plan.Mode),
		logger.Int64("outputBytes", size))
	return size, nil
}

// join runs the plan's join step over the extracted parts and returns the
// path of the final artifact inside the workspace.
func (e *Executor) join(ctx context.Context, workspace, ext string, plan *Plan, parts []string) (string, error) {
	n := len(parts)
	switch plan.Mode {
	case JoinIdentity:
		return parts[0], nil

	case JoinDirect:
		out := filepath.Join(workspace, "output"+ext)
		if err := e.transcoder.Concat(ctx, parts, out); err != nil {
			return "", &TranscodeFailure{Step: n, Op: "concat", Err: err}
		}
		return out, nil

	case JoinCrossfade:
		// Left fold: each crossfade consumes the running merged result and
		// the next segment artifact.
		merged := parts[0]
		for i := 1; i < n; i++ {
			out := filepath.Join(workspace, fmt.Sprintf("merge_%03d%s", i, ext))
			if err := e.transcoder.Crossfade(ctx, merged, parts[i], plan.Crossfade, out); err != nil {
				return "", &TranscodeFailure{Step: n + i - 1, Op: "crossfade", Err: err}
			}
			merged = out
		}
		return merged, nil

	default:
		return "", &TranscodeFailure{Step: -1, Op: "join", Err: fmt.Errorf("unknown join mode %q", plan.Mode)}
	}
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
