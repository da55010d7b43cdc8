package job

import (
	"context"
	"fmt"
	"time"

	"wavecut/logger"
	"wavecut/model"
)

// Tracker owns the job lifecycle: pending -> processing -> completed|failed.
// Completed and failed are terminal; every transition is checked against the
// stored state before it is written, so a late writer cannot resurrect a
// finished job.
type Tracker struct {
	store Store
}

// NewTracker creates a Tracker over the given registry.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Create registers a new job in the pending state.
func (t *Tracker) Create(ctx context.Context, j *model.Job) error {
	j.Status = model.JobStatusPending
	j.CreatedAt = time.Now()
	if err := t.store.Create(ctx, j); err != nil {
		return fmt.Errorf("failed to create job %s: %w", j.ID, err)
	}
	logger.Info("job created",
		logger.String("jobId", j.ID),
		logger.String("assetId", j.AssetID),
		logger.String("joinMode", j.JoinMode))
	return nil
}

// Get returns the current job record.
func (t *Tracker) Get(ctx context.Context, id string) (*model.Job, error) {
	return t.store.Get(ctx, id)
}

// List returns all known jobs.
func (t *Tracker) List(ctx context.Context) ([]*model.Job, error) {
	return t.store.List(ctx)
}

// Delete removes the job record.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	return t.store.Delete(ctx, id)
}

// MarkProcessing transitions pending -> processing. It runs immediately
// before the first extract step.
func (t *Tracker) MarkProcessing(ctx context.Context, id string) error {
	return t.transition(ctx, id, model.JobStatusPending, func(j *model.Job) {
		now := time.Now()
		j.Status = model.JobStatusProcessing
		j.StartedAt = &now
	})
}

// MarkCompleted transitions processing -> completed, attaching the artifact
// reference.
func (t *Tracker) MarkCompleted(ctx context.Context, id, outputKey, filename string, size int64) error {
	return t.transition(ctx, id, model.JobStatusProcessing, func(j *model.Job) {
		now := time.Now()
		j.Status = model.JobStatusCompleted
		j.OutputKey = outputKey
		j.OutputFilename = filename
		j.OutputSize = size
		j.CompletedAt = &now
	})
}

// MarkFailed transitions processing -> failed with an error summary.
func (t *Tracker) MarkFailed(ctx context.Context, id, summary string) error {
	return t.transition(ctx, id, model.JobStatusProcessing, func(j *model.Job) {
		now := time.Now()
		j.Status = model.JobStatusFailed
		j.Error = summary
		j.CompletedAt = &now
	})
}

func (t *Tracker) transition(ctx context.Context, id string, from model.JobStatus, apply func(*model.Job)) error {
	j, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if j.Status != from {
		return fmt.Errorf("job %s is %s, cannot transition from %s", id, j.Status, from)
	}
	apply(j)
	if err := t.store.Update(ctx, j); err != nil {
		return fmt.Errorf("failed to update job %s: %w", id, err)
	}
	logger.Info("job status changed",
		logger.String("jobId", id),
		logger.String("status", string(j.Status)))
	return nil
}
