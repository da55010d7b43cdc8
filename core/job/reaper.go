package job

import (
	"context"
	"time"

	"wavecut/logger"
	"wavecut/model"
)

// ArtifactRemover releases a completed job's output from object storage.
type ArtifactRemover interface {
	Remove(ctx context.Context, key string) error
}

// Reaper removes terminal jobs older than the TTL together with their
// artifacts, making downloads repeatable-until-expiry rather than
// at-most-once.
type Reaper struct {
	store     Store
	artifacts ArtifactRemover
	ttl       time.Duration
	interval  time.Duration
}

// NewReaper creates a Reaper sweeping every interval.
func NewReaper(store Store, artifacts ArtifactRemover, ttl, interval time.Duration) *Reaper {
	return &Reaper{store: store, artifacts: artifacts, ttl: ttl, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *Reaper) sweep(ctx context.Context) {
	jobs, err := r.store.List(ctx)
	if err != nil {
		logger.Error("reaper failed to list jobs", logger.ErrorField(err))
		return
	}

	cutoff := time.Now().Add(-r.ttl)
	for _, j := range jobs {
		if !j.Status.Terminal() || j.CreatedAt.After(cutoff) {
			continue
		}
		if j.Status == model.JobStatusCompleted && j.OutputKey != "" {
			if err := r.artifacts.Remove(ctx, j.OutputKey); err != nil {
				logger.Warn("reaper failed to remove artifact",
					logger.String("jobId", j.ID), logger.ErrorField(err))
				continue // retry next sweep, keep the record until the artifact is gone
			}
		}
		if err := r.store.Delete(ctx, j.ID); err != nil {
			logger.Warn("reaper failed to delete job",
				logger.String("jobId", j.ID), logger.ErrorField(err))
			continue
		}
		logger.Info("expired job reaped", logger.String("jobId", j.ID))
	}
}
