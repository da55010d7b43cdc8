package model

import "time"

// JobStatus is the lifecycle state of a processing job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Join modes for combining extracted segments.
const (
	JoinModeDirect    = "direct"
	JoinModeCrossfade = "crossfade"
)

// Job is one asynchronous execution of the extract+join plan. Job records are
// kept in the job registry (Redis in production), not in MySQL, and are
// serialized as JSON.
type Job struct {
	ID                string     `json:"jobId"`
	AssetID           string     `json:"assetId"`
	UserID            int64      `json:"-"`
	JoinMode          string     `json:"joinMode"`
	CrossfadeDuration float64    `json:"crossfadeDuration,omitempty"`
	Status            JobStatus  `json:"status"`
	Error             string     `json:"error,omitempty"`
	OutputKey         string     `json:"-"` // object storage key of the artifact
	OutputFilename    string     `json:"outputFilename,omitempty"`
	OutputSize        int64      `json:"outputSize,omitempty"`
	OutputDuration    float64    `json:"outputDuration,omitempty"` // planned duration, seconds
	CreatedAt         time.Time  `json:"createdAt"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}
