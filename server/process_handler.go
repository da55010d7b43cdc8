package server

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"wavecut/core/cut"
	"wavecut/logger"
	"wavecut/model"
)

// ProcessRequest submits an asset for cutting and joining. Markers and
// segments are alternate input shapes; when both are omitted the stored
// marker set for the asset is used.
type ProcessRequest struct {
	AssetID           string         `json:"assetId"`
	Markers           []cut.Marker   `json:"markers,omitempty"`
	Segments          []cut.Segment  `json:"segments,omitempty"`
	JoinMode          string         `json:"joinMode"`
	CrossfadeDuration float64        `json:"crossfadeDuration,omitempty"`
}

// ProcessResponse carries the id of the accepted job.
type ProcessResponse struct {
	JobID string `json:"jobId"`
}

// ProcessHandler validates a processing request synchronously and, if it
// passes, creates a pending job and runs the plan on its own goroutine.
// Validation failures never create a job.
func (h *APIHandler) ProcessHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AssetID == "" {
		writeError(w, http.StatusBadRequest, "assetId is required")
		return
	}

	asset, err := h.assetRepo.GetByID(req.AssetID)
	if err != nil {
		logger.Error("failed to query asset", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "Asset not found")
		return
	}

	segments, err := h.resolveSegments(&req, asset)
	if err == nil {
		var plan *cut.Plan
		plan, err = cut.BuildPlan(segments, req.JoinMode, req.CrossfadeDuration)
		if err == nil {
			h.acceptJob(w, req, asset, plan, userID)
			return
		}
	}

	if cut.IsValidationError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Error("failed to plan job", logger.ErrorField(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// resolveSegments turns the request's markers or segment ranges into a
// validated, ordered segment list.
func (h *APIHandler) resolveSegments(req *ProcessRequest, asset *model.Asset) ([]cut.Segment, error) {
	if len(req.Segments) > 0 {
		return cut.CheckRanges(req.Segments, asset.Duration)
	}

	markers := req.Markers
	if len(markers) == 0 {
		stored, err := h.markerRepo.GetByAsset(asset.ID)
		if err != nil {
			return nil, err
		}
		markers = make([]cut.Marker, len(stored))
		for i, m := range stored {
			markers[i] = cut.Marker{Timestamp: m.Timestamp, Position: m.Position}
		}
	}

	timestamps, err := cut.ValidateMarkers(markers, asset.Duration, cut.ValidateOptions{Epsilon: h.cfg.MarkerEpsilon})
	if err != nil {
		return nil, err
	}
	return cut.BuildSegments(timestamps)
}

func (h *APIHandler) acceptJob(w http.ResponseWriter, req ProcessRequest, asset *model.Asset, plan *cut.Plan, userID int64) {
	j := &model.Job{
		ID:             uuid.NewString(),
		AssetID:        asset.ID,
		UserID:         userID,
		JoinMode:       req.JoinMode,
		OutputDuration: plan.OutputDuration(),
	}
	if plan.Mode == cut.JoinCrossfade {
		j.CrossfadeDuration = plan.Crossfade
	}

	if err := h.tracker.Create(context.Background(), j); err != nil {
		logger.Error("failed to create job", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	go h.runJob(j, asset, plan)

	writeJSON(w, http.StatusAccepted, ProcessResponse{JobID: j.ID})
}

// runJob drives one job to a terminal state. It is the only writer of this
// job's record, always via the tracker.
func (h *APIHandler) runJob(j *model.Job, asset *model.Asset, plan *cut.Plan) {
	ctx := context.Background()

	if err := h.tracker.MarkProcessing(ctx, j.ID); err != nil {
		logger.Error("failed to mark job processing",
			logger.String("jobId", j.ID), logger.ErrorField(err))
		return
	}

	ext := filepath.Ext(asset.ObjectKey)
	outputKey := "outputs/" + j.ID + ext

	size, err := h.executor.Run(ctx, j.ID, asset.ObjectKey, outputKey, plan)
	if err != nil {
		logger.Error("job failed",
			logger.String("jobId", j.ID), logger.ErrorField(err))
		if trkErr := h.tracker.MarkFailed(ctx, j.ID, err.Error()); trkErr != nil {
			logger.Error("failed to mark job failed",
				logger.String("jobId", j.ID), logger.ErrorField(trkErr))
		}
		return
	}

	filename := outputFilename(asset.Filename, ext)
	if err := h.tracker.MarkCompleted(ctx, j.ID, outputKey, filename, size); err != nil {
		logger.Error("failed to mark job completed",
			logger.String("jobId", j.ID), logger.ErrorField(err))
	}
}

// outputFilename suggests a download name derived from the source file.
func outputFilename(sourceName, ext string) string {
	base := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	return base + "_cut" + ext
}
