package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"wavecut/core/job"
	"wavecut/logger"
	"wavecut/model"
)

// GetJobHandler returns the job's current status. Polling is idempotent and
// never returns artifact bytes.
func (h *APIHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	j, err := h.tracker.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		logger.Error("failed to query job", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// DownloadJobHandler streams the completed artifact. Downloads are repeatable
// until the job expires or is deleted.
func (h *APIHandler) DownloadJobHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	j, err := h.tracker.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		logger.Error("failed to query job", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch j.Status {
	case model.JobStatusPending, model.JobStatusProcessing:
		writeError(w, http.StatusConflict, fmt.Sprintf("Job is %s, output not ready", j.Status))
		return
	case model.JobStatusFailed:
		writeError(w, http.StatusGone, "Job failed: "+j.Error)
		return
	}

	reader, size, err := h.blobs.Open(r.Context(), j.OutputKey)
	if err != nil {
		logger.Error("failed to open artifact",
			logger.String("jobId", id), logger.ErrorField(err))
		writeError(w, http.StatusGone, "Artifact no longer available")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentTypeForExt(filepath.Ext(j.OutputKey)))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", j.OutputFilename))
	if _, err := io.Copy(w, reader); err != nil {
		logger.Warn("artifact download interrupted",
			logger.String("jobId", id), logger.ErrorField(err))
	}
}

// DeleteJobHandler removes the job record and releases its artifact.
func (h *APIHandler) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	j, err := h.tracker.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		logger.Error("failed to query job", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !j.Status.Terminal() {
		writeError(w, http.StatusConflict, fmt.Sprintf("Job is %s, wait for it to finish", j.Status))
		return
	}

	if j.OutputKey != "" {
		if err := h.blobs.Remove(r.Context(), j.OutputKey); err != nil {
			logger.Warn("failed to remove artifact",
				logger.String("jobId", id), logger.ErrorField(err))
		}
	}
	if err := h.tracker.Delete(r.Context(), id); err != nil {
		logger.Error("failed to delete job", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete job")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
