package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"wavecut/core/job"
	"wavecut/logger"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// JobStatusSocketHandler pushes job status snapshots over a websocket until
// the job reaches a terminal state, then closes.
func (h *APIHandler) JobStatusSocketHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.tracker.Get(r.Context(), id); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		logger.Error("failed to query job", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		j, err := h.tracker.Get(r.Context(), id)
		if err != nil {
			logger.Warn("job vanished during status push", logger.String("jobId", id))
			return
		}
		if err := conn.WriteJSON(j); err != nil {
			return
		}
		if j.Status.Terminal() {
			return
		}
		select {
		case <-ticker.C:
		case <-r.Context().Done():
			return
		}
	}
}
