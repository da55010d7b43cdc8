package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"wavecut/logger"
	"wavecut/model"
)

// MarkerInput is one marker as submitted by the caller.
type MarkerInput struct {
	Timestamp float64 `json:"timestamp"`
	Order     int     `json:"order"`
}

// PutMarkersHandler replaces the stored marker set for an asset wholesale.
// Only basic shape checks happen here; full validation runs when the set is
// submitted for processing.
func (h *APIHandler) PutMarkersHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	asset, err := h.assetRepo.GetByID(id)
	if err != nil {
		logger.Error("failed to query asset", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "Asset not found")
		return
	}

	var inputs []MarkerInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	markers := make([]model.Marker, len(inputs))
	for i, in := range inputs {
		if in.Timestamp < 0 {
			writeError(w, http.StatusBadRequest, "Marker timestamps must be non-negative")
			return
		}
		markers[i] = model.Marker{AssetID: id, Timestamp: in.Timestamp, Position: in.Order}
	}

	if err := h.markerRepo.ReplaceForAsset(id, markers); err != nil {
		logger.Error("failed to store markers", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store markers")
		return
	}

	logger.Info("marker set replaced",
		logger.String("assetId", id), logger.Int("count", len(markers)))
	writeJSON(w, http.StatusOK, markers)
}

// GetMarkersHandler returns the stored marker set, timestamp-sorted.
func (h *APIHandler) GetMarkersHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	asset, err := h.assetRepo.GetByID(id)
	if err != nil {
		logger.Error("failed to query asset", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "Asset not found")
		return
	}

	markers, err := h.markerRepo.GetByAsset(id)
	if err != nil {
		logger.Error("failed to query markers", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, markers)
}
