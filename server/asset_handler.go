package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"wavecut/logger"
	"wavecut/model"
)

// UploadAssetHandler accepts a multipart upload (field "audio"), probes its
// duration and registers it as a source asset.
func (h *APIHandler) UploadAssetHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(64 << 20); err != nil { // 64MB max memory
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'audio' in form")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".mp3" && ext != ".wav" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported audio format %q, expected .mp3 or .wav", ext))
		return
	}

	// Stage to a local file: the duration probe needs a path, and so does the
	// object upload.
	if err := os.MkdirAll(h.cfg.WorkDir, 0755); err != nil {
		logger.Error("failed to create work dir", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	staged, err := os.CreateTemp(h.cfg.WorkDir, "upload-*"+ext)
	if err != nil {
		logger.Error("failed to create staging file", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer os.Remove(staged.Name())

	if _, err := io.Copy(staged, file); err != nil {
		staged.Close()
		logger.Error("failed to stage upload", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	staged.Close()

	asset, err := h.ingestFile(r.Context(), staged.Name(), header.Filename, userID)
	if err != nil {
		logger.Error("failed to ingest upload", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not read audio file: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, asset)
}

// ingestFile registers a local audio file as an asset: probe duration, push
// the bytes to object storage, persist the record. Shared by the upload
// handler and the inbox watcher.
func (h *APIHandler) ingestFile(ctx context.Context, path, originalName string, userID int64) (*model.Asset, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	format := strings.TrimPrefix(ext, ".")

	duration, err := h.prober.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe duration: %w", err)
	}

	asset := &model.Asset{
		ID:       uuid.NewString(),
		UserID:   userID,
		Filename: filepath.Base(originalName),
		Format:   format,
		Duration: duration,
	}
	asset.ObjectKey = "sources/" + asset.ID + ext

	if _, err := h.blobs.PutFile(ctx, asset.ObjectKey, path, contentTypeForExt(ext)); err != nil {
		return nil, fmt.Errorf("failed to store source object: %w", err)
	}

	if err := h.assetRepo.Create(asset); err != nil {
		// Keep storage consistent with the database.
		if rmErr := h.blobs.Remove(ctx, asset.ObjectKey); rmErr != nil {
			logger.Warn("failed to remove orphaned source object",
				logger.String("key", asset.ObjectKey), logger.ErrorField(rmErr))
		}
		return nil, err
	}

	logger.Info("asset ingested",
		logger.String("assetId", asset.ID),
		logger.String("filename", asset.Filename),
		logger.Float64("duration", asset.Duration))
	return asset, nil
}

// IngestLocalFile adapts ingestFile for the inbox watcher.
func (h *APIHandler) IngestLocalFile(ctx context.Context, path string) error {
	_, err := h.ingestFile(ctx, path, filepath.Base(path), 0)
	return err
}

// GetAssetHandler returns asset metadata.
func (h *APIHandler) GetAssetHandler(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, asset)
}

// DeleteAssetHandler removes an asset, its markers and its source object.
// Rejected while a pending or processing job still reads the source.
func (h *APIHandler) DeleteAssetHandler(w http.ResponseWriter, r *http.Request) {
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

	jobs, err := h.tracker.List(r.Context())
	if err != nil {
		logger.Error("failed to list jobs", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	for _, j := range jobs {
		if j.AssetID == id && !j.Status.Terminal() {
			writeError(w, http.StatusConflict, fmt.Sprintf("Job %s still references this asset", j.ID))
			return
		}
	}

	if err := h.blobs.Remove(r.Context(), asset.ObjectKey); err != nil {
		logger.Warn("failed to remove source object",
			logger.String("key", asset.ObjectKey), logger.ErrorField(err))
	}
	if err := h.assetRepo.Delete(id); err != nil {
		logger.Error("failed to delete asset", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete asset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
