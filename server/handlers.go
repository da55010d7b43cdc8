package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"wavecut/config"
	"wavecut/core/auth"
	"wavecut/core/cut"
	"wavecut/core/job"
	"wavecut/logger"
	"wavecut/repository"
)

// BlobStore is the slice of object storage the handlers need.
type BlobStore interface {
	PutFile(ctx context.Context, key, path, contentType string) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Remove(ctx context.Context, key string) error
}

// DurationProber reports the duration of a local audio file in seconds.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// APIHandler holds dependencies for all API endpoints.
type APIHandler struct {
	cfg        *config.Config
	assetRepo  repository.AssetRepository
	markerRepo repository.MarkerRepository
	userRepo   repository.UserRepository
	tracker    *job.Tracker
	executor   *cut.Executor
	prober     DurationProber
	blobs      BlobStore
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(
	cfg *config.Config,
	assetRepo repository.AssetRepository,
	markerRepo repository.MarkerRepository,
	userRepo repository.UserRepository,
	tracker *job.Tracker,
	executor *cut.Executor,
	prober DurationProber,
	blobs BlobStore,
) *APIHandler {
	return &APIHandler{
		cfg:        cfg,
		assetRepo:  assetRepo,
		markerRepo: markerRepo,
		userRepo:   userRepo,
		tracker:    tracker,
		executor:   executor,
		prober:     prober,
		blobs:      blobs,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type contextKey string

const (
	ctxUserID   contextKey = "userID"
	ctxUsername contextKey = "username"
)

// AuthMiddleware checks for a valid bearer token and stores the identity on
// the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxUsername, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext extracts the user ID set by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(ctxUserID).(int64)
	return userID, ok
}
