package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestPutMarkers_ReplacesStoredSet(t *testing.T) {
	env := newTestEnv(t, &fakeTranscoder{})
	env.markers.ReplaceForAsset("asset-1", nil)

	body, _ := json.Marshal([]MarkerInput{
		{Timestamp: 12.5, Order: 1},
		{Timestamp: 3.0, Order: 0},
	})
	req := httptest.NewRequest(http.MethodPut, "/api/assets/asset-1/markers", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": "asset-1"})
	rr := httptest.NewRecorder()
	env.handler.PutMarkersHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	stored, _ := env.markers.GetByAsset("asset-1")
	if len(stored) != 2 {
		t.Fatalf("stored markers = %d, want 2", len(stored))
	}
}

func TestPutMarkers_RejectsNegativeTimestamp(t *testing.T) {
	env := newTestEnv(t, &fakeTranscoder{})

	body, _ := json.Marshal([]MarkerInput{{Timestamp: -1.0}})
	req := httptest.NewRequest(http.MethodPut, "/api/assets/asset-1/markers", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": "asset-1"})
	rr := httptest.NewRecorder()
	env.handler.PutMarkersHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestPutMarkers_UnknownAsset(t *testing.T) {
	env := newTestEnv(t, &fakeTranscoder{})

	body, _ := json.Marshal([]MarkerInput{{Timestamp: 1.0}})
	req := httptest.NewRequest(http.MethodPut, "/api/assets/ghost/markers", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": "ghost"})
	rr := httptest.NewRecorder()
	env.handler.PutMarkersHandler(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
