package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"wavecut/model"
)

func jobRequest(t *testing.T, method, path, id string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	return mux.SetURLVars(req, map[string]string{"id": id})
}

func seedJob(t *testing.T, env *testEnv, j *model.Job) {
	t.Helper()
	if err := env.store.Create(context.Background(), j); err != nil {
		t.Fatalf("seed job: %v", err)
	}
}

func seedArtifact(t *testing.T, env *testEnv, key string, body []byte) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact")
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if _, err := env.blobs.PutFile(context.Background(), key, path, "audio/mpeg"); err != nil {
		t.Fatalf("store artifact: %v", err)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	env := newTestEnv(t, &fakeTranscoder{})

	rr := httptest.NewRecorder()
	env.handler.GetJobHandler(rr, jobRequest(t, http.MethodGet, "/api/jobs/ghost", "ghost"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestDownloadJob_NotReadyWhileRunning(t *testing.T) {
	env := newTestEnv(t, &fakeTranscoder{})
	seedJob(t, env, &model.Job{ID: "j1", Status: model.JobStatusProcessing})

	rr := httptest.NewRecorder()
	env.handler.DownloadJobHandler(rr, jobRequest(t, http.MethodGet, "/api/jobs/j1/download", "j1"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestDownloadJob_GoneAfterFailure(t *testing.T) {
	env := newTestEnv(t, &fakeTranscoder{})
	seedJob(t, env, &model.Job{ID: "j1", Status: model.JobStatusFailed, Error: "engine failure"})

	rr := httptest.NewRecorder()
	env.handler.DownloadJobHandler(rr, jobRequest(t, http.MethodGet, "/api/jobs/j1/download", "j1"))
	if rr.Code != http.StatusGone {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusGone)
	}
}

func TestDownloadJob_StreamsArtifactRepeatedly(t *testing.T) {
	env := newTestEnv(t, &fakeTranscoder{})
	body := []byte("joined audio bytes")
	seedArtifact(t, env, "outputs/j1.mp3", body)
	seedJob(t, env, &model.Job{
		ID:             "j1",
		Status:         model.JobStatusCompleted,
		OutputKey:      "outputs/j1.mp3",
		OutputFilename: "take_cut.mp3",
	})

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		env.handler.DownloadJobHandler(rr, jobRequest(t, http.MethodGet, "/api/jobs/j1/download", "j1"))
		if rr.Code != http.StatusOK {
			t.Fatalf("attempt %d: status = %d, want %d", i, rr.Code, http.StatusOK)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "audio/mpeg" {
			t.Fatalf("Content-Type = %s, want audio/mpeg", ct)
		}
		if cl := rr.Header().Get("Content-Length"); cl != "18" {
			t.Fatalf("Content-Length = %s, want 18", cl)
		}
		if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="take_cut.mp3"` {
			t.Fatalf("Content-Disposition = %s", cd)
		}
		got, _ := io.ReadAll(rr.Body)
		if string(got) != string(body) {
			t.Fatalf("body = %q, want %q", got, body)
		}
	}
}

func TestDownloadJob_GoneWhenArtifactMissing(t *testing.T) {
	env := newTestEnv(t, &fakeTranscoder{})
	seedJob(t, env, &model.Job{
		ID:        "j1",
		Status:    model.JobStatusCompleted,
		OutputKey: "outputs/j1.mp3",
	})

	rr := httptest.NewRecorder()
	env.handler.DownloadJobHandler(rr, jobRequest(t, http.MethodGet, "/api/jobs/j1/download", "j1"))
	if rr.Code != http.StatusGone {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusGone)
	}
}

func TestDeleteJob_RefusedWhileRunning(t *testing.T) {
	env := newTestEnv(t, &fakeTranscoder{})
	seedJob(t, env, &model.Job{ID: "j1", Status: model.JobStatusPending})

	rr := httptest.NewRecorder()
	env.handler.DeleteJobHandler(rr, jobRequest(t, http.MethodDelete, "/api/jobs/j1", "j1"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	if _, err := env.store.Get(context.Background(), "j1"); err != nil {
		t.Fatalf("job should still exist: %v", err)
	}
}

func TestDeleteJob_ReleasesArtifact(t *testing.T) {
	env := newTestEnv(t, &fakeTranscoder{})
	seedArtifact(t, env, "outputs/j1.mp3", []byte("bytes"))
	seedJob(t, env, &model.Job{
		ID:        "j1",
		Status:    model.JobStatusCompleted,
		OutputKey: "outputs/j1.mp3",
	})

	rr := httptest.NewRecorder()
	env.handler.DeleteJobHandler(rr, jobRequest(t, http.MethodDelete, "/api/jobs/j1", "j1"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if _, err := env.store.Get(context.Background(), "j1"); err == nil {
		t.Fatal("job record should be gone")
	}
	if _, _, err := env.blobs.Open(context.Background(), "outputs/j1.mp3"); err == nil {
		t.Fatal("artifact should be gone")
	}
}
