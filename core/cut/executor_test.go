package cut

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// fakeTranscoder writes tiny placeholder files instead of invoking ffmpeg and
// records the operations it was asked to run.
type fakeTranscoder struct {
	mu     sync.Mutex
	ops    []string
	failOn string // op name that should fail, e.g. "extract:part_001.mp3"
}

func (f *fakeTranscoder) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
	if f.failOn == op {
		return fmt.Errorf("engine exploded on %s", op)
	}
	return nil
}

func (f *fakeTranscoder) Extract(ctx context.Context, src string, start, duration float64, dst string) error {
	if err := f.record(fmt.Sprintf("extract:%s", filepath.Base(dst))); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(fmt.Sprintf("extract %v+%v", start, duration)), 0644)
}

func (f *fakeTranscoder) Concat(ctx context.Context, parts []string, dst string) error {
	if err := f.record(fmt.Sprintf("concat:%d", len(parts))); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("concat"), 0644)
}

func (f *fakeTranscoder) Crossfade(ctx context.Context, a, b string, duration float64, dst string) error {
	if err := f.record(fmt.Sprintf("crossfade:%s+%s", filepath.Base(a), filepath.Base(b))); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("crossfade"), 0644)
}

// fakeBlobStore keeps objects in a map keyed by object key.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) FetchToFile(ctx context.Context, key, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return fmt.Errorf("object %s not found", key)
	}
	return os.WriteFile(path, b, 0644)
}

func (f *fakeBlobStore) PutFile(ctx context.Context, key, path, contentType string) (int64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return int64(len(b)), nil
}

func workspacesUnder(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read work dir: %v", err)
	}
	return len(entries)
}

func TestExecutor_DirectJoin(t *testing.T) {
	workDir := t.TempDir()
	tc := &fakeTranscoder{}
	blobs := newFakeBlobStore()
	blobs.objects["sources/a.mp3"] = []byte("source")

	plan, err := BuildPlan([]Segment{{Start: 0, End: 10}, {Start: 20, End: 30}}, JoinDirect, 0)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	exec := NewExecutor(tc, blobs, workDir)
	size, err := exec.Run(context.Background(), "j1", "sources/a.mp3", "outputs/j1.mp3", plan)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if size == 0 {
		t.Fatal("size = 0, want > 0")
	}
	if _, ok := blobs.objects["outputs/j1.mp3"]; !ok {
		t.Fatal("final artifact not stored")
	}
	if n := workspacesUnder(t, workDir); n != 0 {
		t.Fatalf("workspace count after success = %d, want 0", n)
	}

	want := []string{"extract:part_000.mp3", "extract:part_001.mp3", "concat:2"}
	if len(tc.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", tc.ops, want)
	}
	for i := range want {
		if tc.ops[i] != want[i] {
			t.Fatalf("ops[%d] = %s, want %s", i, tc.ops[i], want[i])
		}
	}
}

func TestExecutor_IdentityJoinSkipsEngine(t *testing.T) {
	workDir := t.TempDir()
	tc := &fakeTranscoder{}
	blobs := newFakeBlobStore()
	blobs.objects["sources/a.mp3"] = []byte("source")

	plan, err := BuildPlan([]Segment{{Start: 2, End: 5}}, JoinDirect, 0)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	exec := NewExecutor(tc, blobs, workDir)
	if _, err := exec.Run(context.Background(), "j1", "sources/a.mp3", "outputs/j1.mp3", plan); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(tc.ops) != 1 || tc.ops[0] != "extract:part_000.mp3" {
		t.Fatalf("ops = %v, want a single extract", tc.ops)
	}
}

func TestExecutor_CrossfadeFoldsLeftToRight(t *testing.T) {
	workDir := t.TempDir()
	tc := &fakeTranscoder{}
	blobs := newFakeBlobStore()
	blobs.objects["sources/a.wav"] = []byte("source")

	segs := []Segment{{Start: 0, End: 10}, {Start: 15, End: 25}, {Start: 30, End: 40}}
	plan, err := BuildPlan(segs, JoinCrossfade, 1.5)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	exec := NewExecutor(tc, blobs, workDir)
	if _, err := exec.Run(context.Background(), "j2", "sources/a.wav", "outputs/j2.wav", plan); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := []string{
		"extract:part_000.wav",
		"extract:part_001.wav",
		"extract:part_002.wav",
		"crossfade:part_000.wav+part_001.wav",
		"crossfade:merge_001.wav+part_002.wav",
	}
	if len(tc.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", tc.ops, want)
	}
	for i := range want {
		if tc.ops[i] != want[i] {
			t.Fatalf("ops[%d] = %s, want %s", i, tc.ops[i], want[i])
		}
	}
}

func TestExecutor_FailureAbortsAndCleansUp(t *testing.T) {
	workDir := t.TempDir()
	tc := &fakeTranscoder{failOn: "extract:part_001.mp3"}
	blobs := newFakeBlobStore()
	blobs.objects["sources/a.mp3"] = []byte("source")

	plan, err := BuildPlan([]Segment{{Start: 0, End: 10}, {Start: 20, End: 30}}, JoinDirect, 0)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	exec := NewExecutor(tc, blobs, workDir)
	_, err = exec.Run(context.Background(), "j3", "sources/a.mp3", "outputs/j3.mp3", plan)
	if err == nil {
		t.Fatal("expected failure, got nil")
	}

	var tf *TranscodeFailure
	if !errors.As(err, &tf) {
		t.Fatalf("expected *TranscodeFailure, got %T: %v", err, err)
	}
	if tf.Step != 1 || tf.Op != "extract" {
		t.Fatalf("failure step/op = %d/%s, want 1/extract", tf.Step, tf.Op)
	}

	if _, ok := blobs.objects["outputs/j3.mp3"]; ok {
		t.Fatal("partial output was stored after failure")
	}
	if n := workspacesUnder(t, workDir); n != 0 {
		t.Fatalf("workspace count after failure = %d, want 0", n)
	}
	// The concat never ran.
	for _, op := range tc.ops {
		if op == "concat:2" {
			t.Fatal("join step ran after a failed extract")
		}
	}
}

func TestExecutor_MissingSourceIsExecutionError(t *testing.T) {
	workDir := t.TempDir()
	exec := NewExecutor(&fakeTranscoder{}, newFakeBlobStore(), workDir)

	plan, err := BuildPlan([]Segment{{Start: 0, End: 10}}, JoinDirect, 0)
	if err != nil {
		t.Fatalf("BuildPlan error: %v", err)
	}

	_, err = exec.Run(context.Background(), "j4", "sources/missing.mp3", "outputs/j4.mp3", plan)
	var tf *TranscodeFailure
	if !errors.As(err, &tf) {
		t.Fatalf("expected *TranscodeFailure, got %T: %v", err, err)
	}
	if tf.Op != "fetch" {
		t.Fatalf("failure op = %s, want fetch", tf.Op)
	}
	if n := workspacesUnder(t, workDir); n != 0 {
		t.Fatalf("workspace count = %d, want 0", n)
	}
}
