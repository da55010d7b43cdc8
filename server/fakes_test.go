package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"wavecut/model"
)

// fakeAssetRepo serves assets from a map.
type fakeAssetRepo struct {
	mu     sync.Mutex
	assets map[string]*model.Asset
}

func newFakeAssetRepo(assets ...*model.Asset) *fakeAssetRepo {
	m := make(map[string]*model.Asset)
	for _, a := range assets {
		m[a.ID] = a
	}
	return &fakeAssetRepo{assets: m}
}

func (f *fakeAssetRepo) Create(a *model.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets[a.ID] = a
	return nil
}

func (f *fakeAssetRepo) GetByID(id string) (*model.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assets[id], nil
}

func (f *fakeAssetRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.assets, id)
	return nil
}

// fakeMarkerRepo stores marker sets per asset.
type fakeMarkerRepo struct {
	mu   sync.Mutex
	sets map[string][]model.Marker
}

func newFakeMarkerRepo() *fakeMarkerRepo {
	return &fakeMarkerRepo{sets: make(map[string][]model.Marker)}
}

func (f *fakeMarkerRepo) ReplaceForAsset(assetID string, markers []model.Marker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[assetID] = markers
	return nil
}

func (f *fakeMarkerRepo) GetByAsset(assetID string) ([]model.Marker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets[assetID], nil
}

// fakeBlobStore satisfies both the handler's BlobStore and the executor's.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
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

func (f *fakeBlobStore) FetchToFile(ctx context.Context, key, path string) error {
	f.mu.Lock()
	b, ok := f.objects[key]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("object %s not found", key)
	}
	return os.WriteFile(path, b, 0644)
}

func (f *fakeBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	b, ok := f.objects[key]
	f.mu.Unlock()
	if !ok {
		return nil, 0, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(b)), int64(len(b)), nil
}

func (f *fakeBlobStore) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

// fakeTranscoder stamps placeholder artifacts instead of running ffmpeg.
type fakeTranscoder struct {
	mu     sync.Mutex
	ops    int
	failOp string // "extract", "concat" or "crossfade"
}

func (f *fakeTranscoder) step(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops++
	if f.failOp == op {
		return fmt.Errorf("engine failure in %s", op)
	}
	return nil
}

func (f *fakeTranscoder) Extract(ctx context.Context, src string, start, duration float64, dst string) error {
	if err := f.step("extract"); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("part"), 0644)
}

func (f *fakeTranscoder) Concat(ctx context.Context, parts []string, dst string) error {
	if err := f.step("concat"); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("joined"), 0644)
}

func (f *fakeTranscoder) Crossfade(ctx context.Context, a, b string, duration float64, dst string) error {
	if err := f.step("crossfade"); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("faded"), 0644)
}

// fakeProber returns a fixed duration.
type fakeProber struct {
	duration float64
}

func (f *fakeProber) Probe(ctx context.Context, path string) (float64, error) {
	return f.duration, nil
}
