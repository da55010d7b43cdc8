package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"wavecut/logger"
)

// IngestFunc registers a dropped file as a source asset. It is handed a local
// path it may read; the watcher removes the file afterwards on success.
type IngestFunc func(ctx context.Context, path string) error

// Watcher monitors a drop folder and ingests audio files placed into it.
// Writers are debounced so a file is only picked up once it has stopped
// growing.
type Watcher struct {
	dir     string
	ingest  IngestFunc
	settle  time.Duration
	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a Watcher over dir.
func NewWatcher(dir string, ingest IngestFunc) *Watcher {
	return &Watcher{
		dir:     dir,
		ingest:  ingest,
		settle:  2 * time.Second,
		pending: make(map[string]*time.Timer),
	}
}

// Start begins watching until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return err
	}

	logger.Info("watching inbox directory", logger.String("dir", w.dir))

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if !supportedAudio(event.Name) {
					continue
				}
				w.schedule(ctx, event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("inbox watcher error", logger.ErrorField(err))
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// schedule (re)arms the settle timer for path; every write pushes ingestion
// back until the file has been quiet for the settle window.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if err := w.ingest(ctx, path); err != nil {
			logger.Error("failed to ingest dropped file",
				logger.String("path", path), logger.ErrorField(err))
			return
		}
		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove ingested file",
				logger.String("path", path), logger.ErrorField(err))
		}
	})
}

func supportedAudio(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav":
		return true
	}
	return false
}
