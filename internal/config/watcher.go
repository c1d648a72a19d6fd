package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a config file and invokes a callback with the
// reloaded configuration on every successful change.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(*FileConfig)
	lg       *slog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
}

// NewWatcher creates a watcher for path. The callback runs on the
// watcher goroutine; reload failures are logged and skipped.
func NewWatcher(path string, lg *slog.Logger, onChange func(*FileConfig)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     path,
		watcher:  w,
		onChange: onChange,
		lg:       lg,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching for file changes. Watching the directory, not
// the file, survives editors that replace the file on save.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.lg.Info("watching config file", "path", w.path)

	go w.loop()
	return nil
}

// Stop stops watching for changes.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	return w.watcher.Close()
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) loop() {
	filename := filepath.Base(w.path)
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.lg.Error("config reload failed", "path", w.path, "error", err)
				continue
			}
			w.lg.Info("config reloaded", "path", w.path, "event", event.Op.String())
			if w.onChange != nil {
				w.onChange(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.lg.Error("config watcher error", "path", w.path, "error", err)
		}
	}
}
