package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher calls onChange after the config file is written, once per burst
// of writes.
type Watcher struct {
	watcher    *fsnotify.Watcher
	path       string
	debounceMs int
	onChange   func(path string)
	logger     *logrus.Entry

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches path's directory, since editors commonly replace a file
// rather than write it in place. A non-positive debounceMs means 100.
func NewWatcher(path string, debounceMs int, onChange func(string), logger *logrus.Entry) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	if debounceMs <= 0 {
		debounceMs = 100
	}
	return &Watcher{
		watcher:    watcher,
		path:       path,
		debounceMs: debounceMs,
		onChange:   onChange,
		logger:     logger,
	}, nil
}

// Start blocks until ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	defer w.stopTimer()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.handleChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

func (w *Watcher) handleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(time.Duration(w.debounceMs)*time.Millisecond, func() {
		w.logger.Infof("Config changed: %s", filepath.Base(w.path))
		w.onChange(w.path)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
