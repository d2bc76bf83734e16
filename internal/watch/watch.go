// Package watch notifies the viewer when the open log file changes on disk,
// so the UI can offer a fresh load. Events are debounced: editors and
// loggers often produce bursts of writes per append.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 250 * time.Millisecond

// Watcher monitors a single file.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}

	mu      sync.Mutex
	stopped bool
}

// New creates a watcher.
func New() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fw: fw, done: make(chan struct{})}, nil
}

// Watch starts monitoring path and calls onChange after each debounced
// write, create, or rename affecting it. The parent directory is watched
// rather than the file itself so that log rotation (rename + recreate)
// keeps notifying.
func (w *Watcher) Watch(path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	go func() {
		var last time.Time
		for {
			select {
			case ev, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if ev.Name != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if time.Since(last) < debounceInterval {
					continue
				}
				last = time.Now()
				onChange()
			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Watch errors are non-fatal; the viewer just stops
				// auto-refreshing.
			case <-w.done:
				return
			}
		}
	}()
	return nil
}

// Stop ends the watch. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.done)
	_ = w.fw.Close()
}
