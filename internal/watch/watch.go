// Package watch re-runs change detection whenever the requirements document
// is modified on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher observes one file and invokes a callback after changes settle.
// Editors typically save via write-temp-then-rename, so the parent directory
// is watched and events are filtered down to the target file.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()

	mu    sync.Mutex
	dirty bool
}

// New creates a watcher for path. A zero debounce uses the default.
func New(path string, debounce time.Duration, onChange func()) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
	}
}

// Run watches until ctx is cancelled. Changes arriving within one debounce
// window coalesce into a single callback.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case _, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			// Transient watch errors are not fatal; the next event
			// for the file still reaches us.

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	w.dirty = true
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	fire := w.dirty
	w.dirty = false
	w.mu.Unlock()

	if fire {
		w.onChange()
	}
}
