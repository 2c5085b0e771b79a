// Package watch monitors the dataset and lane catalog files and emits a
// debounced change signal. Each signal means one full relayout and render;
// there is no incremental recompute path.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change reports that a tracked file settled after being modified.
type Change struct {
	File string    // absolute path
	At   time.Time // when the change was emitted
}

// Watcher monitors a fixed set of files using fsnotify. Editors typically
// replace files on save, so the parent directories are watched and events
// filtered down to the tracked paths.
type Watcher struct {
	Changes <-chan Change // Read-only external channel

	debounce time.Duration
	files    map[string]bool // cleaned absolute paths
	changes  chan Change     // Internal write channel
	done     chan struct{}
	watcher  *fsnotify.Watcher
}

// New creates a watcher for the given files. Empty paths are ignored; a
// non-positive debounce falls back to 250ms.
func New(debounce time.Duration, files ...string) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	set := make(map[string]bool, len(files))
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch: %s: %w", f, err)
		}
		set[abs] = true
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Changes:  ch,
		debounce: debounce,
		files:    set,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching the parent directories of the tracked files.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool, len(w.files))
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			return fmt.Errorf("watch: %s: %w", d, err)
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: a save often lands as several events in quick succession;
	// hold each file until it has been quiet for the full window.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				// Drain pending on close.
				for file := range pending {
					w.emit(file)
				}
				return
			}

			if !w.tracked(event.Name) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				pending[event.Name] = time.Now()
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			now := time.Now()
			for file, at := range pending {
				if now.Sub(at) >= w.debounce {
					w.emit(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}

func (w *Watcher) tracked(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

func (w *Watcher) emit(file string) {
	w.changes <- Change{File: file, At: time.Now()}
}
