// Package watch re-runs the conformance checks when workspace sources
// change on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ichthus/internal/logging"
	"ichthus/internal/source"
)

// ChangeFunc receives a settled batch of changed files, workspace-relative.
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher monitors a workspace for source and guide-document edits and
// invokes the change callback once a burst of events has settled.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	workspace   string
	onChange    ChangeFunc
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity for debugging.
type Stats struct {
	FilesChanged  int
	FilesDeleted  int
	Batches       int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// New creates a Watcher over the workspace root. The callback runs on the
// watcher goroutine, so it should not block for long.
func New(workspace string, debounce time.Duration, onChange ChangeFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		watcher:     fsw,
		workspace:   workspace,
		onChange:    onChange,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start registers the workspace directory tree and begins watching.
// Non-blocking; events are handled on a goroutine until Stop.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.workspace); err != nil {
		return err
	}
	logging.Watch("Watching workspace: %s", w.workspace)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Error("Error closing watcher: %v", err)
	}
	logging.Watch("Watcher stopped")
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats returns a snapshot of the watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// addTree registers every watchable directory under root.
func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if skipDir(info.Name()) && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			logging.Get(logging.CategoryWatch).Warn("Failed to watch %s: %v", path, err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "bin", "obj", "node_modules":
		return true
	}
	return false
}

// interesting reports whether edits to the path should trigger a re-lint.
func interesting(path string) bool {
	base := filepath.Base(path)
	if source.IsGenerated(base) {
		return false
	}
	if strings.EqualFold(filepath.Ext(base), ".md") {
		return true
	}
	return source.LanguageFor(base) != ""
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	flushTicker := time.NewTicker(100 * time.Millisecond)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("Context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("Watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-flushTicker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories join the watch set so nested sources are seen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skipDir(info.Name()) {
				if err := w.watcher.Add(event.Name); err != nil {
					logging.Get(logging.CategoryWatch).Warn("Failed to watch new dir %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	if !interesting(event.Name) {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0, event.Op&fsnotify.Write != 0:
		w.mu.Lock()
		w.stats.FilesChanged++
		w.stats.LastEventPath = event.Name
		w.stats.LastEventTime = time.Now()
		w.debounceMap[event.Name] = time.Now()
		w.mu.Unlock()
		logging.WatchDebug("Change queued: %s", event.Name)

	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		// Deleted files drop out of the pending batch. A re-lint of a
		// removed path would only report read errors.
		w.mu.Lock()
		w.stats.FilesDeleted++
		delete(w.debounceMap, event.Name)
		w.mu.Unlock()
	}
}

// flush invokes the callback with paths whose events have settled past
// the debounce window.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, last := range w.debounceMap {
		if now.Sub(last) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	if len(settled) > 0 {
		w.stats.Batches++
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}

	for i, p := range settled {
		if rel, err := filepath.Rel(w.workspace, p); err == nil {
			settled[i] = rel
		}
	}
	sort.Strings(settled)

	logging.Watch("Re-linting %d changed file(s)", len(settled))
	w.onChange(ctx, settled)
}
