package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDuration = 100 * time.Millisecond

// WatchEvent describes a change to a file a watched validation depends on.
// Reload is set when the change affects the registry (dvs.yml or a schema file);
// otherwise an input changed and only the validation needs to run again.
type WatchEvent struct {
	Path   string
	Reload bool
}

// eventWatcher is the part of fsnotify.Watcher the Watcher uses.
type eventWatcher interface {
	Add(name string) error
	Close() error
	Events() chan fsnotify.Event
	Errors() chan error
}

type eventWatcherWrapper struct {
	*fsnotify.Watcher
}

func (w *eventWatcherWrapper) Events() chan fsnotify.Event { return w.Watcher.Events }
func (w *eventWatcherWrapper) Errors() chan error          { return w.Watcher.Errors }

func newEventWatcher() (eventWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &eventWatcherWrapper{fw}, nil
}

// Watcher monitors the configuration directory and the input files of a validation.
type Watcher struct {
	root     string
	extra    []string
	classify func(path string) *WatchEvent
	logger   *slog.Logger
	Ready    chan struct{}

	newWatcher func() (eventWatcher, error)
}

// NewWatcher returns a Watcher over root and its subdirectories, plus the directories
// holding the extra files. classify maps a changed path to an event, or nil when the
// path is irrelevant.
func NewWatcher(root string, extra []string, classify func(string) *WatchEvent, logger *slog.Logger) *Watcher {
	return &Watcher{
		root:       root,
		extra:      extra,
		classify:   classify,
		logger:     logger.With("component", "watcher"),
		Ready:      make(chan struct{}),
		newWatcher: newEventWatcher,
	}
}

// Watch calls callback for every relevant change, debounced, until ctx is done.
// Changes arriving within the debounce window are merged; a merged event reloads if
// any of its changes does.
func (w *Watcher) Watch(ctx context.Context, callback func(WatchEvent)) error {
	watcher, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := w.addRecursive(watcher, w.root); err != nil {
		return err
	}
	for _, dir := range w.extraDirs() {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	w.logger.Info("Watching for changes", "root", w.root)
	if w.Ready != nil {
		close(w.Ready)
	}

	var (
		mu      sync.Mutex
		timer   *time.Timer
		pending *WatchEvent
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-watcher.Errors():
			w.logger.Error("Watcher error", "error", err)
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			ev := w.handleEvent(watcher, event)
			if ev == nil {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			if pending != nil && pending.Reload {
				ev.Reload = true
			}
			pending = ev
			timer = time.AfterFunc(debounceDuration, func() {
				mu.Lock()
				if pending == nil {
					mu.Unlock()
					return
				}
				fire := *pending
				pending = nil
				mu.Unlock()
				callback(fire)
			})
			mu.Unlock()
		}
	}
}

func (w *Watcher) extraDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range w.extra {
		dir := filepath.Dir(f)
		if seen[dir] || isWithin(w.root, dir) {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// handleEvent processes a single fsnotify event. New directories under the root are
// watched too.
func (w *Watcher) handleEvent(watcher eventWatcher, event fsnotify.Event) *WatchEvent {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return nil
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if isWithin(w.root, event.Name) {
				if err := w.addRecursive(watcher, event.Name); err != nil {
					w.logger.Error("Failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return nil
		}
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		return nil
	}
	return w.classify(path)
}

// addRecursive adds root and its subdirectories, skipping hidden ones.
func (w *Watcher) addRecursive(watcher eventWatcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
