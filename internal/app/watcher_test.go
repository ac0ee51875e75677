package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEventWatcher struct {
	AddFunc    func(name string) error
	CloseFunc  func() error
	EventsChan chan fsnotify.Event
	ErrorsChan chan error
}

func (m *mockEventWatcher) Add(name string) error {
	if m.AddFunc != nil {
		return m.AddFunc(name)
	}
	return nil
}

func (m *mockEventWatcher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
func (m *mockEventWatcher) Events() chan fsnotify.Event { return m.EventsChan }
func (m *mockEventWatcher) Errors() chan error          { return m.ErrorsChan }

// classifyNames treats files named in reload as configuration and every other .json
// file as input.
func classifyNames(reload ...string) func(string) *WatchEvent {
	return func(path string) *WatchEvent {
		for _, r := range reload {
			if filepath.Base(path) == r {
				return &WatchEvent{Path: path, Reload: true}
			}
		}
		if filepath.Ext(path) == ".json" {
			return &WatchEvent{Path: path}
		}
		return nil
	}
}

func startWatcher(t *testing.T, w *Watcher) (<-chan WatchEvent, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan WatchEvent, 10)
	go func() {
		_ = w.Watch(ctx, func(e WatchEvent) {
			events <- e
		})
	}()

	select {
	case <-w.Ready:
	case <-time.After(1 * time.Second):
		cancel()
		t.Fatal("watcher did not become ready in time")
	}
	return events, cancel
}

func TestWatcher(t *testing.T) {
	t.Parallel()

	t.Run("file in root", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		w := NewWatcher(root, nil, classifyNames("dvs.yml"), discardLogger())
		events, cancel := startWatcher(t, w)
		defer cancel()

		path := filepath.Join(root, "dvs.yml")
		require.NoError(t, os.WriteFile(path, []byte("formats: []\n"), 0o600))

		select {
		case event := <-events:
			assert.Equal(t, path, event.Path)
			assert.True(t, event.Reload)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for watch event")
		}
	})

	t.Run("extra file outside root", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		input := filepath.Join(t.TempDir(), "in.json")
		require.NoError(t, os.WriteFile(input, []byte(`{}`), 0o600))

		w := NewWatcher(root, []string{input}, classifyNames(), discardLogger())
		events, cancel := startWatcher(t, w)
		defer cancel()

		require.NoError(t, os.WriteFile(input, []byte(`{"a":1}`), 0o600))

		select {
		case event := <-events:
			assert.Equal(t, input, event.Path)
			assert.False(t, event.Reload)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for watch event")
		}
	})

	t.Run("new subdirectory is watched", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		w := NewWatcher(root, nil, classifyNames(), discardLogger())
		events, cancel := startWatcher(t, w)
		defer cancel()

		sub := filepath.Join(root, "schemas")
		require.NoError(t, os.Mkdir(sub, 0o750))
		time.Sleep(200 * time.Millisecond)
		path := filepath.Join(sub, "person.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

		select {
		case event := <-events:
			assert.Equal(t, path, event.Path)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for watch event")
		}
	})

	t.Run("changes within the debounce window are merged", func(t *testing.T) {
		t.Parallel()
		mock := &mockEventWatcher{
			EventsChan: make(chan fsnotify.Event, 2),
			ErrorsChan: make(chan error),
		}
		root := t.TempDir()
		w := NewWatcher(root, nil, classifyNames("dvs.yml"), discardLogger())
		w.newWatcher = func() (eventWatcher, error) { return mock, nil }

		mock.EventsChan <- fsnotify.Event{Name: filepath.Join(root, "dvs.yml"), Op: fsnotify.Write}
		mock.EventsChan <- fsnotify.Event{Name: filepath.Join(root, "in.json"), Op: fsnotify.Write}

		events, cancel := startWatcher(t, w)
		defer cancel()

		select {
		case event := <-events:
			assert.Equal(t, filepath.Join(root, "in.json"), event.Path)
			assert.True(t, event.Reload, "a merged event reloads if any change does")
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for watch event")
		}
		select {
		case event := <-events:
			t.Fatalf("unexpected second event: %+v", event)
		case <-time.After(3 * debounceDuration):
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()
		w := NewWatcher(t.TempDir(), nil, classifyNames(), discardLogger())
		innerCtx, innerCancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			err := w.Watch(innerCtx, func(_ WatchEvent) {})
			assert.ErrorIs(t, err, context.Canceled)
			close(done)
		}()

		select {
		case <-w.Ready:
		case <-time.After(1 * time.Second):
			t.Fatal("watcher did not become ready in time")
		}

		innerCancel()

		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.Fatal("watcher did not stop on context cancellation")
		}
	})

	t.Run("closed event channel", func(t *testing.T) {
		t.Parallel()
		mock := &mockEventWatcher{
			EventsChan: make(chan fsnotify.Event),
			ErrorsChan: make(chan error),
		}
		w := NewWatcher(t.TempDir(), nil, classifyNames(), discardLogger())
		w.newWatcher = func() (eventWatcher, error) { return mock, nil }
		close(mock.EventsChan)

		assert.NoError(t, w.Watch(context.Background(), func(_ WatchEvent) {}))
	})

	t.Run("watcher creation error", func(t *testing.T) {
		t.Parallel()
		w := NewWatcher(t.TempDir(), nil, classifyNames(), discardLogger())
		w.newWatcher = func() (eventWatcher, error) { return nil, errors.New("no inotify") }

		assert.EqualError(t, w.Watch(context.Background(), func(_ WatchEvent) {}), "no inotify")
	})

	t.Run("add error", func(t *testing.T) {
		t.Parallel()
		mock := &mockEventWatcher{AddFunc: func(string) error { return errors.New("add failed") }}
		w := NewWatcher(t.TempDir(), nil, classifyNames(), discardLogger())
		w.newWatcher = func() (eventWatcher, error) { return mock, nil }

		assert.EqualError(t, w.Watch(context.Background(), func(_ WatchEvent) {}), "add failed")
	})

	t.Run("handleEvent - irrelevant event", func(t *testing.T) {
		t.Parallel()
		w := NewWatcher(t.TempDir(), nil, classifyNames(), discardLogger())
		mock := &mockEventWatcher{}
		assert.Nil(t, w.handleEvent(mock, fsnotify.Event{Name: "in.json", Op: fsnotify.Chmod}))
		assert.Nil(t, w.handleEvent(mock, fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}))
	})

	t.Run("addRecursive - skip hidden", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, ".hidden"), 0o750))
		require.NoError(t, os.Mkdir(filepath.Join(root, "visible"), 0o750))

		var added []string
		mock := &mockEventWatcher{AddFunc: func(name string) error {
			added = append(added, name)
			return nil
		}}
		w := NewWatcher(root, nil, classifyNames(), discardLogger())
		require.NoError(t, w.addRecursive(mock, root))
		assert.ElementsMatch(t, []string{root, filepath.Join(root, "visible")}, added)
	})
}

func TestWatcher_extraDirs(t *testing.T) {
	t.Parallel()

	root := filepath.Join(string(filepath.Separator), "cfg")
	w := NewWatcher(root, []string{
		filepath.Join(root, "schemas", "a.json"),
		filepath.Join(string(filepath.Separator), "data", "a.json"),
		filepath.Join(string(filepath.Separator), "data", "b.json"),
		filepath.Join(string(filepath.Separator), "cfg-other", "c.json"),
	}, classifyNames(), discardLogger())

	assert.Equal(t, []string{
		filepath.Join(string(filepath.Separator), "data"),
		filepath.Join(string(filepath.Separator), "cfg-other"),
	}, w.extraDirs())
}
