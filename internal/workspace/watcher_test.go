package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForEvent drains the stream until an event for path arrives or the
// timeout expires.
func waitForEvent(t *testing.T, w *Watcher, path string) (Event, bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case event, ok := <-w.Events():
			if !ok {
				return Event{}, false
			}
			if event.Path == path {
				return event, true
			}
		case <-deadline:
			return Event{}, false
		}
	}
}

func TestWatcherReportsFileCreation(t *testing.T) {
	ws := t.TempDir()
	w, err := NewWatcher(ws)
	require.NoError(t, err)
	defer w.Close()

	target := filepath.Join(ws, "notes.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0644))

	event, ok := waitForEvent(t, w, target)
	require.True(t, ok, "no event received for %s", target)
	assert.Contains(t, event.Op, "CREATE")
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	ws := t.TempDir()
	w, err := NewWatcher(ws)
	require.NoError(t, err)
	defer w.Close()

	sub := filepath.Join(ws, "src")
	require.NoError(t, os.Mkdir(sub, 0755))

	_, ok := waitForEvent(t, w, sub)
	require.True(t, ok, "no event for new directory")

	// The new directory is picked up, so files inside it report too.
	target := filepath.Join(sub, "app.ts")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	_, ok = waitForEvent(t, w, target)
	assert.True(t, ok, "no event for file in new directory")
}

func TestWatcherSkipsIgnoredNames(t *testing.T) {
	ws := t.TempDir()
	w, err := NewWatcher(ws)
	require.NoError(t, err)
	defer w.Close()

	hidden := filepath.Join(ws, ".hidden")
	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0644))
	visible := filepath.Join(ws, "visible.txt")
	require.NoError(t, os.WriteFile(visible, []byte("x"), 0644))

	// Drain until the visible file shows up; the dotfile written before it
	// must never appear in the stream.
	deadline := time.After(3 * time.Second)
	for {
		select {
		case event, ok := <-w.Events():
			require.True(t, ok)
			assert.NotEqual(t, hidden, event.Path)
			if event.Path == visible {
				return
			}
		case <-deadline:
			t.Fatal("no event received for visible file")
		}
	}
}

func TestWatcherRequiresValidRoot(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestWatcherCloseEndsStream(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok, "stream should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("event stream did not close")
	}
}
