package workspace

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/codefionn/werkbank/internal/logger"
)

// Event is a filesystem change under the watched workspace, forwarded to
// connected GUI clients so the file panel can refresh.
type Event struct {
	Path string `json:"path"`
	Op   string `json:"op"`
}

// Watcher reports filesystem changes under a workspace root. Watch
// failures degrade to "no events"; they are logged, never surfaced.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan Event
	done    chan struct{}
	log     *logger.Logger
}

// NewWatcher starts watching the canonicalized workspace root and its
// non-ignored subdirectories.
func NewWatcher(workspaceRaw string) (*Watcher, error) {
	root, err := CanonicalizeRoot(workspaceRaw)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fsw,
		events:  make(chan Event, 256),
		done:    make(chan struct{}),
		log:     logger.Global().WithPrefix("watcher"),
	}

	w.addTree(root, 0)
	go w.run()

	return w, nil
}

// Events returns the change event stream.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the watcher and closes the event stream.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// addTree registers dir and its subdirectories up to the search depth
// bound, skipping ignored and dot directories.
func (w *Watcher) addTree(dir string, depth int) {
	if depth > maxSearchDepth {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.log.Warn("failed to watch %s: %v", dir, err)
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() || skipName(entry.Name()) {
			continue
		}
		w.addTree(filepath.Join(dir, entry.Name()), depth+1)
	}
}

func (w *Watcher) run() {
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if skipName(filepath.Base(event.Name)) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(event.Name, 1)
				}
			}
			select {
			case w.events <- Event{Path: event.Name, Op: event.Op.String()}:
			default:
				w.log.Warn("event channel full, dropping %s", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error: %v", err)
		}
	}
}
