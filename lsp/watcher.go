package lsp

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher calls onChange after any of a fixed set of files is written,
// created, removed or renamed. Bursts of events within the debounce delay
// result in one call.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	paths    map[string]bool
	onChange func()
	delay    time.Duration

	stopCh chan struct{}
	doneCh chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewFileWatcher watches the directories of paths, since editors often
// replace a file instead of writing it in place.
func NewFileWatcher(onChange func(), paths ...string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &FileWatcher{
		watcher:  watcher,
		paths:    make(map[string]bool, len(paths)),
		onChange: onChange,
		delay:    100 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

func (w *FileWatcher) Start() {
	go w.run()
}

// Stop ends the event loop and cancels a pending call.
func (w *FileWatcher) Stop() error {
	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return w.watcher.Close()
}

func (w *FileWatcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.matches(event) {
				log.Debug("watched file changed", "path", event.Name, "op", event.Op.String())
				w.trigger()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error("file watcher", "error", err.Error())
		}
	}
}

func (w *FileWatcher) matches(event fsnotify.Event) bool {
	if !w.paths[filepath.Clean(event.Name)] {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (w *FileWatcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.onChange)
}
