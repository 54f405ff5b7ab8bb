package draft

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"hrintake/internal/errors"
)

// Watcher re-runs a callback whenever a draft file changes on disk
type Watcher struct {
	mu sync.Mutex

	path     string
	lastMod  time.Time
	debounce time.Duration
	timer    *time.Timer

	fsWatcher *fsnotify.Watcher
	stopChan  chan struct{}
	fireChan  chan struct{}
	done      chan struct{}

	onChange func()
	logger   *errors.Logger
	running  bool
}

// NewWatcher creates a watcher for path. Bursts of writes closer together
// than debounce trigger one callback.
func NewWatcher(path string, debounce time.Duration, onChange func(), logger *errors.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Start begins watching
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("draft watcher is already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Editors often replace the file, so the directory is watched too.
	dir := filepath.Dir(w.path)
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	if stat, err := os.Stat(w.path); err == nil {
		w.lastMod = stat.ModTime()
	}

	w.fsWatcher = fsWatcher
	w.stopChan = make(chan struct{})
	w.fireChan = make(chan struct{}, 1)
	w.done = make(chan struct{})
	w.running = true
	go w.watchLoop(fsWatcher, w.stopChan, w.fireChan, w.done)

	if w.logger != nil {
		w.logger.Info("Draft watcher started", "file", w.path, "debounce_delay", w.debounce)
	}
	return nil
}

// Stop stops watching and waits for the event loop to exit
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopChan)
	if w.timer != nil {
		w.timer.Stop()
	}
	err := w.fsWatcher.Close()
	done := w.done
	w.mu.Unlock()

	<-done
	if err != nil && w.logger != nil {
		w.logger.LogError(err, "Failed to close file system watcher")
	}
	if w.logger != nil {
		w.logger.Info("Draft watcher stopped", "file", w.path)
	}
	return err
}

func (w *Watcher) watchLoop(fsWatcher *fsnotify.Watcher, stop, fire, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.schedule(fire)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.LogError(err, "File watcher error")
			}

		case <-fire:
			if w.hasChanged() {
				if w.logger != nil {
					w.logger.Debug("Draft file changed", "file", w.path)
				}
				w.onChange()
			}

		case <-stop:
			return
		}
	}
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// hasChanged compares the modification time with the last seen one
func (w *Watcher) hasChanged() bool {
	stat, err := os.Stat(w.path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if stat.ModTime().Equal(w.lastMod) {
		return false
	}
	w.lastMod = stat.ModTime()
	return true
}

func (w *Watcher) schedule(fire chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}
