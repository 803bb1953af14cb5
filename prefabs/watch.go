package prefabs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changed spec, script and model files under a set of
// directories. Bursts of events for one file within 100ms collapse to one.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
	dirs    []string
}

// NewWatcher watches dirs. Directories that do not exist are skipped so a
// build without on-disk overrides still runs.
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	var watched []string
	for _, dir := range dirs {
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
		watched = append(watched, dir)
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		dirs:    watched,
	}
	go watcher.run()
	return watcher, nil
}

// Dirs lists the directories actually being watched.
func (w *Watcher) Dirs() []string {
	return w.dirs
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// Poll drains pending change notifications without blocking. Paths are
// returned once each, in arrival order.
func (w *Watcher) Poll() ([]string, error) {
	var (
		changed []string
		seen    = map[string]bool{}
	)
	for {
		select {
		case name := <-w.Events:
			if !seen[name] {
				seen[name] = true
				changed = append(changed, name)
			}
		case err := <-w.Errors:
			return changed, err
		default:
			return changed, nil
		}
	}
}

func (w *Watcher) run() {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !IsSpecFile(event.Name) && !IsScriptFile(event.Name) && !IsModelFile(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// IsSpecFile reports whether path is a yaml spec.
func IsSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func IsScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}

func IsModelFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".obj"
}
