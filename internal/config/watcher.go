package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is how long the file must stay quiet before it is re-read.
const DebounceInterval = 100 * time.Millisecond

// Watcher re-loads a config file whenever it changes. The directory is
// watched rather than the file so editors that save by rename are seen.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher

	Reloads chan Config
	Errors  chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{
		path:    abs,
		watcher: fw,
		Reloads: make(chan Config, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher. Reloads and Errors are closed once the background
// goroutine has exited. Close is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Reloads)
		close(w.Errors)
		close(w.done)
	}()

	var debounce <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(DebounceInterval)
		case <-debounce:
			debounce = nil
			cfg, err := Load(w.path)
			if err != nil {
				w.sendError(err)
				continue
			}
			w.sendReload(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		case <-w.closeCh:
			return
		}
	}
}

// sendReload keeps only the newest config if the consumer is behind.
func (w *Watcher) sendReload(cfg Config) {
	for {
		select {
		case w.Reloads <- cfg:
			return
		case <-w.closeCh:
			return
		default:
		}
		select {
		case <-w.Reloads:
		default:
		}
	}
}

// sendError drops the error if an earlier one is still unread.
func (w *Watcher) sendError(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}
