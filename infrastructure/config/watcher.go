package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	domainconfig "github.com/felixgeelhaar/checkwise/domain/config"
	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
)

// Watcher reloads a configuration file when it changes on disk and hands
// each successfully loaded configuration to a callback.
type Watcher struct {
	path     string
	loader   *Loader
	debounce time.Duration
	onChange func(*domainconfig.Config)
	onError  func(error)

	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	done   chan struct{}
	closed bool
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the settle delay between the last file event and the
// reload. Editors produce bursts of events for a single save.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnError sets the callback invoked when a reload fails.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		if fn != nil {
			w.onError = fn
		}
	}
}

// NewWatcher creates a watcher for path. A nil loader uses default loader
// settings.
func NewWatcher(path string, loader *Loader, onChange func(*domainconfig.Config), opts ...WatcherOption) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback is required")
	}
	if loader == nil {
		loader = NewLoader()
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		loader:   loader,
		debounce: 200 * time.Millisecond,
		onChange: onChange,
		onError:  func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The parent directory is watched, not the file
// itself, so editors that replace the file by rename still trigger a
// reload.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if w.fsw != nil {
		return fmt.Errorf("watcher already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	go w.loop(fsw, w.done)
	return nil
}

func (w *Watcher) loop(fsw *fsnotify.Watcher, done chan struct{}) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)

		case <-fire:
			timer = nil
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.loader.LoadFile(w.path)
	if err != nil {
		logging.Warn().
			Add(logging.Str("path", w.path)).
			Add(logging.ErrorField(err)).
			Msg("config reload failed")
		w.onError(err)
		return
	}
	logging.Info().
		Add(logging.Str("path", w.path)).
		Msg("configuration reloaded")
	w.onChange(cfg)
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.fsw == nil {
		return nil
	}
	close(w.done)
	return w.fsw.Close()
}
