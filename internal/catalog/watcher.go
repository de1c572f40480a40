package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/felixgeelhaar/smartplan/internal/log"
)

// DefaultDebounce is used when a Watcher is created with a zero debounce.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is notified after every reload attempt.
type ReloadFunc func(c *Catalog, err error)

// dataLink is the symlink Kubernetes swaps atomically when a mounted
// ConfigMap changes.
const dataLink = "..data"

// Watcher reloads a catalog file into a Store when it changes on disk.
// A file that fails to load leaves the previous catalog active.
type Watcher struct {
	path     string
	store    *Store
	debounce time.Duration
	logger   *log.Logger
	onReload ReloadFunc

	watcher *fsnotify.Watcher
	stopped atomic.Bool

	mu     sync.Mutex
	target string // path resolves to this file through any symlinks
}

// NewWatcher creates a watcher for path. The parent directory is watched so
// that editors which replace the file by rename are still observed.
func NewWatcher(path string, store *Store, debounce time.Duration, logger *log.Logger, onReload ReloadFunc) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog watcher requires a file path")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.Discard()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	// A missing file is tolerated here; Load reports it on reload.
	target, _ := filepath.EvalSymlinks(abs)

	return &Watcher{
		path:     abs,
		store:    store,
		debounce: debounce,
		logger:   logger.With("component", "catalog_watcher", "path", abs),
		onReload: onReload,
		watcher:  fw,
		target:   target,
	}, nil
}

// Run processes file events until ctx is cancelled. No reload runs after
// it returns, including one already scheduled by the debouncer.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debouncer := newDebouncer(w.debounce, w.Reload)
	defer func() {
		w.stopped.Store(true)
		debouncer.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if w.affects(event.Name) {
				debouncer.Trigger()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("catalog watcher error")
		}
	}
}

// affects reports whether an event on name can change what the catalog
// path resolves to. Besides the file itself this covers a swap of a
// symlinked directory further up, such as a ConfigMap's ..data link.
func (w *Watcher) affects(name string) bool {
	name = filepath.Clean(name)
	if name == w.path || filepath.Base(name) == dataLink {
		return true
	}

	target, err := filepath.EvalSymlinks(w.path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if target == w.target {
		return false
	}
	w.target = target
	return true
}

// Reload reads the file now and swaps it in when valid. It does nothing
// once Run has returned.
func (w *Watcher) Reload() {
	if w.stopped.Load() {
		return
	}

	if target, err := filepath.EvalSymlinks(w.path); err == nil {
		w.mu.Lock()
		w.target = target
		w.mu.Unlock()
	}

	c, err := Load(w.path)
	if w.stopped.Load() {
		return
	}
	if err != nil {
		w.logger.WithError(err).Warn("catalog reload failed, keeping previous catalog")
	} else {
		w.store.Swap(c)
		w.logger.Info("catalog reloaded", "version", c.Version, "digest", c.Digest)
	}
	if w.onReload != nil {
		w.onReload(c, err)
	}
}

// debouncer coalesces bursts of file events into one reload.
type debouncer struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

func newDebouncer(window time.Duration, callback func()) *debouncer {
	return &debouncer{window: window, callback: callback}
}

func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.callback)
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}
