// Package watcher rebuilds the gallery when source photos or trigger files change.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyperjump/shashin/internal/photos"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// RebuildFunc is invoked once per debounced burst of changes.
type RebuildFunc func(ctx context.Context) error

// Watcher watches a photo directory and invokes a rebuild after changes settle.
// Rebuilds never overlap.
type Watcher struct {
	dir        string
	extensions []string
	files      map[string]bool // extra trigger files, cleaned absolute paths
	onChange   RebuildFunc
	debounce   time.Duration

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	runMu    sync.Mutex
	ctx      context.Context
	done     chan struct{} // closed by Stop; one per Start
	started  bool
	logger   *zap.Logger // optional
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for change and rebuild events.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long changes must settle before a rebuild.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithFiles also triggers a rebuild when any of paths changes, e.g. the caption mapping.
func WithFiles(paths ...string) WatcherOption {
	return func(w *Watcher) {
		for _, p := range paths {
			if p == "" {
				continue
			}
			if abs, err := filepath.Abs(p); err == nil {
				w.files[filepath.Clean(abs)] = true
			}
		}
	}
}

// NewWatcher creates a watcher for dir; extensions filter which files count (empty = all).
func NewWatcher(dir string, extensions []string, onChange RebuildFunc, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:        dir,
		extensions: extensions,
		files:      make(map[string]bool),
		onChange:   onChange,
		debounce:   defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
// A stopped watcher can be started again.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(w.dir)
	if err != nil {
		_ = fw.Close()
		return err
	}
	w.dir = filepath.Clean(abs)
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		_ = fw.Close()
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close()
		return err
	}
	parents := make(map[string]bool)
	for f := range w.files {
		parent := filepath.Dir(f)
		if parent == w.dir || parents[parent] {
			continue
		}
		if err := fw.Add(parent); err != nil {
			_ = fw.Close()
			return err
		}
		parents[parent] = true
	}
	w.watcher = fw
	w.ctx = ctx
	w.done = make(chan struct{})
	w.started = true
	if w.logger != nil {
		w.logger.Debug("watcher starting", zap.String("dir", w.dir), zap.Strings("extensions", w.extensions), zap.Int("files", len(w.files)))
	}
	go w.run(ctx, fw, w.done)
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.stop(done)
			return
		case <-done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if !w.relevant(ev.Name) {
		return
	}
	if w.logger != nil {
		w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	}
	w.schedule()
}

// relevant reports whether path is a photo in the watched dir or a trigger file.
func (w *Watcher) relevant(path string) bool {
	clean := filepath.Clean(path)
	if w.files[clean] {
		return true
	}
	return filepath.Dir(clean) == w.dir && photos.MatchExtension(clean, w.extensions)
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.rebuild)
}

func (w *Watcher) rebuild() {
	w.mu.Lock()
	w.timer = nil
	ctx := w.ctx
	started := w.started
	w.mu.Unlock()
	if !started || ctx.Err() != nil {
		return
	}

	w.runMu.Lock()
	defer w.runMu.Unlock()
	if w.logger != nil {
		w.logger.Info("rebuilding after changes", zap.String("dir", w.dir))
	}
	if err := w.onChange(ctx); err != nil && w.logger != nil {
		w.logger.Error("rebuild failed", zap.Error(err))
	}
}

// Trigger runs a rebuild immediately, waiting for any rebuild in progress.
func (w *Watcher) Trigger(ctx context.Context) error {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	return w.onChange(ctx)
}

// Stop stops the watcher and releases resources. Pending rebuilds are cancelled.
func (w *Watcher) Stop() {
	w.stop(nil)
}

// stop ends the current run. A non-nil done only stops the run it belongs to.
func (w *Watcher) stop(done chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started || w.watcher == nil {
		return
	}
	if done != nil && done != w.done {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	close(w.done)
}
