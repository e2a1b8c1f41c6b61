// Package watch re-runs a handler when eligible files change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/phobologic/nginject/internal/discover"
)

// DefaultDebounce is how long a path must stay quiet before it is handled.
const DefaultDebounce = 100 * time.Millisecond

// Handler is called with the path of a changed file. Calls are serialized.
type Handler func(ctx context.Context, path string)

// Options configures a Watcher.
type Options struct {
	Filter   discover.Filter
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watcher watches directory trees for changes to eligible files.
type Watcher struct {
	opts    Options
	log     *zap.Logger
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan string
	done   chan struct{}
}

// New starts watching every directory under roots.
func New(roots []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		opts:    opts,
		log:     log,
		watcher: fw,
		timers:  make(map[string]*time.Timer),
		ready:   make(chan string, 64),
		done:    make(chan struct{}),
	}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree adds root and its searchable subdirectories.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watching %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if (path != root && discover.SkipDir(d.Name())) || w.opts.Filter.Excluded(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.log.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
			return nil
		}
		w.log.Debug("watching directory", zap.String("path", path))
		return nil
	})
}

// Run delivers changes to handle until ctx is done, then releases the
// watcher.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.event(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", zap.Error(err))

		case path := <-w.ready:
			handle(ctx, path)
		}
	}
}

func (w *Watcher) event(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || w.opts.Filter.Excluded(event.Name) {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !discover.SkipDir(filepath.Base(event.Name)) {
				if err := w.addTree(event.Name); err != nil {
					w.log.Warn("failed to watch directory", zap.String("path", event.Name), zap.Error(err))
				}
			}
			return
		}
	}

	if !w.opts.Filter.MatchName(filepath.Base(event.Name)) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[event.Name]; ok {
		t.Stop()
	}
	path := event.Name
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	close(w.done)
	_ = w.watcher.Close()
}

// Run watches roots and calls handle for each eligible changed file until
// ctx is cancelled.
func Run(ctx context.Context, roots []string, opts Options, handle Handler) error {
	w, err := New(roots, opts)
	if err != nil {
		return err
	}
	return w.Run(ctx, handle)
}
