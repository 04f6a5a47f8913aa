// Package watch flushes the cache when the post archive changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/daybook/internal/logfields"
	"git.home.luguber.info/inful/daybook/internal/metrics"
)

// DefaultDebounce coalesces bursts of events, such as an editor save.
const DefaultDebounce = 300 * time.Millisecond

// Flusher empties a cache.
type Flusher interface {
	Flush(reason metrics.FlushReason)
}

// Watcher triggers a flush after file changes settle.
type Watcher struct {
	target   Flusher
	debounce time.Duration
	logger   *slog.Logger
	ready    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before flushing.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a Watcher that flushes target.
func New(target Flusher, opts ...Option) *Watcher {
	w := &Watcher{
		target:   target,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ready is closed once every root is being watched.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches roots recursively until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, roots ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", root, err)
		}
		if err := w.addDirsRecursive(watcher, abs); err != nil {
			return err
		}
		w.logger.Info("Watching content for changes", logfields.Path(abs))
	}
	close(w.ready)

	trigger, stop := w.debouncer()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// debouncer returns a trigger that flushes once events stop for the debounce
// period, and a stop func that cancels a pending flush.
func (w *Watcher) debouncer() (trigger func(), stop func()) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			w.logger.Info("Content changed; flushing cache")
			w.target.Flush(metrics.FlushContent)
		})
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return trigger, stop
}

func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) || ev.Op == fsnotify.Chmod {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(watcher, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports events from hidden, editor swap and OS metadata files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
