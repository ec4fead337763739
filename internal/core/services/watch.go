package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/justkidding-scripts/termrag/internal/core/ports/driving"
	"github.com/justkidding-scripts/termrag/internal/logger"
)

// DefaultDebounce batches filesystem events before re-indexing.
// Editors typically emit several writes per save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher re-indexes files as they change on disk. Events are
// debounced and re-indexing is rate limited so a burst of writes does
// not monopolise the store.
type Watcher struct {
	ingest   driving.IngestService
	debounce time.Duration
	limiter  *rate.Limiter
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce overrides the event debounce window.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher that feeds the ingest service.
func NewWatcher(ingest driving.IngestService, opts ...WatchOption) *Watcher {
	w := &Watcher{
		ingest:   ingest,
		debounce: DefaultDebounce,
		limiter:  rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch blocks, re-indexing files under path until the context is
// cancelled. New subdirectories are picked up as they appear.
func (w *Watcher) Watch(ctx context.Context, path string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addRecursive(fw, path); err != nil {
		return err
	}

	report, err := w.ingest.AddPath(ctx, path)
	if err != nil {
		return err
	}
	logger.Info("Initial scan: %d indexed, %d skipped", report.Indexed, report.Skipped)

	pending := make(map[string]fsnotify.Op)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if op, relevant := w.classify(fw, event); relevant {
				pending[event.Name] = op
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)

		case <-timer.C:
			w.flush(ctx, pending)
			pending = make(map[string]fsnotify.Op)
		}
	}
}

// classify decides whether an event needs action, registering newly
// created directories as a side effect.
func (w *Watcher) classify(fw *fsnotify.Watcher, event fsnotify.Event) (fsnotify.Op, bool) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return 0, false
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(fw, event.Name); err != nil {
				logger.Warn("Watching new directory %s: %v", event.Name, err)
			}
			return 0, false
		}
		return fsnotify.Create, true
	case event.Op.Has(fsnotify.Write):
		return fsnotify.Write, true
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return fsnotify.Remove, true
	}
	return 0, false
}

// flush applies the debounced event set.
func (w *Watcher) flush(ctx context.Context, pending map[string]fsnotify.Op) {
	for path, op := range pending {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
		if op == fsnotify.Remove {
			if err := w.ingest.Remove(ctx, path); err != nil {
				logger.Debug("Removing %s: %v", path, err)
			} else {
				logger.Info("Removed %s from the index", path)
			}
			continue
		}
		report, err := w.ingest.AddPath(ctx, path)
		if err != nil {
			logger.Warn("Re-indexing %s: %v", path, err)
			continue
		}
		if report.Indexed > 0 {
			logger.Info("Re-indexed %s", path)
		}
	}
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fw.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}
