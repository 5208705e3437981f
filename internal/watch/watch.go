// Package watch converts images as they appear in a directory tree.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"pixpress/internal/config"
	"pixpress/internal/logging"
	"pixpress/internal/processor"
)

// DefaultSettle is how long a file must stay quiet before it is converted.
const DefaultSettle = 500 * time.Millisecond

// Watcher monitors a directory tree and feeds new or changed images to the engine.
type Watcher struct {
	run     config.Run
	engine  *processor.Engine
	log     *logging.Logger
	fsw     *fsnotify.Watcher
	settle  time.Duration
	pending map[string]time.Time
	stats   processor.Stats
}

// New watches run.TargetPath, which must be a directory.
func New(run config.Run, engine *processor.Engine, log *logging.Logger, settle time.Duration) (*Watcher, error) {
	kind, err := config.CheckTarget(run.TargetPath)
	if err != nil {
		return nil, err
	}
	if kind != config.TargetDir {
		return nil, fmt.Errorf("%w: watch needs a directory, got file %s", config.ErrInvalidTarget, run.TargetPath)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	w := &Watcher{
		run:     run,
		engine:  engine,
		log:     log,
		fsw:     fsw,
		settle:  settle,
		pending: make(map[string]time.Time),
	}
	if err := w.addTree(run.TargetPath); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree registers dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn("Cannot read directory %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.run.Excludes(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.log.Debug("Watching %s", path)
		return nil
	})
}

// Run blocks until ctx is done, converting files once they settle.
// onOutcome, when non-nil, is called after each conversion.
func (w *Watcher) Run(ctx context.Context, onOutcome func(processor.Outcome)) (processor.Stats, error) {
	defer w.fsw.Close()

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	w.log.Info("Watching %s for %s output (Ctrl+C to stop)", w.run.TargetPath, w.run.Formats)

	for {
		select {
		case <-ctx.Done():
			return w.stats, nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return w.stats, nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return w.stats, nil
			}
			w.log.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			w.flush(now, onOutcome)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && !w.run.Excludes(filepath.Base(event.Name)) {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warn("%v", err)
			}
			w.queueExisting(event.Name)
		}
		return
	}

	if w.engine.Eligible(event.Name) {
		w.pending[event.Name] = time.Now()
	}
}

// queueExisting picks up files that landed in a new directory before its
// watch was registered.
func (w *Watcher) queueExisting(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && w.run.Excludes(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.engine.Eligible(path) {
			w.pending[path] = time.Now()
		}
		return nil
	})
}

func (w *Watcher) flush(now time.Time, onOutcome func(processor.Outcome)) {
	for path, last := range w.pending {
		if now.Sub(last) < w.settle {
			continue
		}
		delete(w.pending, path)

		out := w.engine.ConvertOne(path, w.run.Formats)
		w.stats.Apply(out)
		if onOutcome != nil {
			onOutcome(out)
		}
	}
}
