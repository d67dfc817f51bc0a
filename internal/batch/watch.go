package batch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gofex/gofex"
)

// Watcher re-runs the engine whenever a watched source file changes.
type Watcher struct {
	engine  *gofex.Engine
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	onWrite func(FileResult)
}

// NewWatcher builds a Watcher over the given paths; directories are watched
// recursively. onChange receives the result for each rewritten file.
func NewWatcher(logger *zap.Logger, engine *gofex.Engine, paths []string, onChange func(FileResult)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{engine: engine, logger: logger, watcher: fsw, onWrite: onChange}
	for _, path := range paths {
		err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || p == path {
				return fsw.Add(p)
			}
			return nil
		})
		if err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run blocks until the context is cancelled, dispatching rewrites on write
// events.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Write == 0 || !hasDesiredExtension(event.Name) {
		return
	}
	// Editors often emit bursts of writes; give the file a moment to
	// settle so one save is one rewrite.
	time.Sleep(100 * time.Millisecond)
	result := processFile(w.logger, w.engine, event.Name)
	if result.Err != nil {
		w.logger.Error("rewrite failed", zap.String("file", event.Name), zap.Error(result.Err))
		return
	}
	if w.onWrite != nil {
		w.onWrite(result)
	}
}
