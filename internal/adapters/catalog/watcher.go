package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove

// Watcher reports changes to a set of catalog files. It watches their
// directories rather than the files so that editors that save by renaming
// a temporary file are still noticed.
type Watcher struct {
	files  map[string]struct{}
	dirs   map[string]struct{}
	logger *slog.Logger
}

// NewWatcher creates a watcher for the given files.
func NewWatcher(paths []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		files:  make(map[string]struct{}, len(paths)),
		dirs:   make(map[string]struct{}),
		logger: logger.With(slog.String("component", "catalog.Watcher")),
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}

		w.files[abs] = struct{}{}
		w.dirs[filepath.Dir(abs)] = struct{}{}
	}

	return w, nil
}

// Watch starts watching and returns a channel of changed file paths. The
// channel is closed when ctx is done or the underlying watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	for dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	changes := make(chan string)

	go func() {
		defer close(changes)
		defer fsw.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fsw.Events:
				if !ok {
					return
				}

				path, relevant := w.relevant(event)
				if !relevant {
					continue
				}

				w.logger.DebugContext(ctx, "catalog file changed",
					slog.String("path", path),
					slog.String("op", event.Op.String()),
				)

				select {
				case changes <- path:
				case <-ctx.Done():
					return
				}

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}

				w.logger.WarnContext(ctx, "file watcher error", slog.Any("error", err))
			}
		}
	}()

	return changes, nil
}

func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&relevantOps == 0 {
		return "", false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}

	_, ok := w.files[abs]

	return abs, ok
}
