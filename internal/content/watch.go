package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Watch invalidates the cache whenever a file under the content directory
// changes. It blocks until ctx is cancelled. Embedded stores return at once.
func (s *Store) Watch(ctx context.Context) error {
	if s.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create content watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	slog.Info("Watching content directory", "dir", s.dir)

	// Editors often write a file in several steps; coalesce them.
	var pending bool
	debounce := time.NewTicker(watchDebounce)
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Content watcher error", "error", err)
		case <-debounce.C:
			if pending {
				pending = false
				s.Invalidate()
				slog.Info("Content changed, cache invalidated", "dir", s.dir)
			}
		}
	}
}
