package tables

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the tables directory and reloads the tables when any of
// its files change. It blocks until the context is cancelled. A ticker acts
// as backup in case file events are missed.
func (t *Tables) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(t.dir); err != nil {
		return fmt.Errorf("failed to watch tables directory: %w", err)
	}

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := t.Reload(); err != nil {
				log.Printf("[WARN] Failed to reload tables after change: %v", err)
			}
		case err := <-watcher.Errors:
			log.Printf("[WARN] Tables watcher error: %v", err)
		case <-ticker.C:
			if err := t.Reload(); err != nil {
				log.Printf("[WARN] Failed to reload tables: %v", err)
			}
		}
	}
}
