package network

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDuration = 250 * time.Millisecond

// Watch reloads the registry whenever the segment file changes, until ctx is
// cancelled. A failed reload is logged and the current snapshot kept.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		return fmt.Errorf("failed to watch network: no segment file configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so atomic saves (rename over the file) are seen
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch segment directory: %w", err)
	}

	go r.watchLoop(ctx, watcher)
	r.logger.Info("Segment file watcher started", zap.String("path", r.path))
	return nil
}

func (r *Registry) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	// Debounce timer to avoid multiple reloads per save
	var debounceTimer *time.Timer
	target := filepath.Base(r.path)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			r.logger.Info("Segment file watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if _, err := r.Reload(); err != nil {
						r.logger.Error("Failed to reload street network, keeping current", zap.Error(err))
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("File watcher error", zap.Error(err))
		}
	}
}
