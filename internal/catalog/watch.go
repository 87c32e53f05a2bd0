package catalog

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch calls onChange after wallpapers are added to, removed from or renamed
// in root. Bursts of events (Steam unpacking a download) are collapsed into
// one call once root has been quiet for debounce. Watch blocks until ctx is
// done.
func Watch(ctx context.Context, root string, debounce time.Duration, logger *log.Logger, onChange func()) error {
	if logger == nil {
		logger = log.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	logger.Printf("Watching wallpaper directory: %s", root)

	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending = true
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("Watcher error: %v", err)

		case <-timer.C:
			if pending {
				pending = false
				onChange()
			}
		}
	}
}
