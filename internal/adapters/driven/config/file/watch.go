package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// Watch reloads the store whenever its file is written, created or renamed
// into place, then calls onChange. It blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file so that editors which
// replace the file on save keep triggering reloads.
func (s *ConfigStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Debug("Watching %s", s.filePath)

	name := filepath.Clean(s.filePath)
	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher: %v", err)

		case <-timer.C:
			if err := s.Load(); err != nil {
				logger.Warn("Reload %s: %v", s.filePath, err)
				continue
			}
			logger.Info("Reloaded %s", s.filePath)
			if onChange != nil {
				onChange()
			}
		}
	}
}
