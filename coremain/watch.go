package coremain

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultWatchDelay = time.Second

// watchScript calls f after file has been written, until ctx is done.
// Bursts of events within delay fire f once.
func watchScript(ctx context.Context, file string, delay time.Duration, logger *zap.Logger, f func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher, %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(file); err != nil {
		return fmt.Errorf("failed to watch file %s, %w", file, err)
	}

	timer := time.NewTimer(0)
	stopTimer(timer)
	defer timer.Stop()

	needReWatch := false
	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			logger.Debug("script file event", zap.String("file", e.Name), zap.Stringer("op", e.Op))
			if e.Has(fsnotify.Chmod) && !e.Has(fsnotify.Write) {
				continue
			}
			// Editors often replace the file instead of writing it in place.
			if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
				needReWatch = true
			}
			stopTimer(timer)
			timer.Reset(delay)

		case <-timer.C:
			if needReWatch {
				needReWatch = false
				_ = watcher.Remove(file)
				if err := watcher.Add(file); err != nil {
					logger.Warn("failed to re-watch script file", zap.String("file", file), zap.Error(err))
				}
			}
			logger.Info("script file changed, re-running", zap.String("file", file))
			f()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// stopTimer stops t and drains its channel.
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
