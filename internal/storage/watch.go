package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback receives the slot contents after an on-disk change.
type ChangeCallback func(data []byte)

const watchDebounce = 200 * time.Millisecond

// Watch observes the slot file for writes made outside this process and
// calls cb with the new contents until ctx is cancelled. Events are
// debounced because an atomic replace fires create and rename together.
// Removal of the slot file is reported with nil data.
func Watch(ctx context.Context, slot *FileSlot, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: the rename in WriteFileAtomic replaces the inode,
	// which would silently drop a watch on the file itself.
	if err := w.Add(slot.Dir()); err != nil {
		return err
	}
	target := filepath.Clean(slot.Path())

	logger.Info("watcher: started", slog.String("slot", target))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			fire = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			data, readErr := slot.Read()
			if readErr != nil {
				logger.Debug("watcher: slot unreadable", slog.String("error", readErr.Error()))
				data = nil
			}
			if cb != nil {
				cb(data)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("watcher: slot event", slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
