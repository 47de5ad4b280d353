package credentials

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/logging"
)

// Watch reports external writes to the credential file. The host-side
// heating-cfg tool (and the serial console helper before it) can rewrite
// the record while the firmware is running; the runtime uses this signal to
// restart provisioning so the new network takes effect.
//
// The watch is on the containing directory, not the file itself, because
// Save replaces the file via rename and a file-level watch would be lost
// with the old inode.
//
// The returned channel is closed when ctx is cancelled or the watcher
// fails.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	target := filepath.Clean(s.path)

	go func() {
		defer watcher.Close()
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				logging.Debug("Credential file changed",
					zap.String("path", event.Name),
					zap.String("op", event.Op.String()),
				)
				// Coalesce bursts; a pending notification is enough.
				select {
				case changes <- struct{}{}:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn("Credential file watcher error", zap.Error(err))
			}
		}
	}()

	return changes, nil
}
