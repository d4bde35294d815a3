package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports modifications of a schedule file.
type Watcher struct {
	path string
	log  *slog.Logger
}

type watcherOptions struct {
	logger *slog.Logger
}

// WatcherOptions represents an optional function to override Watcher default values.
type WatcherOptions func(*watcherOptions)

// NewWatcher returns a Watcher for the schedule file at path.
func NewWatcher(path string, args ...WatcherOptions) *Watcher {
	opts := watcherOptions{
		logger: slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	return &Watcher{
		path: filepath.Clean(path),
		log:  opts.logger,
	}
}

// Watch starts watching the schedule file until ctx is cancelled.
//
// It returns two channels: one receiving a value each time the file is written, created or
// renamed into place, and another for unrecoverable watcher errors. Notifications are coalesced
// when the receiver is slower than the writer.
func (w *Watcher) Watch(ctx context.Context) (changes <-chan struct{}, errors <-chan error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %v", err)
	}

	// Editors often replace files, so watch the directory rather than the file itself.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("failed to add directory %s to watcher: %v", dir, err)
	}

	w.log.Info("Watching schedule file", "file", w.path)
	changesCh := make(chan struct{}, 1)
	errorsCh := make(chan error, 1)

	go func() {
		defer close(changesCh)
		defer close(errorsCh)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				w.log.Info("Schedule watcher stopped")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					errorsCh <- fmt.Errorf("watcher events channel closed unexpectedly")
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}

				w.log.Debug("Schedule file changed", "op", event.Op.String())
				select {
				case changesCh <- struct{}{}:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					errorsCh <- fmt.Errorf("watcher errors channel closed unexpectedly")
					return
				}
				w.log.Warn("Watcher error", "err", err)
			}
		}
	}()

	return changesCh, errorsCh, nil
}
