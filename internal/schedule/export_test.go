package schedule

import "log/slog"

// WithLogger sets the logger of the Watcher.
func WithLogger(l *slog.Logger) WatcherOptions {
	return func(o *watcherOptions) {
		o.logger = l
	}
}
