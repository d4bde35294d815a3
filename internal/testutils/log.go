package testutils

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecorder is a slog.Handler keeping the messages logged at or above a level.
type LogRecorder struct {
	level slog.Level

	mu       sync.Mutex
	messages map[slog.Level][]string
}

// NewLogRecorder returns a LogRecorder keeping messages logged at level or above.
func NewLogRecorder(level slog.Level) *LogRecorder {
	return &LogRecorder{
		level:    level,
		messages: make(map[slog.Level][]string),
	}
}

// Messages returns the messages logged at level.
func (h *LogRecorder) Messages(level slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.messages[level]...)
}

// Enabled implements slog.Handler.
func (h *LogRecorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages[r.Level] = append(h.messages[r.Level], r.Message)
	return nil
}

// WithAttrs implements slog.Handler. Attributes are not recorded.
func (h *LogRecorder) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler. Groups are not recorded.
func (h *LogRecorder) WithGroup(string) slog.Handler {
	return h
}
