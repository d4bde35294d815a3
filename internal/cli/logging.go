package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/hwinj/hwinj/internal/constants"
)

// SetVerbosity sets the logging level for the default logger based on the verbose flag count.
//
// This function has the same behaviors as slog.SetLogLoggerLevel.
func SetVerbosity(level int) {
	slog.SetLogLoggerLevel(getLevel(level))
}

// SetSlog sets the logging level and format for the default logger.
// JSON logs are written to stderr, leaving stdout to command results.
func SetSlog(level int, jsonLogs bool) {
	setSlog(os.Stderr, level, jsonLogs)
}

func setSlog(w io.Writer, level int, jsonLogs bool) {
	if jsonLogs {
		slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: getLevel(level)})))
		return
	}

	SetVerbosity(level)
}

func getLevel(level int) slog.Level {
	switch {
	case level <= 0:
		return constants.DefaultLogLevel
	case level == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
