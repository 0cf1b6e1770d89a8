package logger

import (
	"io"
	"log/slog"
)

// Init initializes the global slog logger with a JSON handler and the
// attribute names the rest of the platform's services emit.
func Init(writer io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(newHandler(writer, level)))
}

func newHandler(writer io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				a.Key = "timestamp"
			case slog.LevelKey:
				a.Key = "level"
			case slog.MessageKey:
				a.Key = "message"
			}
			return a
		},
	})
}

// ParseLevel maps a config log level string to a slog level, defaulting
// to info.
func ParseLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
