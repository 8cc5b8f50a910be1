package lcg

import (
	"io"
	"log/slog"
	"os"
)

type Logger struct {
	detailed bool
	log      *slog.Logger
}

func NewLogger(detailed bool, format string) *Logger {
	return newLogger(os.Stderr, detailed, format)
}

func newLogger(w io.Writer, detailed bool, format string) *Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if detailed {
		opts.Level = slog.LevelDebug
	}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{
		detailed: detailed,
		log:      slog.New(h),
	}
}

// Slog exposes the underlying logger for collaborators that take a
// *slog.Logger, such as the HTTP middleware.
func (l *Logger) Slog() *slog.Logger {
	return l.log
}

func (l *Logger) Info(msg string, args ...any) {
	if l.detailed {
		l.log.Info(msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...any) {
	l.log.Error(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	if l.detailed {
		l.log.Debug(msg, args...)
	}
}
