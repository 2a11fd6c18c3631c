package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger. Production emits JSON, everything else text.
func New(environment, level string) *slog.Logger {
	return NewWithWriter(os.Stdout, environment, level)
}

func NewWithWriter(w io.Writer, environment, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// QueueLogger adapts slog to the queue library's printf-less logger interface.
type QueueLogger struct {
	logger *slog.Logger
}

func NewQueueLogger(logger *slog.Logger) *QueueLogger {
	return &QueueLogger{logger: logger.With("component", "queue")}
}

func (l *QueueLogger) Debug(args ...interface{}) { l.logger.Debug(fmt.Sprint(args...)) }
func (l *QueueLogger) Info(args ...interface{})  { l.logger.Info(fmt.Sprint(args...)) }
func (l *QueueLogger) Warn(args ...interface{})  { l.logger.Warn(fmt.Sprint(args...)) }
func (l *QueueLogger) Error(args ...interface{}) { l.logger.Error(fmt.Sprint(args...)) }

func (l *QueueLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
