// Package logging provides structured logging utilities for PlotBuddy.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger carries request-scoped fields over a slog handler.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new logger with the given handler.
func NewLogger(h slog.Handler) *Logger {
	if h == nil {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(h)}
}

// NewHandler returns the process handler for mode: a text handler at debug
// level in dev, a JSON handler at info level otherwise.
func NewHandler(mode string, w io.Writer) slog.Handler {
	if mode == "dev" {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
}

// With returns a new logger with additional key/value fields.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithField returns a new logger with an additional field.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.With(key, value)
}

type loggerKey struct{}

type requestIDKey struct{}

// FromContext extracts the logger from context, falling back to slog's
// default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return l
	}
	return &Logger{Logger: slog.Default()}
}

// ToContext adds the logger to context.
func ToContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// WithRequest tags ctx with a fresh request id and a logger carrying it and
// the user id.
func WithRequest(ctx context.Context, userID string) context.Context {
	requestID := uuid.NewString()
	l := FromContext(ctx).With("request_id", requestID, "user_id", userID)
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	return ToContext(ctx, l)
}

// RequestID returns the request id set by WithRequest.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
