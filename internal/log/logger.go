// Package log is the structured logger shared by the server, the forms API
// client and the CLI.
package log

import (
	"context"
	"errors"
	"log/slog"
	"os"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
)

// Logger provides structured logging with slog
type Logger struct {
	slog   *slog.Logger
	config Config
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:     config.Level.slogLevel(),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.Format == FormatText {
		handler = slog.NewTextHandler(config.Output, opts)
	} else {
		handler = slog.NewJSONHandler(config.Output, opts)
	}

	l := slog.New(handler)
	if config.ServiceName != "" {
		l = l.With("service", config.ServiceName, "version", config.ServiceVersion)
	}
	return &Logger{slog: l, config: config}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(DefaultConfig())
}

// Development creates a logger with development configuration
func Development() *Logger {
	return New(DevelopmentConfig())
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), config: l.config}
}

// WithGroup returns a new Logger with a group name that prefixes all attributes
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{slog: l.slog.WithGroup(name), config: l.config}
}

// WithError adds error details to the logger. Coded errors anywhere in the
// chain contribute error_code and suggestions.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.With(errorArgs(err, "error")...)
}

type requestIDKey struct{}

// ContextWithRequestID stores the request id used to correlate log entries
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, or ""
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithContext returns a Logger tagged with the request id carried by ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id := RequestID(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l
}

func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slog.InfoContext(ctx, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slog.WarnContext(ctx, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slog.ErrorContext(ctx, msg, args...)
}

// LogError logs err with its code, suggestions, docs link and cause
func (l *Logger) LogError(err error) {
	l.LogErrorContext(context.Background(), err)
}

// LogErrorContext is LogError with a context
func (l *Logger) LogErrorContext(ctx context.Context, err error) {
	if err == nil {
		return
	}
	l.WithContext(ctx).slog.ErrorContext(ctx, "operation failed", errorArgs(err, "error_message")...)
}

func errorArgs(err error, messageKey string) []any {
	var re *apperrors.RunnerError
	if !errors.As(err, &re) {
		return []any{messageKey, err.Error()}
	}

	args := []any{
		messageKey, re.Message,
		"error_code", string(re.Code),
	}
	if len(re.Suggestions) > 0 {
		args = append(args, "suggestions", re.Suggestions)
	}
	if re.DocsURL != "" && messageKey == "error_message" {
		args = append(args, "docs_url", re.DocsURL)
	}
	if re.Cause != nil {
		args = append(args, "cause", re.Cause.Error())
	}
	return args
}

// Enabled returns whether the logger is enabled for the given level
func (l *Logger) Enabled(ctx context.Context, level Level) bool {
	return l.slog.Enabled(ctx, level.slogLevel())
}

// Handler returns the underlying slog.Handler
func (l *Logger) Handler() slog.Handler {
	return l.slog.Handler()
}

// Config returns the logger configuration
func (l *Logger) Config() Config {
	return l.config
}
