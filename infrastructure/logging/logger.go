// Package logging provides structured logging for the embedding runtime
// core, with per-isolate and per-task trace context.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContextKey is the type for context keys carried alongside a log entry.
type ContextKey string

const (
	// TraceIDKey is the context key for a trace ID spanning one task or
	// one module resolution.
	TraceIDKey ContextKey = "trace_id"
	// IsolateIDKey is the context key identifying the isolate a log
	// line originated from.
	IsolateIDKey ContextKey = "isolate_id"
	// ComponentKey is the context key for the subsystem emitting the
	// entry (queue, workerpool, platform, assets, snapshot, ...).
	ComponentKey ContextKey = "component"
)

// Logger wraps logrus.Logger with the runtime's structured-field conventions.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a new Logger instance for the given service/component name.
func New(service, level, format string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.WarnLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger, service: service}
}

// NewFromEnv builds a logger from LOG_LEVEL/LOG_FORMAT, defaulting to
// "warn"/"json" to match the production default in the error-handling
// design (warn-and-above).
func NewFromEnv(service string) *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "warn"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(service, level, format)
}

// SetOutput sets the logger output (used by tests to capture entries).
func (l *Logger) SetOutput(output io.Writer) {
	l.Logger.SetOutput(output)
}

// WithContext builds an entry carrying trace ID, isolate ID and
// component fields pulled from ctx, if present.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("service", l.service)
	if traceID := ctx.Value(TraceIDKey); traceID != nil {
		entry = entry.WithField("trace_id", traceID)
	}
	if isolateID := ctx.Value(IsolateIDKey); isolateID != nil {
		entry = entry.WithField("isolate_id", isolateID)
	}
	if component := ctx.Value(ComponentKey); component != nil {
		entry = entry.WithField("component", component)
	}
	return entry
}

// NewTraceID generates a fresh trace ID.
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID attaches a trace ID to ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithIsolateID attaches an isolate ID to ctx.
func WithIsolateID(ctx context.Context, isolateID string) context.Context {
	return context.WithValue(ctx, IsolateIDKey, isolateID)
}

// WithComponent attaches a component name to ctx.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, ComponentKey, component)
}

// Runtime-specific structured helpers.

// LogTaskPosted logs a task handed to a queue or pool.
func (l *Logger) LogTaskPosted(ctx context.Context, lane string, nestable bool, delay time.Duration) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"lane":     lane,
		"nestable": nestable,
		"delay_ms": delay.Milliseconds(),
	}).Debug("task posted")
}

// LogQueueTerminated logs a queue or pool shutting down, with the
// number of items it still held.
func (l *Logger) LogQueueTerminated(ctx context.Context, lane string, dropped int) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"lane":    lane,
		"dropped": dropped,
	}).Info("queue terminated")
}

// LogModuleResolved logs a successful or failed module resolution.
func (l *Logger) LogModuleResolved(ctx context.Context, specifier, path string, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"specifier": specifier,
		"path":      path,
	})
	if err != nil {
		entry.WithError(err).Warn("module resolution failed")
		return
	}
	entry.Debug("module resolved")
}

// LogSnapshotWritten logs the outcome of writing (creating) a snapshot.
func (l *Logger) LogSnapshotWritten(ctx context.Context, path string, bytes int, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"path":  path,
		"bytes": bytes,
	})
	if err != nil {
		entry.WithError(err).Error("snapshot write failed")
		return
	}
	entry.Info("snapshot written")
}

// Global logger instance, lazily initialized.
var defaultLogger *Logger

// InitDefault initializes the process-wide default logger.
func InitDefault(service, level, format string) {
	defaultLogger = New(service, level, format)
}

// Default returns the default logger, creating a fallback one if unset.
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = NewFromEnv("embedcore")
	}
	return defaultLogger
}
