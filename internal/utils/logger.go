// internal/utils/logger.go
package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// LogLevel represents the logging level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	FATAL
)

// levelFatal sits above slog's built-in levels.
const levelFatal = slog.LevelError + 4

// Logger is the process-wide structured logger: text lines on stdout and,
// once InitLogger has run, JSON lines in the log file.
type Logger struct {
	mu      sync.RWMutex
	handler slog.Handler
	out     io.Writer
	file    *os.File
	level   *slog.LevelVar
	enabled atomic.Bool
}

var (
	globalLogger *Logger
	loggerOnce   sync.Once
)

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	loggerOnce.Do(func() {
		globalLogger = newLogger(os.Stdout, nil)
	})
	return globalLogger
}

func newLogger(stdout, file io.Writer) *Logger {
	l := &Logger{level: new(slog.LevelVar), out: stdout}
	l.level.Set(slog.LevelInfo)
	l.enabled.Store(true)
	l.handler = l.buildHandler(stdout, file)
	return l
}

// NewLoggerWithWriters creates a logger writing text to stdout and JSON to file.
// Either writer may be nil.
func NewLoggerWithWriters(stdout, file io.Writer, level LogLevel) *Logger {
	l := newLogger(stdout, file)
	l.SetLogLevel(level)
	return l
}

func (l *Logger) buildHandler(stdout, file io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: l.level, AddSource: true, ReplaceAttr: replaceLevel}
	var handlers []slog.Handler
	if stdout != nil {
		handlers = append(handlers, slog.NewTextHandler(stdout, opts))
	}
	if file != nil {
		handlers = append(handlers, slog.NewJSONHandler(file, opts))
	}
	return slogmulti.Fanout(handlers...)
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= levelFatal {
			a.Value = slog.StringValue("FATAL")
		}
	}
	return a
}

// InitLogger initializes the logger with a log file
func InitLogger(logFile string, level LogLevel) error {
	logger := GetLogger()

	// Ensure log directory exists
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()

	// Close previous file if exists
	if logger.file != nil {
		logger.file.Close()
	}
	logger.file = file
	logger.level.Set(toSlogLevel(level))
	logger.handler = logger.buildHandler(logger.out, file)
	return nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.handler = l.buildHandler(l.out, nil)
	return err
}

// SetOutput redirects the text output. The log file, if any, is kept.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	if l.file != nil {
		l.handler = l.buildHandler(w, l.file)
		return
	}
	l.handler = l.buildHandler(w, nil)
}

// ParseLogLevel maps a LOG_LEVEL value to a LogLevel. Unknown values mean INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case DEBUG:
		return slog.LevelDebug
	case WARNING:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	case FATAL:
		return levelFatal
	default:
		return slog.LevelInfo
	}
}

// SetLogLevel sets the minimum level for logging
func (l *Logger) SetLogLevel(level LogLevel) {
	l.level.Set(toSlogLevel(level))
}

// Enable enables or disables logging
func (l *Logger) Enable(enabled bool) {
	l.enabled.Store(enabled)
}

// Slog exposes the underlying handler for libraries that take a *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slog.New(l.handler)
}

// log writes a log entry attributed to the caller of the exported method.
func (l *Logger) log(level LogLevel, message string, fields map[string]interface{}) {
	if !l.enabled.Load() {
		return
	}

	l.mu.RLock()
	handler := l.handler
	l.mu.RUnlock()

	ctx := context.Background()
	lvl := toSlogLevel(level)
	if handler.Enabled(ctx, lvl) {
		var pcs [1]uintptr
		runtime.Callers(3, pcs[:]) // skip Callers, log and the exported method
		record := slog.NewRecord(time.Now(), lvl, message, pcs[0])
		record.AddAttrs(fieldAttrs(fields)...)
		_ = handler.Handle(ctx, record)
	}

	// For fatal errors, exit
	if level == FATAL {
		os.Exit(1)
	}
}

// fieldAttrs converts fields to attributes in key order so output is stable.
func fieldAttrs(fields map[string]interface{}) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	return attrs
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields map[string]interface{}) {
	l.log(DEBUG, message, fields)
}

// Info logs an info message
func (l *Logger) Info(message string, fields map[string]interface{}) {
	l.log(INFO, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields map[string]interface{}) {
	l.log(WARNING, message, fields)
}

// Error logs an error message
func (l *Logger) Error(message string, fields map[string]interface{}) {
	l.log(ERROR, message, fields)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(message string, fields map[string]interface{}) {
	l.log(FATAL, message, fields)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DEBUG, fmt.Sprintf(format, args...), nil)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(INFO, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WARNING, fmt.Sprintf(format, args...), nil)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ERROR, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(FATAL, fmt.Sprintf(format, args...), nil)
}
