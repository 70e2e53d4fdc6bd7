package logx

import (
	"fmt"
	"io"
)

// defaultLogger is the package-level logger instance
var defaultLogger *Logger

func init() {
	defaultLogger = NewLogger(LoadFromEnv())
}

// SetDefaultLogger replaces the package-level logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// SetLevel sets the log level for the default logger
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// SetOutput sets the output for the default logger
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// Debug logs a debug level message
func Debug(msg string) {
	defaultLogger.log(LevelDebug, msg, nil)
}

// Info logs an info level message
func Info(msg string) {
	defaultLogger.log(LevelInfo, msg, nil)
}

// Warn logs a warning level message
func Warn(msg string) {
	defaultLogger.log(LevelWarn, msg, nil)
}

// Error logs an error level message
func Error(msg string) {
	defaultLogger.log(LevelError, msg, nil)
}

// Fatal logs a fatal level message and exits
func Fatal(msg string) {
	defaultLogger.log(LevelFatal, msg, nil)
	defaultLogger.exit(1)
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a formatted fatal message and exits
func Fatalf(format string, args ...interface{}) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil)
	defaultLogger.exit(1)
}

// WithField creates a new logger entry with a single field
func WithField(key string, value interface{}) *Entry {
	return defaultLogger.WithField(key, value)
}

// WithFields creates a new logger entry with fields
func WithFields(fields Fields) *Entry {
	return defaultLogger.WithFields(fields)
}

// WithError creates a new logger entry with an error field
func WithError(err error) *Entry {
	return defaultLogger.WithError(err)
}
