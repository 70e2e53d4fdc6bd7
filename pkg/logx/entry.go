package logx

import "fmt"

// Entry builds up a log line with multiple fields before emitting it
type Entry struct {
	logger *Logger
	fields Fields
}

// newEntry creates a new entry
func newEntry(logger *Logger) *Entry {
	return &Entry{
		logger: logger,
		fields: make(Fields),
	}
}

// WithField adds a field to the entry (chainable)
func (e *Entry) WithField(key string, value interface{}) *Entry {
	e.fields[key] = value
	return e
}

// WithFields adds multiple fields to the entry (chainable)
func (e *Entry) WithFields(fields Fields) *Entry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError adds an error field (chainable)
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

// Debug logs at debug level
func (e *Entry) Debug(msg string) {
	e.logger.log(LevelDebug, msg, e.fields)
}

// Info logs at info level
func (e *Entry) Info(msg string) {
	e.logger.log(LevelInfo, msg, e.fields)
}

// Warn logs at warn level
func (e *Entry) Warn(msg string) {
	e.logger.log(LevelWarn, msg, e.fields)
}

// Error logs at error level
func (e *Entry) Error(msg string) {
	e.logger.log(LevelError, msg, e.fields)
}

// Fatal logs at fatal level and exits
func (e *Entry) Fatal(msg string) {
	e.logger.log(LevelFatal, msg, e.fields)
	e.logger.exit(1)
}

// Debugf logs a formatted debug message
func (e *Entry) Debugf(format string, args ...interface{}) {
	e.logger.log(LevelDebug, fmt.Sprintf(format, args...), e.fields)
}

// Infof logs a formatted info message
func (e *Entry) Infof(format string, args ...interface{}) {
	e.logger.log(LevelInfo, fmt.Sprintf(format, args...), e.fields)
}

// Warnf logs a formatted warn message
func (e *Entry) Warnf(format string, args ...interface{}) {
	e.logger.log(LevelWarn, fmt.Sprintf(format, args...), e.fields)
}

// Errorf logs a formatted error message
func (e *Entry) Errorf(format string, args ...interface{}) {
	e.logger.log(LevelError, fmt.Sprintf(format, args...), e.fields)
}
