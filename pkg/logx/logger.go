package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Fields is a set of key/value pairs attached to a log line
type Fields map[string]interface{}

// Format selects the output encoding
type Format string

const (
	// FormatConsole outputs human-readable console lines (default)
	FormatConsole Format = "console"
	// FormatJSON outputs one JSON object per line
	FormatJSON Format = "json"
)

// Config holds the logger configuration
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Format is the output encoding
	Format Format

	// TimeFormat is the timestamp layout (defaults to RFC3339)
	TimeFormat string

	// Output is where to write logs (defaults to os.Stdout)
	Output io.Writer
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      LevelInfo,
		Format:     FormatConsole,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	}
}

// LoadFromEnv loads configuration from LOG_LEVEL and LOG_FORMAT
func LoadFromEnv() *Config {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = ParseLevel(level)
	}
	if format := os.Getenv("LOG_FORMAT"); strings.EqualFold(format, "json") {
		config.Format = FormatJSON
	}
	return config
}

// Logger writes leveled, optionally structured log lines
type Logger struct {
	config   *Config
	mu       sync.Mutex
	writer   io.Writer
	exitFunc func(int)
}

// NewLogger creates a new logger with the given config
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	writer := config.Output
	if writer == nil {
		writer = os.Stdout
	}
	return &Logger{
		config:   config,
		writer:   writer,
		exitFunc: os.Exit,
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return newEntry(l).WithField(key, value)
}

// WithFields creates a new entry with fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return newEntry(l).WithFields(fields)
}

// WithError creates a new entry carrying an error field
func (l *Logger) WithError(err error) *Entry {
	return newEntry(l).WithError(err)
}

// log formats and writes a single line
func (l *Logger) log(level Level, msg string, fields Fields) {
	if !l.config.Level.Enabled(level) {
		return
	}

	now := time.Now()

	var line []byte
	if l.config.Format == FormatJSON {
		payload := make(map[string]interface{}, len(fields)+3)
		for k, v := range fields {
			payload[k] = v
		}
		payload["time"] = now.Format(l.config.TimeFormat)
		payload["level"] = level.String()
		payload["message"] = msg
		encoded, err := json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logx: failed to encode entry: %v\n", err)
			return
		}
		line = append(encoded, '\n')
	} else {
		var b strings.Builder
		b.WriteString(now.Format(l.config.TimeFormat))
		b.WriteString(" [")
		b.WriteString(level.String())
		b.WriteString("] ")
		b.WriteString(msg)
		for _, k := range sortedKeys(fields) {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
		b.WriteByte('\n')
		line = []byte(b.String())
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.writer.Write(line); err != nil {
		fmt.Fprintf(os.Stderr, "logx: failed to write entry: %v\n", err)
	}
}

// exit calls the exit function (replaceable for testing)
func (l *Logger) exit(code int) {
	l.exitFunc(code)
}

func sortedKeys(fields Fields) []string {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
