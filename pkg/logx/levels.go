package logx

import "strings"

// Level represents logging severity
type Level uint8

const (
	// LevelDebug for debugging information
	LevelDebug Level = iota
	// LevelInfo for informational messages
	LevelInfo
	// LevelWarn for warning messages
	LevelWarn
	// LevelError for error messages
	LevelError
	// LevelFatal for fatal messages (will exit)
	LevelFatal
	// LevelOff disables all logging
	LevelOff
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level, defaulting to info
func ParseLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Enabled checks if target is loggable at the current level
func (l Level) Enabled(target Level) bool {
	return l <= target
}
