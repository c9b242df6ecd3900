package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents the severity of a log message
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a level name, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format represents the output format for logs
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

func (f Format) String() string {
	if f == FormatText {
		return "text"
	}
	return "json"
}

// ParseFormat parses a format name, defaulting to json
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text", "console":
		return FormatText
	default:
		return FormatJSON
	}
}

// Config holds configuration for the logger
type Config struct {
	Level     Level
	Format    Format
	Output    io.Writer
	AddSource bool

	// ServiceName and ServiceVersion are attached to every entry
	ServiceName    string
	ServiceVersion string
}

// DefaultConfig logs at info level as JSON to stdout
func DefaultConfig() Config {
	return Config{
		Level:          LevelInfo,
		Format:         FormatJSON,
		Output:         os.Stdout,
		ServiceName:    "formrunner",
		ServiceVersion: "dev",
	}
}

// DevelopmentConfig logs at debug level as text with source locations
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = LevelDebug
	cfg.Format = FormatText
	cfg.AddSource = true
	return cfg
}

// ConfigFor builds a Config from the level and format names used in
// formrunner.yaml
func ConfigFor(level, format, version string, w io.Writer) Config {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	cfg.Format = ParseFormat(format)
	cfg.Output = w
	if version != "" {
		cfg.ServiceVersion = version
	}
	return cfg
}
