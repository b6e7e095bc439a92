// package shared defines shared helpers
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a [log.Logger] that writes logfmt lines to a rotating file at path.
//
// Used by the TUI so log output does not interfere with rendering.
func NewFileLogger(path string, cfg LogConfig) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	opts := log.Options{ReportTimestamp: true, Formatter: log.LogfmtFormatter}
	l := log.NewWithOptions(RotatingWriter(path, cfg), opts)
	SetLogLevel(l, ParseLevel(cfg.Level))
	return l, nil
}

// NewConfiguredLogger builds the process logger from [LogConfig].
//
// Output goes to w and, when cfg.File is set, is duplicated into a rotating log file.
func NewConfiguredLogger(w io.Writer, cfg LogConfig) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	if cfg.File != "" {
		w = io.MultiWriter(w, RotatingWriter(cfg.File, cfg))
	}
	l := NewLogger(w)
	SetLogLevel(l, ParseLevel(cfg.Level))
	return l
}

// RotatingWriter returns a size-rotated [lumberjack.Logger] for path.
func RotatingWriter(path string, cfg LogConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// ParseLevel maps a config level name onto a [log.Level], defaulting to info.
func ParseLevel(name string) log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}
