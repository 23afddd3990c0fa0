// Package logging is the process-wide file logger. The terminal belongs to
// the TUI, so everything goes to a size-rotated file under the data dir.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Logger is the global logger instance. Nil until Init succeeds; the
	// helpers below are no-ops while it is nil.
	Logger *log.Logger

	// rotator is the rotating file behind Logger.
	rotator *lumberjack.Logger
)

// Options controls where and how much is logged.
type Options struct {
	Dir        string // directory for popcorn.log
	Level      string // debug, info, warn, error
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init opens the rotating log file and installs the global logger.
func Init(opts Options) error {
	if opts.Dir == "" {
		return fmt.Errorf("log directory not set")
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator = &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "popcorn.log"),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}

	Logger = newLogger(rotator, opts.Level)
	Logger.Info("popcorn started")
	return nil
}

// InitWriter installs a logger writing to w. Used by tests and the CLI.
func InitWriter(w io.Writer, level string) {
	rotator = nil
	Logger = newLogger(w, level)
}

func newLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	})
}

// Close flushes and closes the log file.
func Close() {
	if Logger != nil {
		Logger.Info("popcorn shutting down")
	}
	if rotator != nil {
		rotator.Close()
		rotator = nil
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// WithPrefix returns a logger with a prefix
func WithPrefix(prefix string) *log.Logger {
	if Logger != nil {
		return Logger.WithPrefix(prefix)
	}
	return nil
}
