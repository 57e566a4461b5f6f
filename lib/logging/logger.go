// Package logging provides leveled logging utilities for the application
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Log Levels
// --------------------------------------------------------------------------

// Level controls which messages a logger emits
type Level int32

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelDebug
)

// ParseLevel converts a string level to a Level.
// It returns an error for unknown levels instead of panicking so the
// caller can surface the problem as a normal configuration error.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger Interface
// --------------------------------------------------------------------------

// ILogger is the logging interface used throughout the engine and the CLI.
type ILogger interface {
	SetLevel(level Level)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// --------------------------------------------------------------------------
// Default Implementation
// --------------------------------------------------------------------------

// qkvLogger implements the ILogger interface with custom formatting
type qkvLogger struct {
	name   string
	level  atomic.Int32
	logger *log.Logger
}

func (l *qkvLogger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *qkvLogger) Debugf(format string, args ...interface{}) {
	if Level(l.level.Load()) >= LevelDebug {
		l.log("DEBUG", format, args...)
	}
}

func (l *qkvLogger) Infof(format string, args ...interface{}) {
	if Level(l.level.Load()) >= LevelInfo {
		l.log("INFO", format, args...)
	}
}

func (l *qkvLogger) Warningf(format string, args ...interface{}) {
	if Level(l.level.Load()) >= LevelWarning {
		l.log("WARN", format, args...)
	}
}

func (l *qkvLogger) Errorf(format string, args ...interface{}) {
	if Level(l.level.Load()) >= LevelError {
		l.log("ERROR", format, args...)
	}
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *qkvLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-10s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// NewLogger creates a named logger writing to stdout.
//
// Thread-safety: the returned logger is safe for concurrent use, the level
// can be changed at any time.
func NewLogger(name string, level Level) ILogger {
	// Create standard logger with custom flags
	stdLogger := log.New(os.Stdout, "", log.Ldate|log.Ltime)

	l := &qkvLogger{
		name:   name,
		logger: stdLogger,
	}
	l.level.Store(int32(level))
	return l
}

// NewNopLogger returns a logger that discards all messages.
// It is used as the default when logging is disabled in the engine config.
func NewNopLogger() ILogger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) SetLevel(Level)                  {}
func (nopLogger) Debugf(string, ...interface{})   {}
func (nopLogger) Infof(string, ...interface{})    {}
func (nopLogger) Warningf(string, ...interface{}) {}
func (nopLogger) Errorf(string, ...interface{})   {}
