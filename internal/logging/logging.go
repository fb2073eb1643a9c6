package logging

import (
	"io"
	"log"
	"os"
)

// Level is the logging verbosity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// Logger provides leveled logging over the standard library logger.
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// NewFromEnv creates a logger on stderr with the level taken from LOG_LEVEL.
func NewFromEnv() *Logger {
	level := LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "ERROR":
		level = LevelError
	case "WARN":
		level = LevelWarn
	case "DEBUG":
		level = LevelDebug
	}
	return New(os.Stderr, level)
}

func (l *Logger) Error(format string, args ...interface{}) { l.logf(LevelError, "[ERROR] ", format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.logf(LevelWarn, "[WARN] ", format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.logf(LevelInfo, "[INFO] ", format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.logf(LevelDebug, "[DEBUG] ", format, args...) }

func (l *Logger) logf(level Level, prefix, format string, args ...interface{}) {
	if l == nil || l.level < level {
		return
	}
	l.out.Printf(prefix+format, args...)
}
