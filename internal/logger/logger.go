package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel - log level type
type LogLevel int

const (
	// LogDebug - DEBUG log level
	LogDebug LogLevel = iota

	// LogInfo - INFO log level
	LogInfo

	// LogWarn - WARN log level, for recovered problems
	LogWarn

	// LogError - ERROR log level (does not call os.Exit!)
	LogError
)

var logLevelPrefix = map[LogLevel]string{
	LogDebug: "DEBUG",
	LogInfo:  "INFO",
	LogWarn:  "WARN",
	LogError: "ERROR",
}

// ILogger - Generic logger interface
type ILogger interface {
	Printf(level LogLevel, format string, a ...interface{})
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Warnf(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

// ParseLevel maps "debug", "info", "warn" or "error" to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	for level, prefix := range logLevelPrefix {
		if strings.EqualFold(strings.TrimSpace(name), prefix) {
			return level, nil
		}
	}
	return LogInfo, fmt.Errorf("unknown log level %q", name)
}

// StdErrLogger - writes to stderr (or any writer), dropping lines below its level
type StdErrLogger struct {
	mu       sync.Mutex
	out      *log.Logger
	logLevel LogLevel
}

// NewStdErrLogger - logger writing to stderr at the given level
func NewStdErrLogger(level LogLevel) *StdErrLogger {
	return NewWriterLogger(os.Stderr, level)
}

// NewWriterLogger - logger writing to w at the given level
func NewWriterLogger(w io.Writer, level LogLevel) *StdErrLogger {
	return &StdErrLogger{
		out:      log.New(w, "", log.LstdFlags),
		logLevel: level,
	}
}

func (l *StdErrLogger) Printf(level LogLevel, format string, a ...interface{}) {
	l.mu.Lock()
	min := l.logLevel
	l.mu.Unlock()
	if level < min {
		return
	}

	txt := logLevelPrefix[level] + ": " + fmt.Sprintf(format, a...)
	l.out.Println(txt)
}
func (l *StdErrLogger) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}
func (l *StdErrLogger) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}
func (l *StdErrLogger) Warnf(format string, a ...interface{}) {
	l.Printf(LogWarn, format, a...)
}
func (l *StdErrLogger) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}

func (l *StdErrLogger) SetLogLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logLevel = level
}
func (l *StdErrLogger) GetLogLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logLevel
}

// NullLogger - For mocking out in tests
type NullLogger struct {
}

func (l NullLogger) Printf(level LogLevel, format string, a ...interface{}) {
	// We do nothing!
}
func (l NullLogger) Debugf(format string, a ...interface{}) {
	// We do nothing!
}
func (l NullLogger) Infof(format string, a ...interface{}) {
	// We do nothing!
}
func (l NullLogger) Warnf(format string, a ...interface{}) {
	// We do nothing!
}
func (l NullLogger) Errorf(format string, a ...interface{}) {
	// We do nothing!
}
