// Package logger provides the process-wide file logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	globalLogger *log.Logger
	logFile      *os.File
	mu           sync.Mutex
)

// Fields is re-exported so callers do not import logrus directly.
type Fields = log.Fields

// Init initializes the global logger with the specified log file path.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //#nosec G304 -- user-provided log path
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logFile = f
	globalLogger = newLogger(f)
	return nil
}

// InitWriter points the global logger at w. Used by the CLI for --verbose
// and by tests.
func InitWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = newLogger(w)
}

func newLogger(w io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(log.DebugLevel)
	l.SetFormatter(&log.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	return l
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = nil
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	logf(log.InfoLevel, nil, format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	logf(log.DebugLevel, nil, format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	logf(log.ErrorLevel, nil, format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	logf(log.WarnLevel, nil, format, v...)
}

// WithFields logs msg at info level with structured fields attached.
func WithFields(fields Fields, format string, v ...interface{}) {
	logf(log.InfoLevel, fields, format, v...)
}

func logf(level log.Level, fields Fields, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger == nil {
		return
	}
	globalLogger.WithFields(fields).Logf(level, format, v...)
}

// GetWriter returns the underlying writer for use by drivers.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger != nil {
		return globalLogger.Out
	}
	return io.Discard
}
