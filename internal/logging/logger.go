// Package logging provides leveled, subsystem-prefixed logging for sectorfs.
package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry carrying a subsystem prefix.
type Logger struct {
	entry *logrus.Entry
}

var (
	root *logrus.Logger
	once sync.Once
)

func rootLogger() *logrus.Logger {
	once.Do(func() {
		root = logrus.New()
		root.SetOutput(os.Stdout)
		root.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
		root.SetLevel(logrus.InfoLevel)

		// Initial level from environment
		if level := os.Getenv("SECTORFS_LOG_LEVEL"); level != "" {
			if parsed, err := logrus.ParseLevel(level); err == nil {
				root.SetLevel(parsed)
			}
		}
	})
	return root
}

// GetLogger returns the default logger instance.
func GetLogger() *Logger {
	return &Logger{entry: logrus.NewEntry(rootLogger())}
}

// SetLevel sets the logging level by name ("error", "warn", "info",
// "debug", "trace"). Unknown names are ignored.
func SetLevel(level string) {
	if parsed, err := logrus.ParseLevel(level); err == nil {
		rootLogger().SetLevel(parsed)
	}
}

// WithPrefix returns a logger tagged with a subsystem prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{entry: l.entry.WithField("sub", prefix)}
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Trace logs a trace message.
func (l *Logger) Trace(format string, args ...interface{}) {
	l.entry.Tracef(format, args...)
}
