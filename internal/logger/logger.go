package logger

import (
	"io"
	"sync"
)

// Log levels accepted by the log.level setting.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns a singleton logger configured with the provided level.
// The first call initializes the logger; later calls ignore the level
// and return the already initialized instance. Use SetLevel to change
// the level of a running logger.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}

// GetTo is Get for processes that own stdout, such as the terminal
// dashboard: the singleton writes to w instead. Only the first of Get and
// GetTo decides the output.
func GetTo(level string, w io.Writer) *Logger {
	once.Do(func() {
		globalLogger = newWriterLogger(level, w)
	})
	return globalLogger
}

// Nop returns a logger that discards everything. Tests and optional
// components use it when no logger is wired.
func Nop() *Logger {
	return newNopLogger()
}
