package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger together with its adjustable level.
type Logger struct {
	*zap.SugaredLogger
	level zap.AtomicLevel
}

// defaultZapLevel is used when an unknown level string is provided.
const defaultZapLevel = zapcore.DebugLevel

// toZapLevel converts a textual level to zapcore.Level.
func toZapLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return defaultZapLevel
	}
}

// newConsoleCore builds a zapcore.Core with a console encoder targeting w.
func newConsoleCore(level zap.AtomicLevel, w io.Writer) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoder := zapcore.NewConsoleEncoder(cfg)
	ws := zapcore.Lock(zapcore.AddSync(w))
	return zapcore.NewCore(encoder, zapcore.AddSync(ws), level)
}

func newZapLogger(levelStr string) *Logger {
	return newWriterLogger(levelStr, os.Stdout)
}

func newWriterLogger(levelStr string, w io.Writer) *Logger {
	level := zap.NewAtomicLevelAt(toZapLevel(levelStr))
	return &Logger{
		SugaredLogger: zap.New(newConsoleCore(level, w)).Sugar(),
		level:         level,
	}
}

func newNopLogger() *Logger {
	return &Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		level:         zap.NewAtomicLevelAt(zapcore.FatalLevel),
	}
}

// SetLevel changes the minimum enabled level at runtime.
func (l *Logger) SetLevel(levelStr string) {
	l.level.SetLevel(toZapLevel(levelStr))
}

// Level reports the current minimum enabled level as text.
func (l *Logger) Level() string {
	return l.level.Level().String()
}
