package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (server, silent TUI, tests).
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ZapLogger writes structured console logs to stderr.
// stdout is reserved for the MCP stdio transport.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a logger at the given level ("debug", "info", "warn", "error").
func NewZapLogger(level string) (*ZapLogger, error) {
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := &zap.Config{
		Level:    lvl,
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "severity",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	base, err := cfg.Build(zap.AddStacktrace(zap.DPanicLevel), zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &ZapLogger{base: base, sugar: base.Sugar()}, nil
}

// NewZapLoggerFrom wraps an existing zap logger.
func NewZapLoggerFrom(base *zap.Logger) *ZapLogger {
	base = base.WithOptions(zap.AddCallerSkip(1))
	return &ZapLogger{base: base, sugar: base.Sugar()}
}

func (z *ZapLogger) Info(msg string, args ...interface{})  { z.sugar.Infof(msg, args...) }
func (z *ZapLogger) Warn(msg string, args ...interface{})  { z.sugar.Warnf(msg, args...) }
func (z *ZapLogger) Error(msg string, args ...interface{}) { z.sugar.Errorf(msg, args...) }
func (z *ZapLogger) Debug(msg string, args ...interface{}) { z.sugar.Debugf(msg, args...) }

// With returns a child logger carrying the given key/value pairs.
func (z *ZapLogger) With(keysAndValues ...interface{}) *ZapLogger {
	sugar := z.sugar.With(keysAndValues...)
	return &ZapLogger{base: sugar.Desugar(), sugar: sugar}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.base.Sync()
}

// SilentLogger discards all log messages.
// Used when running in TUI mode to prevent log output from interfering with the display.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Warn(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}

// With returns the logger for l when it supports structured fields, or l itself.
func With(l Logger, keysAndValues ...interface{}) Logger {
	if z, ok := l.(*ZapLogger); ok {
		return z.With(keysAndValues...)
	}
	return l
}
