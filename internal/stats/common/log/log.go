// Package log is the structured logging facade used across rr-stats. The
// default implementation is zap; tests swap in their own Logger.
package log

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger takes key/value fields and a short snake_case event name.
type Logger interface {
	Info(fields map[string]any, msg string)
	Error(fields map[string]any, msg string)
	Debug(fields map[string]any, msg string)
	Warn(fields map[string]any, msg string)
	Panic(fields map[string]any, msg string)
	Fatal(fields map[string]any, msg string)
}

type holder struct{ Logger }

var global atomic.Pointer[holder]

func init() {
	global.Store(&holder{newZapLogger(false, zapcore.InfoLevel)})
}

// SetLogger replaces the process-wide logger. Safe for concurrent use.
func SetLogger(l Logger) { global.Store(&holder{l}) }

// GetLogger returns the process-wide logger.
func GetLogger() Logger { return global.Load().Logger }

// Configure installs a zap logger for env ("dev" or "prod") at level.
func Configure(env, level string) error {
	l, err := New(env, level)
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// New builds a zap Logger. Anything but "prod" gets the development
// encoder.
func New(env, level string) (Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return newZapLogger(env != "prod", lvl), nil
}

// Sync flushes the process-wide logger if it buffers.
func Sync() {
	if z, ok := GetLogger().(*zapLogger); ok {
		_ = z.base.Sync()
	}
}

func Info(fields map[string]any, msg string)  { GetLogger().Info(fields, msg) }
func Error(fields map[string]any, msg string) { GetLogger().Error(fields, msg) }
func Debug(fields map[string]any, msg string) { GetLogger().Debug(fields, msg) }
func Warn(fields map[string]any, msg string)  { GetLogger().Warn(fields, msg) }
func Panic(fields map[string]any, msg string) { GetLogger().Panic(fields, msg) }
func Fatal(fields map[string]any, msg string) { GetLogger().Fatal(fields, msg) }

type zapLogger struct {
	base *zap.Logger
}

func newZapLogger(dev bool, level zapcore.Level) *zapLogger {
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.LevelKey = "level"

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}
	return &zapLogger{base: base}
}

// write converts fields only when the level is enabled; the classifier
// logs a debug line per engine event.
func (l *zapLogger) write(level zapcore.Level, fields map[string]any, msg string) {
	if ce := l.base.Check(level, msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func (l *zapLogger) Info(f map[string]any, msg string)  { l.write(zapcore.InfoLevel, f, msg) }
func (l *zapLogger) Error(f map[string]any, msg string) { l.write(zapcore.ErrorLevel, f, msg) }
func (l *zapLogger) Debug(f map[string]any, msg string) { l.write(zapcore.DebugLevel, f, msg) }
func (l *zapLogger) Warn(f map[string]any, msg string)  { l.write(zapcore.WarnLevel, f, msg) }
func (l *zapLogger) Panic(f map[string]any, msg string) { l.write(zapcore.PanicLevel, f, msg) }
func (l *zapLogger) Fatal(f map[string]any, msg string) { l.write(zapcore.FatalLevel, f, msg) }

// zapFields emits fields in key order so lines are stable across runs.
func zapFields(m map[string]any) []zap.Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, m[k]))
	}
	return out
}

type noopLogger struct{}

func (noopLogger) Info(map[string]any, string)  {}
func (noopLogger) Error(map[string]any, string) {}
func (noopLogger) Debug(map[string]any, string) {}
func (noopLogger) Warn(map[string]any, string)  {}
func (noopLogger) Panic(map[string]any, string) {}
func (noopLogger) Fatal(map[string]any, string) {}

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger { return noopLogger{} }
