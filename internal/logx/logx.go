// Package logx provides structured logging functionality
package logx

import (
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a named view over the global zap logger. Scopes created before
// Init picks up the configured level and format still follow it, because the
// underlying zap logger is resolved on every call.
type Logger struct {
	name string
}

var global atomic.Pointer[zap.Logger]

func init() {
	zl, err := build(defaultLevel(os.Getenv("APP_ENV")), "console")
	if err != nil {
		panic(err)
	}
	global.Store(zl)
}

// IsLocalDev checks if the environment is local development
func IsLocalDev(appEnv string) bool {
	return appEnv == "local" || appEnv == "dev" || appEnv == "development"
}

func defaultLevel(appEnv string) zapcore.Level {
	if IsLocalDev(appEnv) {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// 自定义时间编码器
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

func build(lvl zapcore.Level, format string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Development = false
	config.Sampling = nil
	config.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	switch strings.ToLower(format) {
	case "json":
		config.Encoding = "json"
		config.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	default:
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return config.Build(zap.AddCallerSkip(1))
}

// Init configures the global logger. Unknown levels fall back to info,
// unknown formats to the console encoder.
func Init(level, format string) {
	zl, err := build(parseLevel(level), format)
	if err != nil {
		panic(err)
	}
	Set(zl)
}

// Set replaces the global zap logger. Tests use it to install an observer core.
func Set(zl *zap.Logger) {
	if zl == nil {
		zl = zap.NewNop()
	}
	if old := global.Swap(zl); old != nil {
		_ = old.Sync()
	}
}

// GetScope returns a logger that tags every entry with the given scope name.
func GetScope(name string) *Logger {
	return &Logger{name: name}
}

// L returns the global sugar logger for key-value logging
func L() *zap.SugaredLogger {
	return global.Load().Sugar()
}

// Sync flushes buffered entries of the global logger.
func Sync() error {
	return global.Load().Sync()
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Zap returns the scoped zap logger.
func (l *Logger) Zap() *zap.Logger {
	zl := global.Load()
	if l.name == "" {
		return zl
	}
	return zl.Named(l.name)
}

// Sugar returns the scoped sugar logger
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.Zap().Sugar()
}

// With returns a child zap logger carrying the given fields.
func (l *Logger) With(fields ...zap.Field) *zap.Logger {
	return l.Zap().With(fields...)
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.Zap().Debug(msg, fields...) }

func (l *Logger) Info(msg string, fields ...zap.Field) { l.Zap().Info(msg, fields...) }

func (l *Logger) Warn(msg string, fields ...zap.Field) { l.Zap().Warn(msg, fields...) }

func (l *Logger) Error(msg string, fields ...zap.Field) { l.Zap().Error(msg, fields...) }

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.Zap().Fatal(msg, fields...) }
