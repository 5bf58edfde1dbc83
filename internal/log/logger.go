// Package log provides the context-aware zap logger used by the georef engine and its tools.
package log

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _logger *zap.Logger
var defaultlogger *zap.Logger

type contextKey int

const (
	contextKeyFields contextKey = iota
)

func init() {
	Structured()
}

func setLogger(l *zap.Logger) {
	defaultlogger = l
}
func resetLogger() {
	defaultlogger = _logger
}

// level reads LOGLEVEL, defaulting to info
func level() zap.AtomicLevel {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if s := os.Getenv("LOGLEVEL"); s != "" {
		if err := lvl.UnmarshalText([]byte(s)); err != nil {
			lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
	}
	return lvl
}

func build(cfg zap.Config, enc zapcore.EncoderConfig) {
	enc.LevelKey = "severity"
	enc.TimeKey = "timestamp"
	enc.StacktraceKey = ""
	enc.MessageKey = "message"
	cfg.EncoderConfig = enc
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.Level = level()
	var err error
	_logger, err = cfg.Build()
	if err != nil {
		panic(err)
	}
	defaultlogger = _logger
}

// Structured sets output to be JSON encoded
func Structured() {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	build(zap.NewProductionConfig(), enc)
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02T15:04:05.000"))
}

// Console sets output to be human-readable
func Console() {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = timeEncoder
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	build(zap.NewDevelopmentConfig(), enc)
}

// Logger returns a logger that will print fields previously added to the context
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return defaultlogger
	}
	if flds, ok := ctx.Value(contextKeyFields).([]zap.Field); ok {
		return defaultlogger.With(flds...)
	}
	return defaultlogger
}

// With adds a key=value field to the returned context
func With(ctx context.Context, key string, value interface{}) context.Context {
	return WithFields(ctx, zap.Any(key, value))
}

// WithFields adds fields to the returned context
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	var fflds []zap.Field
	if flds, ok := ctx.Value(contextKeyFields).([]zap.Field); ok {
		fflds = append(fflds, flds...)
	}
	fflds = append(fflds, fields...)
	return context.WithValue(ctx, contextKeyFields, fflds)
}
