package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zapEncoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "name",
	CallerKey:      "caller",
	MessageKey:     "message",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// ZapAdapter wraps *zap.SugaredLogger to implement the Logger interface. The
// key/value arguments map onto zap's "w" methods.
type ZapAdapter struct {
	*zap.SugaredLogger
}

// Debug logs a debug message.
func (z *ZapAdapter) Debug(msg string, args ...any) { z.SugaredLogger.Debugw(msg, args...) }

// Info logs an informational message.
func (z *ZapAdapter) Info(msg string, args ...any) { z.SugaredLogger.Infow(msg, args...) }

// Warn logs a warning message.
func (z *ZapAdapter) Warn(msg string, args ...any) { z.SugaredLogger.Warnw(msg, args...) }

// Error logs an error message.
func (z *ZapAdapter) Error(msg string, args ...any) { z.SugaredLogger.Errorw(msg, args...) }

// NewZapAdapter creates a Logger from an existing *zap.Logger.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	return &ZapAdapter{SugaredLogger: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// NewZapLogger builds a zap backed Logger writing to out (stdout when nil).
// Format "json" selects zap's JSON encoder, anything else the console encoder.
func NewZapLogger(level LogLevel, format string, out io.Writer) *ZapAdapter {
	if out == nil {
		out = os.Stdout
	}
	encoder := zapcore.NewConsoleEncoder(zapEncoderConfig)
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(zapEncoderConfig)
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(out), zap.NewAtomicLevelAt(zapLevel(level)))
	return NewZapAdapter(zap.New(core, zap.AddCaller()))
}

func zapLevel(l LogLevel) zapcore.Level {
	switch l {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
