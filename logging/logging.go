// Package logging configures the zap loggers used across the module.
//
// Output format and level are taken from the environment:
//
//	LOG_FORMAT=development  console output with colored levels (default: JSON)
//	LOG_LEVEL=debug         any zap level name; "warning" is accepted as "warn"
package logging

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	baseConfig = NewConfig()
	baseLogger = zap.Must(baseConfig.Build())
)

type contextKey int

const (
	contextFieldsKey contextKey = iota
)

func NewConfig() zap.Config {
	var config zap.Config

	if os.Getenv("LOG_FORMAT") == "development" {
		config = newDevelopmentConfig()
	} else {
		config = newProductionConfig()
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if lvl, err := parseLevel(level); err == nil {
			config.Level = lvl
		}
	}

	return config
}

func newDevelopmentConfig() zap.Config {
	return zap.Config{
		Level:             zap.NewAtomicLevelAt(zap.DebugLevel),
		Development:       true,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     newDevelopmentEncoderConfig(),
		OutputPaths:       []string{"stderr"},
	}
}

// The CLI writes results to stdout, so production logs go to stderr too.
func newProductionConfig() zap.Config {
	return zap.Config{
		Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:      "json",
		EncoderConfig: newProductionEncoderConfig(),
		OutputPaths:   []string{"stderr"},
	}
}

func newDevelopmentEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := newProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.NameKey = ""
	return encoderConfig
}

func newProductionEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "severity",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func parseLevel(level string) (zap.AtomicLevel, error) {
	if strings.EqualFold(level, "warning") {
		level = "warn"
	}
	return zap.ParseAtomicLevel(strings.ToLower(level))
}

// New creates a new logger with a default "logger" field so we can identify the
// source of log messages.
func New(name string) *zap.Logger {
	return baseLogger.Named(name)
}

// SetLevel changes the level of every logger created by New, including those
// created before the call.
func SetLevel(level string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	baseConfig.Level.SetLevel(lvl.Level())
	return nil
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = baseLogger.Sync()
}

func GetFields(ctx context.Context) []zap.Field {
	f, ok := ctx.Value(contextFieldsKey).([]zap.Field)
	if !ok {
		return []zap.Field{}
	}
	return f
}

// AddFields returns a context carrying fields which GetFields will return,
// after any fields already present.
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	existing := GetFields(ctx)
	f := make([]zap.Field, 0, len(existing)+len(fields))
	f = append(f, existing...)
	f = append(f, fields...)
	return context.WithValue(ctx, contextFieldsKey, f)
}
