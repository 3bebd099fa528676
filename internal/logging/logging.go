// Package logging wraps zap behind a small package-level API so driver and
// host code can log without threading a logger through every constructor.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LevelEnvVar overrides the configured verbosity when set.
// Valid values: "debug", "info", "warn", "error".
const LevelEnvVar = "NGUI_LOG_LEVEL"

// Initialize builds the global logger at the given level. An empty level
// falls back to NGUI_LOG_LEVEL, then to "info". The appliance logs to
// stderr; stdout stays clean for anything the host supervisor captures.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LevelEnvVar)
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "", "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("logging: build failed: %w", err)
	}
	return nil
}

// L returns the global logger, falling back to a nop logger so packages can
// log safely even before Initialize runs (e.g. from tests).
func L() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Sync flushes buffered entries; safe to call on exit regardless of state.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
