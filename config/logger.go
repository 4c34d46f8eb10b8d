package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootLogger *zap.Logger

// InitLogger builds the service logger at the given level. Console encoding
// with ISO-8601 timestamps keeps a single conversation's turn trace readable
// when tailing the log.
func InitLogger(logLevelStr string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch strings.ToLower(logLevelStr) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	// Keep a handle for flushing at shutdown
	rootLogger = logger
	return logger, nil
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if rootLogger != nil {
		rootLogger.Sync()
	}
}
