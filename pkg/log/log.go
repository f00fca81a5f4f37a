package log

import (
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// InitLogger replaces the package logger. Debug mode switches to the
// development config (console encoder, debug level).
func InitLogger(debug bool) {
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewNop()
	}
}

func Debug(msg string, fields ...zap.Field) {
	logger.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	logger.Fatal(msg, fields...)
}

// Sync flushes buffered log entries. Safe to call on shutdown paths.
func Sync() {
	_ = logger.Sync()
}
