package server

import (
	"go.uber.org/zap"
)

type Logger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

func NewLogger(config *Config) *Logger {

	var logger *zap.Logger

	if config.DevelopmentEnabled {
		logger, _ = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		logger, _ = zap.NewProduction(zap.AddCallerSkip(1))
	}

	return &Logger{
		logger: logger,
		sugar:  logger.Sugar(),
	}

}

// NewNopLogger discards everything. Used by tests.
func NewNopLogger() *Logger {
	logger := zap.NewNop()
	return &Logger{
		logger: logger,
		sugar:  logger.Sugar(),
	}
}

func (l Logger) Sync() {
	l.logger.Sync()
}

func (l Logger) Info(args ...interface{}) {
	l.sugar.Info(args...)
}

func (l Logger) Warn(args ...interface{}) {
	l.sugar.Warn(args...)
}

func (l Logger) Error(args ...interface{}) {
	l.sugar.Error(args...)
}

func (l Logger) Infof(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

func (l Logger) Warnf(template string, args ...interface{}) {
	l.sugar.Warnf(template, args...)
}

func (l Logger) Errorf(template string, args ...interface{}) {
	l.sugar.Errorf(template, args...)
}

func (l Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l Logger) Fatalw(msg string, keysAndValues ...interface{}) {
	l.sugar.Fatalw(msg, keysAndValues...)
}
