package ecs

import (
	"go.uber.org/zap"
)

type noopLogger struct{}

func (noopLogger) With(key string, value any) Logger { return noopLogger{} }

func (noopLogger) Info(msg string, args ...any) {}

func (noopLogger) Error(msg string, args ...any) {}

// NewZapLogger adapts a zap logger to the Logger interface.
func NewZapLogger(base *zap.Logger) Logger {
	if base == nil {
		return noopLogger{}
	}
	return zapLogger{sugar: base.Sugar()}
}

// NewDevelopmentLogger returns a console logger suitable for examples and
// local debugging. Falls back to a no-op logger if zap fails to initialize.
func NewDevelopmentLogger() Logger {
	base, err := zap.NewDevelopment()
	if err != nil {
		return noopLogger{}
	}
	return zapLogger{sugar: base.Sugar()}
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapLogger) With(key string, value any) Logger {
	return zapLogger{sugar: l.sugar.With(key, value)}
}

func (l zapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l zapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}
