package utils

import "go.uber.org/zap"

// Logger is a thin key-value logging facade over zap's sugared logger.
type Logger struct {
	l *zap.SugaredLogger
}

func NewLogger() *Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{l: z.Sugar()}
}

// NewNopLogger discards everything (used in tests).
func NewNopLogger() *Logger { return &Logger{l: zap.NewNop().Sugar()} }

func (lg *Logger) Info(msg string, kv ...any)  { lg.l.Infow(msg, kv...) }
func (lg *Logger) Warn(msg string, kv ...any)  { lg.l.Warnw(msg, kv...) }
func (lg *Logger) Error(msg string, kv ...any) { lg.l.Errorw(msg, kv...) }

func (lg *Logger) Sync() { _ = lg.l.Sync() }
