package utils

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerMethods(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := &Logger{l: zap.New(core).Sugar()}

	logger.Info("hello", "k", "v")
	logger.Warn("careful", "k2", "v2")
	logger.Error("broken", "k3", "v3")
	logger.Sync()

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	wantMsgs := []string{"hello", "careful", "broken"}
	for i, e := range entries {
		if e.Level != wantLevels[i] || e.Message != wantMsgs[i] {
			t.Fatalf("entry %d: got %v %q", i, e.Level, e.Message)
		}
	}
	if got := entries[0].ContextMap()["k"]; got != "v" {
		t.Fatalf("expected structured field, got %v", got)
	}
}

func TestNewLoggerDoesNotPanic(t *testing.T) {
	NewLogger().Sync()
	NewNopLogger().Info("ignored")
}
