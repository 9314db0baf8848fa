package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for level, want := range tests {
		if got := ParseLevel(level); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	logger, err := New("debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger does not log debug")
	}
}
