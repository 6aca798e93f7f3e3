package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesObjectField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))

	log.WarnObj("request failed", "request_error", map[string]any{"status": 401})

	entries := logs.FilterMessage("request failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("level = %s", entries[0].Level)
	}
	if _, ok := entries[0].ContextMap()["request_error"]; !ok {
		t.Fatalf("request_error field missing: %#v", entries[0].ContextMap())
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got != zapcore.InfoLevel {
		t.Fatalf("parseLevel(verbose) = %s", got)
	}
	if got := parseLevel("warning"); got != zapcore.WarnLevel {
		t.Fatalf("parseLevel(warning) = %s", got)
	}
}

func TestPackageHelpersAreNoopsBeforeInit(t *testing.T) {
	S = nil
	InfoObj("ignored", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
