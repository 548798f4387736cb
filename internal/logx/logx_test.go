package logx

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetScope_FollowsSet(t *testing.T) {
	scope := GetScope("agenda")

	core, logs := observer.New(zapcore.DebugLevel)
	prev := global.Load()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	scope.Info("orphan entry", zap.String("entry_id", "e1"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "agenda" {
		t.Fatalf("want logger name agenda, got %q", entries[0].LoggerName)
	}
	if entries[0].ContextMap()["entry_id"] != "e1" {
		t.Fatalf("missing field: %v", entries[0].ContextMap())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q)=%v want %v", in, got, want)
		}
	}
}
