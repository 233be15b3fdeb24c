package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("warn", "json", &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	Component(l, "store").Info("hidden")
	Component(l, "store").Warn("shown", zap.String("id", "m1"))
	_ = l.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["msg"] != "shown" || rec["logger"] != "store" || rec["id"] != "m1" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNew_Defaults(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("", "", &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("hello")
	_ = l.Sync()
	if !strings.Contains(buf.String(), "INFO") || !strings.Contains(buf.String(), "hello") {
		t.Fatalf("unexpected console output: %q", buf.String())
	}
}

func TestNew_RejectsBadInput(t *testing.T) {
	if _, err := New("loud", "json", &bytes.Buffer{}); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestComponent_NilLogger(t *testing.T) {
	Component(nil, "x").Info("no panic")
}
