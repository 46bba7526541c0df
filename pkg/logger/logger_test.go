package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewStampsServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Service: "orders", Env: "test", Level: "debug", Writer: &buf})
	log.Debug("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["service"] != "orders" || line["env"] != "test" || line["msg"] != "hello" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestNewDefaults(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Writer: &buf})
	log.Info("hi")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["service"] != "fulfillment" || line["env"] != "dev" {
		t.Fatalf("unexpected defaults: %v", line)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
