package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		result := test.level.String()
		if result != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo},
	}

	for _, test := range tests {
		result := test.level.SlogLevel()
		if result != test.expected {
			t.Errorf("LogLevel(%d).SlogLevel() = %v, expected %v", test.level, result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitForCLI_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf, false)

	Debug("Test", "hidden %d", 1)
	Info("Test", "visible %d", 2)

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("debug entry should be filtered, got: %s", output)
	}
	if !strings.Contains(output, "visible 2") {
		t.Errorf("expected info entry, got: %s", output)
	}
	if !strings.Contains(output, "subsystem=Test") {
		t.Errorf("expected subsystem attribute, got: %s", output)
	}
}

func TestInitForCLI_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf, true)

	Error("Store", errors.New("disk full"), "write failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "write failed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["subsystem"] != "Store" {
		t.Errorf("subsystem = %v", entry["subsystem"])
	}
	if entry["error"] != "disk full" {
		t.Errorf("error = %v", entry["error"])
	}
}

func TestFor(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf, false)

	For("Callback").Debug("request", "path", "/login")

	output := buf.String()
	if !strings.Contains(output, "subsystem=Callback") || !strings.Contains(output, "path=/login") {
		t.Errorf("unexpected output: %s", output)
	}
}
