package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: &buf,
	})

	logger.Info().Str("page", "3").Msg("test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\noutput: %s", err, buf.String())
	}
	if entry["message"] != "test message" {
		t.Errorf("message = %v, want %q", entry["message"], "test message")
	}
	if entry["page"] != "3" {
		t.Errorf("page = %v, want %q", entry["page"], "3")
	}
	if _, ok := entry["time"]; !ok {
		t.Error("timestamp field missing")
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{
		Level:  LevelWarn,
		Output: &buf,
	})

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("levels below warn should be filtered, got: %s", out)
	}
	if !strings.Contains(out, "warn message") {
		t.Errorf("warn message missing, got: %s", out)
	}
}

func TestSetup_Pretty(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{
		Level:  LevelInfo,
		Pretty: true,
		Output: &buf,
	})

	logger.Info().Msg("pretty message")

	// Console output is not JSON.
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err == nil {
		t.Error("pretty output should not be JSON")
	}
	if !strings.Contains(buf.String(), "pretty message") {
		t.Errorf("message missing from pretty output: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input LogLevel
		want  zerolog.Level
	}{
		{input: LevelDebug, want: zerolog.DebugLevel},
		{input: LevelInfo, want: zerolog.InfoLevel},
		{input: LevelWarn, want: zerolog.WarnLevel},
		{input: "warning", want: zerolog.WarnLevel},
		{input: LevelError, want: zerolog.ErrorLevel},
		{input: "WARN", want: zerolog.WarnLevel},
		{input: "bogus", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLogger_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: LevelInfo, Output: &buf})

	logger := NewLogger("grid-session")
	logger.Info().Msg("component test")

	if !strings.Contains(buf.String(), `"component":"grid-session"`) {
		t.Errorf("component field missing: %s", buf.String())
	}
}
