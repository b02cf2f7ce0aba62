package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		" DEBUG ": LogLevelDebug,
		"TRACE":   LogLevelTrace,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelWarn).With("cleaning")

	logger.Info("stage summary")
	logger.Debug("fill detail")
	logger.Warn("column %q not found", "Province")

	out := buf.String()
	if strings.Contains(out, "stage summary") || strings.Contains(out, "fill detail") {
		t.Errorf("Messages below WARN should be filtered, got %s", out)
	}
	if !strings.Contains(out, `column \"Province\" not found`) {
		t.Errorf("Expected warning in output, got %s", out)
	}
	if !strings.Contains(out, `"component":"cleaning"`) {
		t.Errorf("Expected component field, got %s", out)
	}
}

func TestLogger_OrDefault(t *testing.T) {
	var l *Logger
	if l.OrDefault() != DefaultLogger {
		t.Error("nil logger should fall back to DefaultLogger")
	}
}
