package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Level = %s, want info", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Pretty = true, want false (JSON output by default)")
	}
}

func TestSetup_EmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: LevelInfo, Output: &buf})

	logger.Info().Int("offset", 100).Msg("fetching batch")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not a JSON line: %v (%q)", err, buf.String())
	}
	if line["message"] != "fetching batch" {
		t.Errorf("message = %v", line["message"])
	}
	if line["offset"] != float64(100) {
		t.Errorf("offset = %v, want 100", line["offset"])
	}
	if _, ok := line["time"]; !ok {
		t.Error("timestamp field missing")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input LogLevel
		want  zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: LevelInfo, Output: &buf})

	logger := NewLogger("collector")
	logger.Info().Msg("run started")

	if !strings.Contains(buf.String(), `"component":"collector"`) {
		t.Errorf("component tag missing: %q", buf.String())
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: LevelWarn, Output: &buf})

	logger := NewLogger("test")
	logger.Debug().Msg("debug suppressed")
	logger.Info().Msg("info suppressed")
	logger.Warn().Msg("warn visible")
	logger.Error().Msg("error visible")

	out := buf.String()
	for _, suppressed := range []string{"debug suppressed", "info suppressed"} {
		if strings.Contains(out, suppressed) {
			t.Errorf("%q should be filtered at warn level", suppressed)
		}
	}
	for _, visible := range []string{"warn visible", "error visible"} {
		if !strings.Contains(out, visible) {
			t.Errorf("%q missing at warn level", visible)
		}
	}
}
