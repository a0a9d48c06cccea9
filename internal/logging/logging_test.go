package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ai-gateway/chat-relay/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "info", Format: "json"}, &buf)
	log.Info().Str("path", "/api/chat").Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "hello" || line["path"] != "/api/chat" || line["service"] != "chat-relay" {
		t.Fatalf("unexpected fields %v", line)
	}
}

func TestNewLevel(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"DEBUG", true},
		{"info", false},
		{"", false},
		{"bogus", false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		log := New(config.LogConfig{Level: tt.level}, &buf)
		log.Debug().Msg("probe")
		if got := buf.Len() > 0; got != tt.wantDebug {
			t.Errorf("level %q: debug emitted=%v want %v", tt.level, got, tt.wantDebug)
		}
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Format: "console"}, &buf)
	log.Info().Msg("ready")
	if strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), "ready") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}
