package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ai-gateway/chat-relay/internal/config"
)

// inTempDir runs the test from an empty directory so no config.yaml or .env
// from the working tree is picked up.
func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestConfigCommandRedactsCredential(t *testing.T) {
	inTempDir(t)

	t.Setenv("OPENAI_API_KEY", "sk-very-secret-value")
	t.Setenv("NODE_ENV", "production")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config command: %v", err)
	}
	if strings.Contains(out.String(), "very-secret") {
		t.Fatalf("credential leaked:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "<redacted>") {
		t.Fatalf("expected redacted key:\n%s", out.String())
	}
}

func TestCheckCredentialLogs(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		want string
	}{
		{"missing", &config.Config{Env: "production"}, "credential unusable"},
		{"present", &config.Config{Env: "production", APIKey: "sk-abc"}, "credential configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			checkCredential(tt.cfg, zerolog.New(&buf))
			if !strings.Contains(buf.String(), tt.want) {
				t.Fatalf("expected %q in %s", tt.want, buf.String())
			}
			if tt.cfg.APIKey != "" && strings.Contains(buf.String(), tt.cfg.APIKey) {
				t.Fatalf("credential logged")
			}
		})
	}
}

func TestServeFailsOnBadConfig(t *testing.T) {
	inTempDir(t)
	t.Setenv("PORT", "0")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"serve"})
	err := cmd.Execute()
	if err == nil {
		t.Fatalf("expected serve to fail with an invalid port")
	}
	if !strings.Contains(err.Error(), "load config") || !strings.Contains(err.Error(), "port 0 out of range") {
		t.Fatalf("unexpected error %v", err)
	}
}
