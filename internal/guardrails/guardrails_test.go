package guardrails

import (
	"errors"
	"strings"
	"testing"

	"github.com/ai-gateway/chat-relay/internal/provider"
)

func TestCheckMessages(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		system  string
		msgs    []provider.Message
		wantErr bool
	}{
		{"empty conversation", 0, "", nil, false},
		{"all roles", 0, "sys", []provider.Message{
			{Role: provider.RoleSystem, Content: "a"},
			{Role: provider.RoleUser, Content: "b"},
			{Role: provider.RoleAssistant, Content: "c"},
		}, false},
		{"unknown role", 0, "", []provider.Message{{Role: "tool", Content: "x"}}, true},
		{"missing role", 0, "", []provider.Message{{Content: "x"}}, true},
		{"within limit", 10, "12345", []provider.Message{{Role: provider.RoleUser, Content: "12345"}}, false},
		{"over limit", 10, "12345", []provider.Message{{Role: provider.RoleUser, Content: "123456"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.max).CheckMessages(tt.system, tt.msgs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckMessagesErrors(t *testing.T) {
	err := New(0).CheckMessages("", []provider.Message{{Role: provider.RoleUser}, {Role: "robot"}})
	if err == nil || !strings.Contains(err.Error(), "message 1") || !strings.Contains(err.Error(), "robot") {
		t.Fatalf("expected role error naming index and role, got %v", err)
	}
	err = New(1).CheckMessages("too long", nil)
	if !errors.Is(err, ErrContentTooLarge) {
		t.Fatalf("expected ErrContentTooLarge got %v", err)
	}
}
