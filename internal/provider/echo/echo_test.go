package echo

import (
	"context"
	"testing"

	"github.com/ai-gateway/chat-relay/internal/provider"
)

func TestChatEchoesLastMessage(t *testing.T) {
	p := New()
	got, err := p.Chat(context.Background(), &provider.ChatRequest{Messages: []provider.Message{
		{Role: provider.RoleSystem, Content: "be nice"},
		{Role: provider.RoleUser, Content: "hi"},
		{Role: provider.RoleAssistant, Content: "hello"},
		{Role: provider.RoleUser, Content: "again"},
	}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if got.Message.Role != provider.RoleAssistant || got.Message.Content != "Echo: again" {
		t.Fatalf("unexpected message %+v", got.Message)
	}
}

func TestChatOnlySystemMessage(t *testing.T) {
	got, err := New().Chat(context.Background(), &provider.ChatRequest{Messages: []provider.Message{
		{Role: provider.RoleSystem, Content: "be nice"},
	}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if got.Message.Content != "" {
		t.Fatalf("expected empty content got %q", got.Message.Content)
	}
}

func TestChatCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Chat(ctx, &provider.ChatRequest{}); err == nil {
		t.Fatalf("expected context error")
	}
}
