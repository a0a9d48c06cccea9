package routing

import (
	"testing"

	"github.com/ai-gateway/chat-relay/internal/provider/echo"
)

func TestRouterProvider(t *testing.T) {
	r := New()
	p := echo.New()
	r.Register("echo", p)
	if r.ProviderFor("echo") == nil {
		t.Fatalf("expected provider")
	}
}

func TestRouterDefault(t *testing.T) {
	r := New()
	if r.ProviderFor("anything") != nil {
		t.Fatalf("empty router should have no provider")
	}
	first, second := echo.New(), echo.New()
	r.Register("gpt-4-turbo-preview", first)
	r.Register("other", second)
	if r.ProviderFor("unknown") != first {
		t.Fatalf("expected first registered provider as default")
	}
	if r.ProviderFor("other") != second {
		t.Fatalf("expected exact match to win")
	}
}

func TestRouterModels(t *testing.T) {
	r := New()
	r.Register("b", echo.New())
	r.Register("a", echo.New())
	got := r.Models()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected models %v", got)
	}
}
