package echo

import (
	"context"

	"github.com/ai-gateway/chat-relay/internal/provider"
)

// Provider responds by echoing the last non-system message. It needs no
// credential and is meant for front-end work without network access.
type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Chat(ctx context.Context, req *provider.ChatRequest) (*provider.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role != provider.RoleSystem {
			content = "Echo: " + req.Messages[i].Content
			break
		}
	}
	return &provider.Completion{
		Message: provider.Message{Role: provider.RoleAssistant, Content: content},
	}, nil
}
