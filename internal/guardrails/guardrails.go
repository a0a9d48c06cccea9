package guardrails

import (
	"errors"
	"fmt"

	"github.com/ai-gateway/chat-relay/internal/provider"
)

var ErrContentTooLarge = errors.New("conversation content exceeds the allowed size")

// Guardrails performs simple input validation.
type Guardrails struct {
	maxContentBytes int
}

// New returns guardrails limiting total message content to maxContentBytes.
// Zero disables the limit.
func New(maxContentBytes int) *Guardrails {
	return &Guardrails{maxContentBytes: maxContentBytes}
}

// CheckMessages returns an error if a message carries an unknown role or the
// conversation is larger than allowed. An empty conversation passes.
func (g *Guardrails) CheckMessages(systemPrompt string, msgs []provider.Message) error {
	total := len(systemPrompt)
	for i, m := range msgs {
		switch m.Role {
		case provider.RoleSystem, provider.RoleUser, provider.RoleAssistant:
		default:
			return fmt.Errorf("message %d has unsupported role %q", i, m.Role)
		}
		total += len(m.Content)
	}
	if g.maxContentBytes > 0 && total > g.maxContentBytes {
		return ErrContentTooLarge
	}
	return nil
}
