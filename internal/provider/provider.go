package provider

import (
	"context"
	"errors"
	"fmt"
)

// Role tags who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the fully shaped request sent upstream.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Usage reports tokens consumed by one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Completion is the first choice of an upstream response.
type Completion struct {
	Message Message
	Usage   Usage
}

// ErrNoChoices is returned when the upstream answers without any choice.
var ErrNoChoices = errors.New("upstream returned no choices")

// APIError is an error response produced by the upstream API itself, as
// opposed to a transport failure.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

// Provider handles LLM operations. Implementations must be safe for
// concurrent use.
type Provider interface {
	Chat(ctx context.Context, req *ChatRequest) (*Completion, error)
}
