// Package openai implements provider.Provider with the official OpenAI Go SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ai-gateway/chat-relay/internal/provider"
)

// Provider calls the chat completions endpoint of any OpenAI-compatible API.
type Provider struct {
	client sdk.Client
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	apiKey  string
	baseURL string
	timeout time.Duration
}

// WithAPIKey sets the bearer credential sent upstream.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL points the client at a different OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithTimeout bounds each upstream request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// DefaultBaseURL is used when no base URL option is given.
const DefaultBaseURL = "https://api.openai.com/v1/"

// New creates a Provider. SDK retries are disabled: a failed call is
// reported to the caller as is. Every setting the SDK would otherwise pick
// up from OPENAI_* environment variables is overridden or stripped, so only
// the options decide where the credential goes.
func New(opts ...Option) *Provider {
	o := resolve(opts)

	clientOpts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithAPIKey(o.apiKey),
		option.WithBaseURL(o.baseURL),
		option.WithHeaderDel("OpenAI-Organization"),
		option.WithHeaderDel("OpenAI-Project"),
	}
	if o.timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(o.timeout))
	}

	return &Provider{client: sdk.NewClient(clientOpts...)}
}

func resolve(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.baseURL == "" {
		o.baseURL = DefaultBaseURL
	}
	return o
}

// Chat sends one chat completion request and returns the first choice.
func (p *Provider) Chat(ctx context.Context, req *provider.ChatRequest) (*provider.Completion, error) {
	params := sdk.ChatCompletionNewParams{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: sdk.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(req.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return nil, &provider.APIError{StatusCode: apiErr.StatusCode, Message: apiErr.Message, Err: err}
		}
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, provider.ErrNoChoices
	}

	msg := completion.Choices[0].Message
	role := provider.Role(msg.Role)
	if role == "" {
		role = provider.RoleAssistant
	}
	content := msg.Content
	if content == "" {
		content = msg.Refusal
	}
	return &provider.Completion{
		Message: provider.Message{Role: role, Content: content},
		Usage: provider.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
		},
	}, nil
}

// toOpenAIMessages converts messages to the SDK union type. Roles are
// checked before a request gets here; anything else is sent as user.
func toOpenAIMessages(msgs []provider.Message) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case provider.RoleSystem:
			out[i] = sdk.SystemMessage(m.Content)
		case provider.RoleAssistant:
			out[i] = sdk.AssistantMessage(m.Content)
		default:
			out[i] = sdk.UserMessage(m.Content)
		}
	}
	return out
}
