// Package gateway relays client conversations to the upstream completion
// API using the server-held credential.
package gateway

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ai-gateway/chat-relay/internal/config"
	"github.com/ai-gateway/chat-relay/internal/guardrails"
	"github.com/ai-gateway/chat-relay/internal/metrics"
	"github.com/ai-gateway/chat-relay/internal/observability"
	"github.com/ai-gateway/chat-relay/internal/provider"
	"github.com/ai-gateway/chat-relay/internal/routing"
)

// ConversationRequest is what the browser submits.
type ConversationRequest struct {
	SystemPrompt string             `json:"systemPrompt"`
	Messages     []provider.Message `json:"messages"`
}

// HealthStatus is the liveness payload.
type HealthStatus struct {
	Status string       `json:"status"`
	Debug  *HealthDebug `json:"debug,omitempty"`
}

// HealthDebug carries non-secret diagnostics. It is only populated outside
// production.
type HealthDebug struct {
	APIKeyExists bool     `json:"apiKeyExists"`
	APIKeyLength int      `json:"apiKeyLength"`
	APIKeyPrefix string   `json:"apiKeyPrefix"`
	NodeEnv      string   `json:"nodeEnv"`
	Provider     string   `json:"provider"`
	Model        string   `json:"model"`
	Models       []string `json:"models"`
	metrics.Snapshot
}

type Gateway struct {
	cfg    *config.Config
	router *routing.Router
	guards *guardrails.Guardrails
	usage  *metrics.Usage
	log    zerolog.Logger
	tracer trace.Tracer
}

func New(cfg *config.Config, router *routing.Router, logger zerolog.Logger) *Gateway {
	return &Gateway{
		cfg:    cfg,
		router: router,
		guards: guardrails.New(cfg.Guardrails.MaxContentBytes),
		usage:  &metrics.Usage{},
		log:    logger.With().Str("component", "gateway").Logger(),
		tracer: otel.Tracer(observability.TracerName),
	}
}

// Health always reports ok; credential validity does not affect liveness.
func (g *Gateway) Health() HealthStatus {
	h := HealthStatus{Status: "ok"}
	if !g.cfg.Diagnostic() {
		return h
	}
	h.Debug = &HealthDebug{
		APIKeyExists: g.cfg.APIKey != "",
		APIKeyLength: len(g.cfg.APIKey),
		APIKeyPrefix: g.cfg.CredentialPrefixHint(),
		NodeEnv:      g.cfg.Env,
		Provider:     g.cfg.Upstream.Provider,
		Model:        g.cfg.Upstream.Model,
		Models:       g.router.Models(),
		Snapshot:     g.usage.Snapshot(),
	}
	return h
}

// Relay prepends the system prompt to the client's messages, forwards them
// upstream and returns the first choice's message unchanged.
func (g *Gateway) Relay(ctx context.Context, req ConversationRequest) (*provider.Message, error) {
	g.usage.AddRequest()

	model := g.cfg.Upstream.Model
	ctx, span := g.tracer.Start(ctx, "gateway.Relay", trace.WithAttributes(
		attribute.String("llm.model", model),
		attribute.Int("llm.messages", len(req.Messages)),
	))
	defer span.End()

	if err := g.cfg.CheckCredential(); err != nil {
		return nil, g.fail(span, &Error{Kind: KindConfiguration, Message: err.Error(), Err: err})
	}
	if err := g.guards.CheckMessages(req.SystemPrompt, req.Messages); err != nil {
		return nil, g.fail(span, &Error{Kind: KindInvalidRequest, Message: err.Error(), Err: err})
	}

	p := g.router.ProviderFor(model)
	if p == nil {
		err := errors.New("no provider registered for model " + model)
		return nil, g.fail(span, &Error{Kind: KindConfiguration, Message: err.Error(), Err: err})
	}

	upstream := &provider.ChatRequest{
		Model:       model,
		Messages:    BuildMessages(req),
		Temperature: g.cfg.Upstream.Temperature,
		MaxTokens:   g.cfg.Upstream.MaxTokens,
	}

	g.log.Debug().Str("model", model).Int("messages", len(upstream.Messages)).Msg("relaying conversation")

	res, err := p.Chat(ctx, upstream)
	if err != nil {
		return nil, g.fail(span, classify(err))
	}

	g.usage.AddTokens(res.Usage.PromptTokens, res.Usage.CompletionTokens)
	span.SetAttributes(
		attribute.Int("llm.usage.prompt_tokens", res.Usage.PromptTokens),
		attribute.Int("llm.usage.completion_tokens", res.Usage.CompletionTokens),
	)
	msg := res.Message
	return &msg, nil
}

// BuildMessages returns the upstream message sequence: a system message from
// the prompt followed by the client's messages in order.
func BuildMessages(req ConversationRequest) []provider.Message {
	out := make([]provider.Message, 0, len(req.Messages)+1)
	out = append(out, provider.Message{Role: provider.RoleSystem, Content: req.SystemPrompt})
	return append(out, req.Messages...)
}

func (g *Gateway) fail(span trace.Span, e *Error) error {
	g.usage.AddFailure()
	span.RecordError(e)
	span.SetStatus(codes.Error, e.Kind.String())
	g.log.Error().Err(e).Str("kind", e.Kind.String()).Msg("relay failed")
	return e
}

// classify maps a provider error onto a failure kind. Only transport
// failures count as unavailable; anything else means the upstream answered
// with something unusable.
func classify(err error) *Error {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}

	var (
		apiErr *provider.APIError
		urlErr *url.Error
		netErr net.Error
	)
	switch {
	case errors.As(err, &apiErr):
		return &Error{Kind: KindUpstreamRejected, Message: apiErr.Message, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindUpstreamUnavailable, Message: "upstream request timed out or was cancelled", Err: err}
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return &Error{Kind: KindUpstreamUnavailable, Message: err.Error(), Err: err}
	}
	return &Error{Kind: KindUpstreamRejected, Message: err.Error(), Err: err}
}
