package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ai-gateway/chat-relay/internal/config"
	"github.com/ai-gateway/chat-relay/internal/gateway"
	"github.com/ai-gateway/chat-relay/internal/provider/echo"
	"github.com/ai-gateway/chat-relay/internal/provider/openai"
	"github.com/ai-gateway/chat-relay/internal/routing"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	gateway *gateway.Gateway
	log     zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) *Server {
	r := gin.New()
	r.Use(requestID(), requestLogger(logger), gin.Recovery(), corsMiddleware(cfg.CORS))

	rt := routing.New()
	switch cfg.Upstream.Provider {
	case config.ProviderEcho:
		rt.Register(cfg.Upstream.Model, echo.New())
	default:
		rt.Register(cfg.Upstream.Model, openai.New(
			openai.WithAPIKey(cfg.APIKey),
			openai.WithBaseURL(cfg.Upstream.BaseURL),
			openai.WithTimeout(cfg.Upstream.Timeout),
		))
	}

	srv := &Server{
		cfg:     cfg,
		engine:  r,
		gateway: gateway.New(cfg, rt, logger),
		log:     logger,
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.health)

	api := s.engine.Group("/api")
	if s.cfg.RateLimit.RequestsPerSecond > 0 {
		api.Use(rateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RequestsPerSecond), s.cfg.RateLimit.Burst)))
	}
	api.POST("/chat", s.chat)
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	s.log.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, s.gateway.Health())
}

func (s *Server) chat(c *gin.Context) {
	if limit := s.cfg.Server.MaxBodyBytes; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	var req gateway.ConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(c, &gateway.Error{
				Kind:    gateway.KindRequestTooLarge,
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Err:     err,
			})
			return
		}
		s.writeError(c, &gateway.Error{Kind: gateway.KindInvalidRequest, Message: "invalid request body", Err: err})
		return
	}

	msg, err := s.gateway.Relay(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// writeError sends the client-facing error body. The gateway has already
// logged relay failures, so only the kind is left for the access line.
func (s *Server) writeError(c *gin.Context, err error) {
	kind := gateway.KindOf(err)
	c.Set(errorKindKey, kind.String())
	c.JSON(kind.HTTPStatus(), gin.H{"error": gateway.PublicMessage(err)})
}
