package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/screentime/screentime/internal/config"
	"github.com/screentime/screentime/internal/usage"
)

type Server struct {
	handler *Handler
	server  *http.Server
	logger  zerolog.Logger
}

func NewServer(cfg *config.Config, stats *usage.Stats, arch Archive, logger zerolog.Logger) *Server {
	handler := NewHandler(cfg, stats, arch)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  httpServer,
		logger:  logger.With().Str("component", "web").Logger(),
	}
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting web server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down web server")
	return s.server.Shutdown(ctx)
}

func (s *Server) Address() string {
	return s.server.Addr
}
