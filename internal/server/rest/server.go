// Package rest serves the nYtevibe authentication API over HTTP.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/nytevibe/nytevibe/internal/logging"
	"github.com/nytevibe/nytevibe/internal/server/config"
	"github.com/nytevibe/nytevibe/internal/server/users"
)

type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewServer(cfg *config.Config, l logging.Logger, us *users.Service) *Server {
	logger := l.With("module", "rest_server")
	h := &handlers{
		users:  us,
		logger: logger,
		login:  newLimiter(cfg.LoginRate, cfg.LoginBurst),
		mail:   newLimiter(cfg.LoginRate, cfg.LoginBurst),
	}
	return &Server{
		address: cfg.ListenAddr,
		handler: NewRouter(cfg.PathPrefix, h),
		logger:  logger,
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
