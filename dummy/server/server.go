// Package server runs the dummy backend as a standalone HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// DefaultHost matches the host dummy-mode profiles resolve to by default.
const DefaultHost = "127.0.0.1:3000"

// Server wraps an [http.Server] with context-driven graceful shutdown.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
	shutdownFuncs   []shutdownFunc
}

// New creates a Server for the given handler listening on DefaultHost
// unless overridden via options.
func New(handler http.Handler, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	srv := &http.Server{
		Addr:         DefaultHost,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if o.host != "" {
		srv.Addr = o.host
	}
	if o.readTimeout != 0 {
		srv.ReadTimeout = o.readTimeout
	}
	if o.writeTimeout != 0 {
		srv.WriteTimeout = o.writeTimeout
	}
	if o.idleTimeout != 0 {
		srv.IdleTimeout = o.idleTimeout
	}

	s := Server{
		srv:             srv,
		shutdownTimeout: 10 * time.Second,
		logger:          slog.Default(),
		shutdownFuncs:   o.shutdownFuncs,
	}

	if o.shutdownTimeout != 0 {
		s.shutdownTimeout = o.shutdownTimeout
	}
	if o.logger != nil {
		s.logger = o.logger
	}

	return &s
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully. It returns nil on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serverErrs := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", ln.Addr().String())
		serverErrs <- s.srv.Serve(ln)
	}()

	select {
	case err := <-serverErrs:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}

		s.logger.Info("shutdown complete")

		return nil
	}
}

// Shutdown runs the registered shutdown functions in order, then drains
// in-flight requests. Callers should set a deadline on ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, fn := range s.shutdownFuncs {
		if err := fn(ctx); err != nil {
			s.logger.Error("shutdown func", "error", err)
		}
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		s.srv.Close()
		return fmt.Errorf("server didn't stop gracefully: %w", err)
	}

	return nil
}
