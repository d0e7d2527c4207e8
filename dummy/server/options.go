package server

import (
	"context"
	"log/slog"
	"time"
)

// Option configures a Server.
type Option func(*options)

type options struct {
	host            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	shutdownFuncs   []shutdownFunc
}

type shutdownFunc func(ctx context.Context) error

// WithHost sets the address the server listens on.
func WithHost(host string) Option {
	return func(opts *options) {
		opts.host = host
	}
}

// WithReadTimeout sets the maximum duration for reading a request.
func WithReadTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.readTimeout = d
	}
}

// WithWriteTimeout sets the maximum duration for writing a response.
// Fixtures that simulate slow backends need it above their delay.
func WithWriteTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.writeTimeout = d
	}
}

// WithIdleTimeout sets how long keep-alive connections may idle.
func WithIdleTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.idleTimeout = d
	}
}

// WithShutdownTimeout bounds how long [Server.Run] waits for in-flight
// requests once ctx is done.
func WithShutdownTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.shutdownTimeout = d
	}
}

// WithLogger sets the logger used for server lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = log
	}
}

// WithShutdownFunc registers a function called during shutdown, before
// the HTTP server is stopped.
func WithShutdownFunc(fn func(ctx context.Context) error) Option {
	return func(opts *options) {
		opts.shutdownFuncs = append(opts.shutdownFuncs, fn)
	}
}
