package profilehttp

import (
	"errors"
	"log/slog"

	"github.com/adamwoolhether/profilehttp/client"
	"github.com/adamwoolhether/profilehttp/headers"
	"github.com/adamwoolhether/profilehttp/notify"
	"github.com/adamwoolhether/profilehttp/profile"
)

// Option defines optional settings for a [Factory].
type Option func(*factoryOpts) error
type factoryOpts struct {
	resolver   profile.Resolver
	registry   *headers.Registry
	notifier   notify.Notifier
	logger     *slog.Logger
	clientOpts []client.Option
}

// WithResolver sets where base URLs come from. [profile.LoadEnvironment]
// is used otherwise.
func WithResolver(r profile.Resolver) Option {
	return func(o *factoryOpts) error {
		if r == nil {
			return errors.New("resolver must not be nil")
		}
		o.resolver = r
		return nil
	}
}

// WithRegistry sets the header registry shared by every client.
func WithRegistry(r *headers.Registry) Option {
	return func(o *factoryOpts) error {
		if r == nil {
			return errors.New("registry must not be nil")
		}
		o.registry = r
		return nil
	}
}

// WithNotifier sets the notifier shared by every client.
func WithNotifier(n notify.Notifier) Option {
	return func(o *factoryOpts) error {
		if n == nil {
			return errors.New("notifier must not be nil")
		}
		o.notifier = n
		return nil
	}
}

// WithLogger injects a custom logger. Each client logs with a "profile"
// attribute added.
func WithLogger(logger *slog.Logger) Option {
	return func(o *factoryOpts) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithClientOptions adds options applied to every client the factory
// creates.
func WithClientOptions(opts ...client.Option) Option {
	return func(o *factoryOpts) error {
		o.clientOpts = append(o.clientOpts, opts...)
		return nil
	}
}
