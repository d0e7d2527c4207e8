// Package profilehttp builds HTTP clients bound to named backend profiles.
//
// A Factory resolves a profile kind to its preset configuration, fills in
// the base URL from the environment and merges the caller's overrides on
// top. Every client it creates shares the factory's header registry and
// notifier but is otherwise independent.
package profilehttp

import (
	"fmt"
	"log/slog"

	"github.com/adamwoolhether/profilehttp/client"
	"github.com/adamwoolhether/profilehttp/headers"
	"github.com/adamwoolhether/profilehttp/notify"
	"github.com/adamwoolhether/profilehttp/profile"
)

// Factory creates clients for profile kinds.
type Factory struct {
	resolver   profile.Resolver
	registry   *headers.Registry
	notifier   notify.Notifier
	logger     *slog.Logger
	clientOpts []client.Option
}

// NewFactory returns a Factory. Unless overridden via options, base URLs
// come from the process environment, [headers.DefaultRegistry] is used
// and failures are published to a fresh [notify.Slot].
func NewFactory(optFns ...Option) (*Factory, error) {
	var opts factoryOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying factory option: %w", err)
		}
	}

	f := &Factory{
		resolver:   opts.resolver,
		registry:   opts.registry,
		notifier:   opts.notifier,
		logger:     opts.logger,
		clientOpts: opts.clientOpts,
	}

	if f.resolver == nil {
		env, err := profile.LoadEnvironment()
		if err != nil {
			return nil, err
		}
		f.resolver = env
	}
	if f.registry == nil {
		f.registry = headers.DefaultRegistry()
	}
	if f.notifier == nil {
		f.notifier = notify.NewSlot()
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f, nil
}

// Create returns a client bound to the preset for kind with override
// merged on top. Options passed here are applied after the factory's.
func (f *Factory) Create(kind profile.Kind, override profile.Config, opts ...client.Option) (*client.Client, error) {
	base, err := profile.Resolve(f.resolver, kind)
	if err != nil {
		return nil, fmt.Errorf("resolving profile %s: %w", kind, err)
	}

	cfg := profile.Merge(base, override)
	cfg.Kind = kind

	log := f.logger.With("profile", string(kind))

	all := make([]client.Option, 0, 3+len(f.clientOpts)+len(opts))
	all = append(all,
		client.WithLogger(log),
		client.WithRegistry(f.registry),
		client.WithNotifier(f.notifier),
	)
	all = append(all, f.clientOpts...)
	all = append(all, opts...)

	c, err := client.Build(cfg, all...)
	if err != nil {
		return nil, fmt.Errorf("building %s client: %w", kind, err)
	}

	log.Debug("client created", "base_url", cfg.BaseURLOrEmpty(), "interface", cfg.Options.Interface(), "dummy", f.resolver.IsDummyMode())

	return c, nil
}

// Default returns a client for the default (RIC) profile.
func (f *Factory) Default(override profile.Config, opts ...client.Option) (*client.Client, error) {
	return f.Create(profile.KindDefault, override, opts...)
}

// CA returns a client for the CA profile.
func (f *Factory) CA(override profile.Config, opts ...client.Option) (*client.Client, error) {
	return f.Create(profile.KindCA, override, opts...)
}

// Notifier returns the notifier shared by the factory's clients.
func (f *Factory) Notifier() notify.Notifier {
	return f.notifier
}

// NewClient is a shorthand for a Factory built from the environment.
func NewClient(kind profile.Kind, override profile.Config, opts ...client.Option) (*client.Client, error) {
	f, err := NewFactory()
	if err != nil {
		return nil, err
	}

	return f.Create(kind, override, opts...)
}
