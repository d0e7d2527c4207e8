// Command dummy-server runs the fixture backend that dummy-mode profiles
// are routed to, listening on the host of PROFILEHTTP_DUMMY_HOST.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/adamwoolhether/profilehttp/dummy/backend"
	"github.com/adamwoolhether/profilehttp/dummy/server"
	"github.com/adamwoolhether/profilehttp/profile"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("dummy server", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	env, err := profile.LoadEnvironment()
	if err != nil {
		return err
	}

	u, err := url.Parse(env.DummyHost)
	if err != nil {
		return fmt.Errorf("parsing dummy host %q: %w", env.DummyHost, err)
	}
	host := u.Host
	if host == "" {
		host = server.DefaultHost
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(backend.New(backend.WithLogger(log)),
		server.WithHost(host),
		server.WithLogger(log),
	)

	return srv.Run(ctx)
}
