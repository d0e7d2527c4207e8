//go:build integration

package e2e_test

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/profilehttp"
	"github.com/adamwoolhether/profilehttp/client"
	"github.com/adamwoolhether/profilehttp/dummy"
	"github.com/adamwoolhether/profilehttp/dummy/backend"
	"github.com/adamwoolhether/profilehttp/dummy/errs"
	"github.com/adamwoolhether/profilehttp/dummy/server"
	"github.com/adamwoolhether/profilehttp/headers"
	"github.com/adamwoolhether/profilehttp/notify"
	"github.com/adamwoolhether/profilehttp/profile"
)

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

type stack struct {
	backend *backend.Backend
	factory *profilehttp.Factory
	slot    *notify.Slot
	stopped *atomic.Bool
	stop    func() error
}

// newStack runs the dummy backend on a real listener and points a factory
// at it in dummy mode.
func newStack(t *testing.T) stack {
	t.Helper()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}

	var stopped atomic.Bool
	b := backend.New(backend.WithLogger(log))
	srv := server.New(b,
		server.WithLogger(log),
		server.WithShutdownTimeout(2*time.Second),
		server.WithShutdownFunc(func(context.Context) error {
			stopped.Store(true)
			return nil
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	stop := sync.OnceValue(func() error {
		cancel()
		return <-done
	})
	t.Cleanup(func() {
		if err := stop(); err != nil {
			t.Errorf("server shutdown: %v", err)
		}
	})

	slot := notify.NewSlot()
	f, err := profilehttp.NewFactory(
		profilehttp.WithResolver(profile.Environment{Dummy: true, DummyHost: "http://" + ln.Addr().String()}),
		profilehttp.WithNotifier(slot),
		profilehttp.WithLogger(log),
		profilehttp.WithClientOptions(
			client.WithRetryPolicy(client.RetryPolicy{Base: 5 * time.Millisecond, Max: 20 * time.Millisecond, Multiplier: 2, Jitter: 0.2}),
		),
	)
	if err != nil {
		t.Fatalf("building factory: %v", err)
	}

	return stack{backend: b, factory: f, slot: slot, stopped: &stopped, stop: stop}
}

type account struct {
	ID      string `json:"id"`
	Balance int    `json:"balance"`
}

// -------------------------------------------------------------------------
// Tests
// -------------------------------------------------------------------------

func TestE2E_EnvelopeRoundTrip(t *testing.T) {
	s := newStack(t)
	s.backend.Fixture(http.MethodPost, "/accounts", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var a account
		if err := dummy.Decode(r, &a); err != nil {
			return errs.NewStatus(http.StatusBadRequest, "E4000", err)
		}
		a.ID = "acc-1"
		return dummy.RespondSuccess(ctx, w, a)
	})

	c, err := s.factory.Default(profile.Config{})
	if err != nil {
		t.Fatalf("default client: %v", err)
	}

	got, err := client.Fetch[account](t.Context(), c, client.Descriptor{
		Method: http.MethodPost,
		URL:    "/accounts",
		Body:   account{Balance: 250},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(account{ID: "acc-1", Balance: 250}, got); diff != "" {
		t.Errorf("account mismatch (-exp +got):\n%s", diff)
	}
}

func TestE2E_ProfileHeaders(t *testing.T) {
	s := newStack(t)
	auth := client.WithAuth(headers.AuthContext{Token: "tok", UUID: "corr-e2e"})

	tests := map[string]struct {
		kind     profile.Kind
		expUUID  string
		expAuthz string
	}{
		"default": {kind: profile.KindDefault, expAuthz: "tok"},
		"ca":      {kind: profile.KindCA, expUUID: "corr-e2e", expAuthz: "Bearer tok"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := s.factory.Create(tc.kind, profile.Config{}, auth)
			if err != nil {
				t.Fatalf("creating client: %v", err)
			}

			got, err := client.Fetch[backend.Echo](t.Context(), c, client.Descriptor{Method: http.MethodGet, URL: "/echo"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.UUID != tc.expUUID {
				t.Errorf("UUID = %q, want %q", got.UUID, tc.expUUID)
			}
			if got.Authorization != tc.expAuthz {
				t.Errorf("Authorization = %q, want %q", got.Authorization, tc.expAuthz)
			}
		})
	}
}

func TestE2E_FailureNotifies(t *testing.T) {
	s := newStack(t)

	c, err := s.factory.CA(profile.Config{})
	if err != nil {
		t.Fatalf("ca client: %v", err)
	}

	_, err = c.Get(t.Context(), client.Descriptor{URL: "/fail?code=E3003&msg=card+declined"})
	ce, ok := errors.AsType[*client.ClassifiedError](err)
	if !ok {
		t.Fatalf("expected *ClassifiedError, got %T: %v", err, err)
	}
	if ce.Kind != client.KindEnvelopeFailure || ce.ResultCode != "E3003" {
		t.Fatalf("unexpected failure: %v", err)
	}

	exp := notify.Notification{Message: "API request failed: card declined", Visible: true}
	if diff := cmp.Diff(exp, s.slot.Load()); diff != "" {
		t.Errorf("notification mismatch (-exp +got):\n%s", diff)
	}
}

func TestE2E_TimeoutRetries(t *testing.T) {
	s := newStack(t)

	var hits atomic.Int32
	s.backend.Fixture(http.MethodGet, "/flaky", func(ctx context.Context, w http.ResponseWriter, _ *http.Request) error {
		if hits.Add(1) < 3 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
		return dummy.RespondSuccess(ctx, w, map[string]int{"hits": int(hits.Load())})
	})

	c, err := s.factory.Default(profile.Config{
		Timeout: profile.Ptr(50 * time.Millisecond),
		Options: profile.Options{RetryMaxCount: profile.Ptr(3)},
	})
	if err != nil {
		t.Fatalf("default client: %v", err)
	}

	got, err := client.Fetch[map[string]int](t.Context(), c, client.Descriptor{Method: http.MethodGet, URL: "/flaky"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["hits"] != 3 {
		t.Errorf("hits = %d, want 3", got["hits"])
	}
}

func TestE2E_CancelStopsRetries(t *testing.T) {
	s := newStack(t)

	var hooked atomic.Bool
	c, err := s.factory.Default(profile.Config{
		Timeout: profile.Ptr(time.Second),
		Options: profile.Options{RetryMaxCount: profile.Ptr(3)},
	}, client.WithFailureHook(func(context.Context, *client.ClassifiedError) { hooked.Store(true) }))
	if err != nil {
		t.Fatalf("default client: %v", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Get(ctx, client.Descriptor{URL: "/slow", Params: map[string]any{"ms": 2000}})
	ce, ok := errors.AsType[*client.ClassifiedError](err)
	if !ok {
		t.Fatalf("expected *ClassifiedError, got %T: %v", err, err)
	}

	if ce.Kind != client.KindCanceled {
		t.Errorf("kind = %s, want %s", ce.Kind, client.KindCanceled)
	}
	if ce.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", ce.Attempts)
	}
	if hooked.Load() {
		t.Error("failure hook must not run after cancellation")
	}
	if got := s.slot.Load(); got != (notify.Notification{}) {
		t.Errorf("notifier touched after cancellation: %+v", got)
	}
}

func TestE2E_ServerShutdown(t *testing.T) {
	s := newStack(t)

	c, err := s.factory.Default(profile.Config{})
	if err != nil {
		t.Fatalf("default client: %v", err)
	}
	if _, err := client.Fetch[backend.Health](t.Context(), c, client.Descriptor{Method: http.MethodGet, URL: "/health"}); err != nil {
		t.Fatalf("health: %v", err)
	}

	if err := s.stop(); err != nil {
		t.Fatalf("stopping server: %v", err)
	}
	if !s.stopped.Load() {
		t.Error("shutdown funcs were not run")
	}

	_, err = c.Get(t.Context(), client.Descriptor{URL: "/health"})
	ce, ok := errors.AsType[*client.ClassifiedError](err)
	if !ok || ce.Kind != client.KindNetworkUnreachable {
		t.Errorf("expected network_unreachable after shutdown, got: %v", err)
	}
}
