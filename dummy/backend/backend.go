// Package backend is the fixture server dummy-mode profiles talk to. All
// of its routes live under profile.DummyPath and answer with envelopes.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/profilehttp/dummy"
	"github.com/adamwoolhether/profilehttp/dummy/errs"
	"github.com/adamwoolhether/profilehttp/dummy/middleware"
	"github.com/adamwoolhether/profilehttp/dummy/mux"
	"github.com/adamwoolhether/profilehttp/headers"
	"github.com/adamwoolhether/profilehttp/profile"
)

// Echo is the body returned by the echo fixture.
type Echo struct {
	Method        string              `json:"method"`
	Path          string              `json:"path"`
	Query         map[string][]string `json:"query,omitempty"`
	UUID          string              `json:"uuid,omitempty"`
	Authorization string              `json:"authorization,omitempty"`
	Body          json.RawMessage     `json:"body,omitempty"`
}

// Health is the body returned by the health fixture.
type Health struct {
	Status string `json:"status"`
}

// Backend serves the built-in fixtures plus any registered with Fixture.
type Backend struct {
	root *mux.App
	app  *mux.App
}

// Option configures a Backend.
type Option func(*options)

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// WithLogger sets the logger for request and error logs.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// WithTracer sets the tracer used for handler spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// New returns a Backend with the built-in fixtures registered.
func New(optFns ...Option) *Backend {
	var o options
	for _, opt := range optFns {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	muxOpts := []mux.Option{
		mux.WithLogger(o.logger),
		mux.WithMiddleware(
			middleware.Logger(o.logger),
			middleware.Errors(o.logger),
			middleware.Panics(),
		),
	}
	if o.tracer != nil {
		muxOpts = append(muxOpts, mux.WithTracer(o.tracer))
	}

	root := mux.New(muxOpts...)
	b := &Backend{
		root: root,
		app:  root.Mount(profile.DummyPath),
	}

	b.app.Get("/health", health)
	b.app.Handle("", "/echo", echo)
	b.app.Handle("", "/fail", fail)
	b.app.Handle("", "/status/{code}", status)
	b.app.Handle("", "/slow", slow)
	b.app.Handle("", "/panic", func(context.Context, http.ResponseWriter, *http.Request) error {
		panic("fixture panic")
	})

	return b
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.root.ServeHTTP(w, r)
}

// Fixture registers fn for method and path below profile.DummyPath. An
// empty method matches every method.
func (b *Backend) Fixture(method, path string, fn mux.Handler) {
	b.app.Handle(method, path, fn)
}

func health(ctx context.Context, w http.ResponseWriter, _ *http.Request) error {
	return dummy.RespondSuccess(ctx, w, Health{Status: "ok"})
}

func echo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var body json.RawMessage
	if err := dummy.Decode(r, &body); err != nil {
		return errs.NewStatus(http.StatusBadRequest, "E4000", err)
	}

	out := Echo{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	}
	if q := r.URL.Query(); len(q) > 0 {
		out.Query = q
	}
	out.UUID = r.Header.Get(headers.HeaderUUID)

	return dummy.RespondSuccess(ctx, w, out)
}

// fail answers with a failed envelope. The code and msg query params set
// resultCode and resultMsg.
func fail(_ context.Context, _ http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	code := q.Get("code")
	if code == "" {
		code = "E1000"
	}
	msg := q.Get("msg")
	if msg == "" {
		msg = "fixture failure"
	}

	return errs.New(code, errors.New(msg))
}

// status answers with the HTTP status in the path.
func status(_ context.Context, _ http.ResponseWriter, r *http.Request) error {
	code, err := strconv.Atoi(r.PathValue("code"))
	if err != nil || code < 400 || code > 599 {
		return errs.NewStatus(http.StatusBadRequest, "E4000", fmt.Errorf("status must be within 400-599, got %q", r.PathValue("code")))
	}

	return errs.NewStatus(code, "E"+strconv.Itoa(code), errors.New(http.StatusText(code)))
}

// slow waits for the ms query param before answering, or until the
// caller goes away.
func slow(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ms, err := strconv.Atoi(r.URL.Query().Get("ms"))
	if err != nil || ms < 0 {
		return errs.NewStatus(http.StatusBadRequest, "E4000", errors.New("ms must be a non-negative integer"))
	}

	ctx, span := mux.AddSpan(ctx, "dummy.slow", attribute.Int("delay_ms", ms))
	defer span.End()

	t := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	return dummy.RespondSuccess(ctx, w, Health{Status: "ok"})
}
