// Package mux routes dummy backend requests through a middleware chain,
// giving every handler a span and a trace id.
package mux

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/profilehttp/headers"
)

// HeaderTraceID carries the request's trace id back to the caller.
const HeaderTraceID = "X-Trace-Id"

// App routes requests to fixture handlers.
type App struct {
	mux    *http.ServeMux
	mw     []Middleware
	group  string
	logger *slog.Logger
	tracer trace.Tracer
}

// Handler is a http.Handler that returns an error.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware defines a signature to chain Handler together.
type Middleware func(handler Handler) Handler

// New creates an App. A no-op tracer and the default slog logger are used
// unless overridden via options.
func New(optFns ...Option) *App {
	var opts options
	for _, opt := range optFns {
		opt(&opts)
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	if opts.tracer == nil {
		opts.tracer = noop.NewTracerProvider().Tracer("dummy")
	}

	return &App{
		mux:    http.NewServeMux(),
		mw:     opts.mw,
		logger: opts.logger,
		tracer: opts.tracer,
	}
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Mount returns an App sharing the same routes whose paths are all
// prefixed with subRoute.
func (a *App) Mount(subRoute string) *App {
	group := strings.Trim(subRoute, "/")
	if a.group != "" {
		group = a.group + "/" + group
	}

	return &App{
		mux:    a.mux,
		mw:     slices.Clone(a.mw),
		group:  group,
		logger: a.logger,
		tracer: a.tracer,
	}
}

// Use appends the given middleware to the App's stack.
func (a *App) Use(mw ...Middleware) {
	a.mw = append(a.mw, mw...)
}

// Get registers a handler for GET requests at the given path.
func (a *App) Get(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodGet, path, fn, mw...)
}

// Post registers a handler for POST requests at the given path.
func (a *App) Post(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodPost, path, fn, mw...)
}

// Put registers a handler for PUT requests at the given path.
func (a *App) Put(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodPut, path, fn, mw...)
}

// Patch registers a handler for PATCH requests at the given path.
func (a *App) Patch(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodPatch, path, fn, mw...)
}

// Delete registers a handler for DELETE requests at the given path.
func (a *App) Delete(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodDelete, path, fn, mw...)
}

// Handle registers handler for method at path. An empty method matches
// every method.
func (a *App) Handle(method, path string, handler Handler, mw ...Middleware) {
	handler = wrap(mw, handler)
	handler = wrap(a.mw, handler)

	h := func(w http.ResponseWriter, r *http.Request) {
		ctx, span := a.startSpan(w, r)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		if !span.SpanContext().TraceID().IsValid() {
			traceID = uuid.NewString()
		}
		w.Header().Set(HeaderTraceID, traceID)

		v := BaseValues{
			TraceID: traceID,
			UUID:    r.Header.Get(headers.HeaderUUID),
			Now:     time.Now().UTC(),
			Tracer:  a.tracer,
		}
		if v.UUID != "" {
			span.SetAttributes(attribute.String("uuid", v.UUID))
		}

		r = r.WithContext(setValues(ctx, &v))

		if err := handler(r.Context(), w, r); err != nil {
			a.logger.Error("mux", "handle", err)
		}
	}

	a.mux.HandleFunc(a.pattern(method, path), h)
}

func (a *App) pattern(method, path string) string {
	finalPath := path
	if a.group != "" {
		finalPath = fmt.Sprintf("/%s%s", a.group, path)
	}
	if method == "" {
		return finalPath
	}

	return fmt.Sprintf("%s %s", method, finalPath)
}

// startSpan adds a span for the request and writes the trace context
// into the response headers.
func (a *App) startSpan(w http.ResponseWriter, r *http.Request) (context.Context, trace.Span) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	ctx, span := a.tracer.Start(ctx, "dummy.handler")
	span.SetAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("path", r.URL.Path),
	)

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(w.Header()))

	return ctx, span
}

// wrap middleware around the handler and execute in order given.
func wrap(mw []Middleware, handler Handler) Handler {
	for _, mwFn := range slices.Backward(mw) {
		if mwFn != nil {
			handler = mwFn(handler)
		}
	}

	return handler
}
