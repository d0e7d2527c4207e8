package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/profilehttp/dummy/errs"
	"github.com/adamwoolhether/profilehttp/dummy/mux"
)

// Panics turns a panic in a fixture into an internal error, so Errors
// answers with a 500 failure envelope. The stack is kept on the error for
// the log and the request span is marked failed.
func Panics() mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					span := trace.SpanFromContext(ctx)
					span.SetStatus(codes.Error, "panic")
					span.AddEvent("panic", trace.WithStackTrace(true))

					err = errs.NewInternal(fmt.Errorf("panic in %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack()))
				}
			}()

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
