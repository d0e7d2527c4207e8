package mux

import (
	"log/slog"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type Option func(*options)

type options struct {
	tracer trace.Tracer
	logger *slog.Logger
	mw     []Middleware
}

type ordered struct {
	priority int
	fn       Middleware
}

// WithMiddleware orders the given middleware by the name of the function
// that built it: Logger, then Errors, then any custom middleware, with
// Panics innermost so a recovered panic still reaches Errors.
func WithMiddleware(mw ...Middleware) Option {
	mwOrdered := make([]ordered, 0, len(mw))

	for _, m := range mw {
		switch name(m) {
		case "Logger":
			mwOrdered = append(mwOrdered, ordered{priority: 1, fn: m})
		case "Errors":
			mwOrdered = append(mwOrdered, ordered{priority: 2, fn: m})
		case "Panics":
			mwOrdered = append(mwOrdered, ordered{priority: 100, fn: m})
		default:
			mwOrdered = append(mwOrdered, ordered{priority: 3, fn: m})
		}
	}

	slices.SortStableFunc(mwOrdered, func(a, b ordered) int {
		return a.priority - b.priority
	})

	sorted := make([]Middleware, len(mwOrdered))
	for i, v := range mwOrdered {
		sorted[i] = v.fn
	}

	return func(opts *options) {
		opts.mw = sorted
	}
}

// WithTracer injects the given tracer into the App.
func WithTracer(tracer trace.Tracer) Option {
	return func(opts *options) {
		opts.tracer = tracer
	}
}

// WithLogger sets the logger used by the App for internal errors.
func WithLogger(log *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = log
	}
}

// name returns the name of the function that built mw.
func name(mw Middleware) string {
	return constructorName(runtime.FuncForPC(reflect.ValueOf(mw).Pointer()).Name())
}

// constructorName reduces a closure symbol to the function that created it.
// Both ".../middleware.Errors.func1" and the inlined form
// ".../backend.New.Errors.func1" yield "Errors".
func constructorName(fnName string) string {
	if i := strings.LastIndex(fnName, "/"); i >= 0 {
		fnName = fnName[i+1:]
	}

	parts := strings.Split(fnName, ".")
	for _, p := range slices.Backward(parts[1:]) {
		if isClosure(p) {
			continue
		}
		return p
	}

	return fnName
}

// isClosure reports whether a symbol segment belongs to an anonymous
// function: "func1", or the "2" of a nested "func1.2".
func isClosure(seg string) bool {
	rest := strings.TrimPrefix(seg, "func")
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
