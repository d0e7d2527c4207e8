package mux

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type ctxKey int

const base ctxKey = 1

// BaseValues are the per-request values shared with middleware and
// responders. TraceID becomes the envelope's globId and UUID is the
// caller's correlation id, echoed back in the envelope header.
type BaseValues struct {
	TraceID    string
	UUID       string
	Now        time.Time
	Tracer     trace.Tracer
	StatusCode int
}

// SetStatusCode records the status code written for the request.
func SetStatusCode(ctx context.Context, statusCode int) {
	v, ok := ctx.Value(base).(*BaseValues)
	if !ok {
		return
	}

	v.StatusCode = statusCode
}

// GetValues retrieves the BaseValues from ctx, or placeholder values
// when ctx did not come through an App.
func GetValues(ctx context.Context) *BaseValues {
	v, ok := ctx.Value(base).(*BaseValues)
	if !ok {
		return &BaseValues{
			TraceID: uuid.Nil.String(),
			Tracer:  noop.NewTracerProvider().Tracer(""),
			Now:     time.Now(),
		}
	}

	return v
}

// GetTraceID returns the trace id of the request, or the nil uuid.
func GetTraceID(ctx context.Context) string {
	v, ok := ctx.Value(base).(*BaseValues)
	if !ok {
		return uuid.Nil.String()
	}

	return v.TraceID
}

// GetUUID returns the correlation id the caller sent, if any.
func GetUUID(ctx context.Context) string {
	v, ok := ctx.Value(base).(*BaseValues)
	if !ok {
		return ""
	}

	return v.UUID
}

// AddSpan starts a child span of the request span.
func AddSpan(ctx context.Context, spanName string, keyValues ...attribute.KeyValue) (context.Context, trace.Span) {
	v, ok := ctx.Value(base).(*BaseValues)
	if !ok || v.Tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	ctx, span := v.Tracer.Start(ctx, spanName)
	span.SetAttributes(keyValues...)

	return ctx, span
}

func setValues(ctx context.Context, v *BaseValues) context.Context {
	return context.WithValue(ctx, base, v)
}
