package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/adamwoolhether/profilehttp/client/throttle"
	"github.com/adamwoolhether/profilehttp/envelope"
	"github.com/adamwoolhether/profilehttp/internal/validate"
)

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrInvalidDescriptor marks a request that can never succeed as written.
	ErrInvalidDescriptor = errors.New("invalid request descriptor")
	// ErrAttemptTimeout is wrapped around transport errors caused by the
	// per-attempt timeout expiring.
	ErrAttemptTimeout = errors.New("attempt timed out")
)

// UnexpectedStatusError is returned when the HTTP response status code
// is outside the 2xx range.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// EnvelopeError is returned when dataHeader.result is not SUCCESS. It
// carries the full envelope so callers can inspect every header field.
type EnvelopeError struct {
	Envelope envelope.Raw
}

func (e *EnvelopeError) Error() string {
	h := e.Envelope.DataHeader
	return fmt.Sprintf("envelope result %s: code %s: %s", h.Result, h.ResultCode, h.Message())
}

// Kind is the category of a failed request.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindNetworkUnreachable
	KindHTTPStatus
	KindEnvelopeFailure
	KindProgrammer
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindHTTPStatus:
		return "http_status"
	case KindEnvelopeFailure:
		return "envelope_failure"
	case KindProgrammer:
		return "programmer_error"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Retryable reports whether failures of this kind may succeed on retry.
func (k Kind) Retryable() bool {
	return k == KindTimeout || k == KindNetworkUnreachable
}

// ClassifiedError is the only error type returned by [Client.Do].
type ClassifiedError struct {
	Kind      Kind
	Retryable bool

	// StatusCode is set for KindHTTPStatus.
	StatusCode int
	// ResultCode, ResultMsg and Envelope are set for KindEnvelopeFailure.
	ResultCode string
	ResultMsg  string
	Envelope   *envelope.Raw

	// Attempts is the number of transport calls made before giving up.
	Attempts int
	Err      error
}

func (e *ClassifiedError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("%s %d: %v", e.Kind, e.StatusCode, e.Err)
	case KindEnvelopeFailure:
		return fmt.Sprintf("%s %s: %s", e.Kind, e.ResultCode, e.ResultMsg)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Message is the user-facing text for the failure.
func (e *ClassifiedError) Message() string {
	if e.Kind == KindEnvelopeFailure && e.ResultMsg != "" {
		return e.ResultMsg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

// Classify maps err onto a ClassifiedError. A nil err returns nil and an
// error that is already classified is returned as is.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	if ce, ok := errors.AsType[*ClassifiedError](err); ok {
		return ce
	}

	kind := classifyKind(err)
	ce := &ClassifiedError{
		Kind:      kind,
		Retryable: kind.Retryable(),
		Err:       err,
	}

	switch kind {
	case KindHTTPStatus:
		if se, ok := errors.AsType[*UnexpectedStatusError](err); ok {
			ce.StatusCode = se.StatusCode
		}
	case KindEnvelopeFailure:
		if ee, ok := errors.AsType[*EnvelopeError](err); ok {
			env := ee.Envelope
			ce.Envelope = &env
			ce.ResultCode = env.DataHeader.ResultCode
			ce.ResultMsg = env.DataHeader.Message()
		}
	}

	return ce
}

func classifyKind(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidDescriptor):
		return KindProgrammer
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}

	if _, ok := errors.AsType[validate.FieldErrors](err); ok {
		return KindProgrammer
	}
	if _, ok := errors.AsType[*UnexpectedStatusError](err); ok {
		return KindHTTPStatus
	}
	if _, ok := errors.AsType[*EnvelopeError](err); ok {
		return KindEnvelopeFailure
	}

	switch {
	case errors.Is(err, ErrAttemptTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, throttle.ErrWaitingFailed):
		return KindTimeout
	}
	if ne, ok := errors.AsType[net.Error](err); ok && ne.Timeout() {
		return KindTimeout
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return KindNetworkUnreachable
	}
	if _, ok := errors.AsType[*net.DNSError](err); ok {
		return KindNetworkUnreachable
	}
	if _, ok := errors.AsType[*net.OpError](err); ok {
		return KindNetworkUnreachable
	}

	return KindUnknown
}
