package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/profilehttp/client/throttle"
	"github.com/adamwoolhether/profilehttp/headers"
	"github.com/adamwoolhether/profilehttp/notify"
	"github.com/adamwoolhether/profilehttp/profile"
)

// Client sends requests to the backend described by its profile.
// It is immutable after [Build] and safe for concurrent use.
type Client struct {
	c         *http.Client
	cfg       profile.Config
	logger    *slog.Logger
	registry  *headers.Registry
	auth      headers.AuthContext
	notifier  notify.Notifier
	hooks     []FailureHook
	intercept ResponseInterceptor
	retry     RetryPolicy
	tracer    trace.Tracer
}

// Build binds a Client to cfg. cfg is validated and copied.
func Build(cfg profile.Config, optFns ...Option) (*Client, error) {
	if err := profile.Validate(cfg); err != nil {
		return nil, err
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		c:         &http.Client{},
		cfg:       cfg.Clone(),
		logger:    slog.Default(),
		registry:  headers.DefaultRegistry(),
		notifier:  opts.notifier,
		hooks:     opts.hooks,
		intercept: passThrough,
		retry:     DefaultRetryPolicy(),
		tracer:    noop.NewTracerProvider().Tracer("profilehttp"),
	}

	if opts.client != nil {
		client.c = opts.client
	}
	if opts.logger != nil {
		client.logger = opts.logger
	}
	if opts.registry != nil {
		client.registry = opts.registry
	}
	if opts.auth != nil {
		client.auth = *opts.auth
	}
	if opts.interceptor != nil {
		client.intercept = opts.interceptor
	}
	if opts.retry != nil {
		client.retry = *opts.retry
	}
	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if cfg.Credentials() && client.c.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		client.c.Jar = jar
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Config returns a copy of the profile the Client is bound to.
func (c *Client) Config() profile.Config {
	return c.cfg.Clone()
}

// Get sends d as a GET request.
func (c *Client) Get(ctx context.Context, d Descriptor, opts ...DoOption) (*Result, error) {
	d.Method = http.MethodGet
	return c.Do(ctx, d, opts...)
}

// Post sends d as a POST request.
func (c *Client) Post(ctx context.Context, d Descriptor, opts ...DoOption) (*Result, error) {
	d.Method = http.MethodPost
	return c.Do(ctx, d, opts...)
}

// Put sends d as a PUT request.
func (c *Client) Put(ctx context.Context, d Descriptor, opts ...DoOption) (*Result, error) {
	d.Method = http.MethodPut
	return c.Do(ctx, d, opts...)
}

// Patch sends d as a PATCH request.
func (c *Client) Patch(ctx context.Context, d Descriptor, opts ...DoOption) (*Result, error) {
	d.Method = http.MethodPatch
	return c.Do(ctx, d, opts...)
}

// Delete sends d as a DELETE request.
func (c *Client) Delete(ctx context.Context, d Descriptor, opts ...DoOption) (*Result, error) {
	d.Method = http.MethodDelete
	return c.Do(ctx, d, opts...)
}

// Fetch sends d and decodes the result body into a T.
func Fetch[T any](ctx context.Context, c *Client, d Descriptor) (T, error) {
	var dest T
	if _, err := c.Do(ctx, d, WithDestination(&dest)); err != nil {
		return dest, err
	}
	return dest, nil
}

// Do runs d through the request pipeline, retrying retryable failures.
// Every error it returns is a *ClassifiedError.
func (c *Client) Do(ctx context.Context, d Descriptor, optFns ...DoOption) (*Result, error) {
	var settings doOpts
	for _, opt := range optFns {
		if err := opt(&settings); err != nil {
			return nil, &ClassifiedError{Kind: KindProgrammer, Err: fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)}
		}
	}

	opts := profile.MergeOptions(c.cfg.Options, d.Options)

	ctx, span := c.tracer.Start(ctx, "profilehttp.request", trace.WithAttributes(
		attribute.String("http.method", d.Method),
		attribute.String("http.url", d.URL),
		attribute.String("profile.kind", string(c.cfg.Kind)),
		attribute.String("profile.interface", opts.Interface()),
	))
	defer span.End()

	p, err := c.beforeRequest(ctx, d, opts)
	if err != nil {
		cerr := Classify(err)
		span.RecordError(cerr)
		span.SetStatus(codes.Error, cerr.Kind.String())
		return nil, cerr
	}

	state := newAttemptState(c.retry)
	for {
		res, err := c.attempt(ctx, p, opts)
		if err == nil {
			res.Attempts = state.Attempts()
			span.SetAttributes(attribute.Int("profilehttp.attempts", res.Attempts))

			if err := decode(res.Body, settings); err != nil {
				cerr := &ClassifiedError{Kind: KindUnknown, Attempts: res.Attempts, Err: err}
				span.RecordError(cerr)
				span.SetStatus(codes.Error, cerr.Kind.String())
				return nil, cerr
			}
			return res, nil
		}

		cerr := c.classifyAttempt(ctx, err)
		cerr.Attempts = state.Attempts()
		state.LastErr = cerr

		if c.retry.ShouldRetry(state.Attempt, opts.Retries(), cerr) {
			delay := state.NextDelay()
			c.logger.Warn("retrying request", "method", p.method, "url", p.url.Redacted(), "attempt", state.Attempts(), "kind", cerr.Kind.String(), "delay", delay.String(), "error", cerr.Err)

			if err := sleep(ctx, delay); err != nil {
				cerr = &ClassifiedError{Kind: KindCanceled, Attempts: state.Attempts(), Err: err}
				span.SetStatus(codes.Error, cerr.Kind.String())
				return nil, cerr
			}

			state.Attempt++
			continue
		}

		span.SetAttributes(attribute.Int("profilehttp.attempts", cerr.Attempts))
		span.RecordError(cerr)
		span.SetStatus(codes.Error, cerr.Kind.String())

		if cerr.Kind != KindCanceled {
			c.logger.Error("request failed", "method", p.method, "url", p.url.Redacted(), "attempts", cerr.Attempts, "kind", cerr.Kind.String(), "elapsed", time.Since(state.StartedAt).String(), "error", cerr.Err)
		}
		c.reportFailure(ctx, cerr, opts.MessageMode())

		return nil, cerr
	}
}

// attempt performs one transport call bounded by the profile timeout.
func (c *Client) attempt(ctx context.Context, p prepared, opts profile.Options) (*Result, error) {
	actx := ctx
	if timeout := c.cfg.TimeoutOrDefault(); timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	c.logger.Debug("sending request", "method", p.method, "url", p.url.Redacted())

	resp, err := c.send(actx, p)
	if err != nil {
		if ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrAttemptTimeout, err)
		}
		return nil, err
	}

	body, err := unwrap(resp, opts)
	if err != nil {
		return nil, err
	}

	return &Result{Body: body, Raw: resp}, nil
}

// classifyAttempt classifies err, treating the end of the caller's
// context as cancellation whatever the transport reported.
func (c *Client) classifyAttempt(ctx context.Context, err error) *ClassifiedError {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &ClassifiedError{Kind: KindCanceled, Err: fmt.Errorf("%w: %w", ctxErr, err)}
	}

	// Classify returns its input when already classified; copy so the
	// attempt count set by the caller never leaks into a shared value.
	cerr := *Classify(err)
	return &cerr
}

func (c *Client) runInterceptor(ctx context.Context, resp *Response) (*Response, error) {
	out, err := c.intercept(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("response interceptor: %w", err)
	}
	if out == nil {
		return resp, nil
	}
	return out, nil
}

func decode(body json.RawMessage, settings doOpts) error {
	if settings.responseBody == nil || len(body) == 0 {
		return nil
	}

	if raw, ok := settings.responseBody.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}

	d := json.NewDecoder(bytes.NewReader(body))
	if settings.useJSONNum {
		d.UseNumber()
	}
	if err := d.Decode(settings.responseBody); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}

	return nil
}
