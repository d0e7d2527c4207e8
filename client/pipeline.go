package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/adamwoolhether/profilehttp/envelope"
	"github.com/adamwoolhether/profilehttp/headers"
	"github.com/adamwoolhether/profilehttp/internal/validate"
	"github.com/adamwoolhether/profilehttp/profile"
)

// ResponseInterceptor may inspect or replace a response before it is
// unwrapped. Returning an error fails the attempt.
type ResponseInterceptor func(ctx context.Context, resp *Response) (*Response, error)

func passThrough(_ context.Context, resp *Response) (*Response, error) {
	return resp, nil
}

// beforeRequest validates d and rewrites its URL, params and body
// according to opts.
func (c *Client) beforeRequest(ctx context.Context, d Descriptor, opts profile.Options) (prepared, error) {
	d.Method = strings.ToUpper(strings.TrimSpace(d.Method))
	if err := validate.Check(d); err != nil {
		return prepared{}, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	u, err := c.resolveURL(d.URL, opts)
	if err != nil {
		return prepared{}, err
	}

	params := d.Params
	body := d.Body
	if opts.ShouldFormatDate() {
		params = formatDates(params)
		if m, ok := body.(map[string]any); ok {
			body = formatDates(m)
		}
	}

	var query map[string]any
	if d.Method == http.MethodGet {
		query = params
		if opts.ShouldJoinTime() {
			query = maps.Clone(query)
			if query == nil {
				query = make(map[string]any, 1)
			}
			query[timeParam] = time.Now().UnixMilli()
		}
	} else {
		// Params only become the query when the body is already in use.
		// Otherwise they are sent as the body so it is never left empty.
		if populated(body) {
			query = params
		} else {
			if len(params) > 0 {
				body = params
			} else {
				body = nil
			}
			query = nil
		}

		if opts.ShouldJoinParamsToURL() {
			joined := maps.Clone(query)
			if joined == nil {
				joined = make(map[string]any)
			}
			if m, ok := body.(map[string]any); ok {
				maps.Copy(joined, m)
			}
			query = joined
		}
	}

	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			addQuery(q, k, v)
		}
		u.RawQuery = q.Encode()
	}

	payload, err := encodeBody(body)
	if err != nil {
		return prepared{}, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	return prepared{
		method:  d.Method,
		url:     u,
		header:  c.requestHeaders(ctx, d.Header, opts),
		payload: payload,
	}, nil
}

// resolveURL applies the prefix and api url rewrites, then resolves a
// relative result against the profile's base URL.
func (c *Client) resolveURL(raw string, opts profile.Options) (*url.URL, error) {
	target := raw
	if opts.ShouldJoinPrefix() {
		target = opts.URLPrefixOrEmpty() + target
	}
	if apiURL := opts.APIURLOrEmpty(); apiURL != "" {
		target = apiURL + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing url %q: %w", ErrInvalidDescriptor, target, err)
	}
	if u.IsAbs() {
		return u, nil
	}

	base := c.cfg.BaseURLOrEmpty()
	if base == "" {
		return nil, fmt.Errorf("%w: relative url %q with no base url", ErrInvalidDescriptor, target)
	}

	joined := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(target, "/")
	u, err = url.Parse(joined)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing url %q: %w", ErrInvalidDescriptor, joined, err)
	}

	return u, nil
}

// requestHeaders is the request interceptor: profile defaults, caller
// headers, the auth token and finally the interface's header setter.
func (c *Client) requestHeaders(ctx context.Context, h http.Header, opts profile.Options) http.Header {
	out := profile.MergeHeaders(c.cfg.DefaultHeaders, h)
	if out == nil {
		out = make(http.Header)
	}
	if out.Get("Content-Type") == "" {
		out.Set("Content-Type", "application/json")
	}

	auth := c.auth
	if a, ok := headers.AuthFrom(ctx); ok {
		auth = a
	}

	if opts.ShouldSendToken() && auth.Token != "" && out.Get("Authorization") == "" {
		switch c.cfg.Scheme() {
		case profile.AuthBearer:
			out.Set("Authorization", "Bearer "+auth.Token)
		case profile.AuthBasic:
			out.Set("Authorization", "Basic "+auth.Token)
		default:
			out.Set("Authorization", auth.Token)
		}
	}

	c.registry.Apply(opts.Interface(), out, auth)

	return out
}

// send performs one transport round trip and reads the response.
func (c *Client) send(ctx context.Context, p prepared) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, p.method, p.url.String(), bytes.NewReader(p.payload))
	if err != nil {
		return nil, fmt.Errorf("%w: instantiating request: %w", ErrInvalidDescriptor, err)
	}
	for k, v := range p.header {
		req.Header[k] = append([]string(nil), v...)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	var out *Response
	readFn := func(resp *http.Response) error {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return unexpectedStatus(resp)
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}

		out = &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       b,
		}
		return nil
	}

	if err := c.exec(req, readFn); err != nil {
		return nil, err
	}

	return c.runInterceptor(ctx, out)
}

// exec runs the request and injected function on the response, then
// drains and closes the body.
func (c *Client) exec(req *http.Request, fn execFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("exec http do: %w", err)
	}

	defer func() {
		if _, err = io.Copy(io.Discard, resp.Body); err != nil {
			c.logger.Debug("failed to discard unused body", "error", err)
		}
		if err = resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	return fn(resp)
}

func unexpectedStatus(resp *http.Response) error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		b = []byte("unable to read body")
	}

	sentinel := ErrUnexpectedStatusCode
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		sentinel = fmt.Errorf("%w: %w", ErrAuthFailure, ErrUnexpectedStatusCode)
	}

	return &UnexpectedStatusError{
		StatusCode: resp.StatusCode,
		Body:       string(b),
		Err:        sentinel,
	}
}

// unwrap turns a successful transport response into the caller's body.
func unwrap(resp *Response, opts profile.Options) (json.RawMessage, error) {
	if opts.ReturnNative() || !opts.TransformResponse() {
		return json.RawMessage(resp.Body), nil
	}

	env, err := envelope.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	if !env.Succeeded() {
		return nil, &EnvelopeError{Envelope: env}
	}

	return env.DataBody, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	}

	var payload bytes.Buffer
	if err := json.NewEncoder(&payload).Encode(body); err != nil {
		return nil, fmt.Errorf("encoding request payload: %w", err)
	}

	return payload.Bytes(), nil
}

// populated reports whether v holds something worth sending as a body.
func populated(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}

	return true
}

// formatDates returns a copy of m with time values rendered as dateLayout.
func formatDates(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case time.Time:
			out[k] = t.Format(dateLayout)
		case *time.Time:
			if t != nil {
				out[k] = t.Format(dateLayout)
			} else {
				out[k] = v
			}
		case map[string]any:
			out[k] = formatDates(t)
		default:
			out[k] = v
		}
	}

	return out
}

func addQuery(q url.Values, key string, v any) {
	switch t := v.(type) {
	case nil:
	case string:
		q.Add(key, t)
	case []string:
		for _, s := range t {
			q.Add(key, s)
		}
	case []any:
		for _, e := range t {
			addQuery(q, key, e)
		}
	case int:
		q.Add(key, strconv.Itoa(t))
	case int64:
		q.Add(key, strconv.FormatInt(t, 10))
	case bool:
		q.Add(key, strconv.FormatBool(t))
	case time.Time:
		q.Add(key, t.Format(time.RFC3339))
	default:
		q.Add(key, fmt.Sprint(t))
	}
}
