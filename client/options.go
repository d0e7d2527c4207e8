package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/profilehttp/client/throttle"
	"github.com/adamwoolhether/profilehttp/headers"
	"github.com/adamwoolhether/profilehttp/notify"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	registry          *headers.Registry
	auth              *headers.AuthContext
	notifier          notify.Notifier
	hooks             []FailureHook
	interceptor       ResponseInterceptor
	retry             *RetryPolicy
	tracer            trace.Tracer
}

// WithClient replaces the default [http.Client] used by the [Client].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithRegistry sets the header registry. [headers.DefaultRegistry] is used otherwise.
func WithRegistry(r *headers.Registry) Option {
	return func(c *options) error {
		if r == nil {
			return errors.New("registry must not be nil")
		}
		c.registry = r
		return nil
	}
}

// WithAuth sets the auth context used when the request context carries none.
func WithAuth(auth headers.AuthContext) Option {
	return func(c *options) error {
		c.auth = &auth
		return nil
	}
}

// WithNotifier sets where modal failure messages are published.
func WithNotifier(n notify.Notifier) Option {
	return func(c *options) error {
		if n == nil {
			return errors.New("notifier must not be nil")
		}
		c.notifier = n
		return nil
	}
}

// WithFailureHook adds a hook run once per failed logical request.
func WithFailureHook(hook FailureHook) Option {
	return func(c *options) error {
		if hook == nil {
			return errors.New("failure hook must not be nil")
		}
		c.hooks = append(c.hooks, hook)
		return nil
	}
}

// WithResponseInterceptor sets the hook run on every response before unwrapping.
func WithResponseInterceptor(fn ResponseInterceptor) Option {
	return func(c *options) error {
		if fn == nil {
			return errors.New("response interceptor must not be nil")
		}
		c.interceptor = fn
		return nil
	}
}

// WithRetryPolicy replaces [DefaultRetryPolicy].
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *options) error {
		if err := p.validate(); err != nil {
			return err
		}
		c.retry = &p
		return nil
	}
}

// WithTracer sets the tracer used to span each logical request.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// DoOption is a functional option for [Client.Do].
type DoOption func(options *doOpts) error

type doOpts struct {
	responseBody any
	useJSONNum   bool
}

// WithDestination decodes the result body into bodyTemplate.
// bodyTemplate must be a pointer.
func WithDestination[T any](bodyTemplate *T) DoOption {
	return func(opts *doOpts) error {
		if bodyTemplate == nil {
			return errors.New("destination must not be nil")
		}
		opts.responseBody = bodyTemplate

		return nil
	}
}

// WithJSONNumb tells the JSON decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumb() DoOption {
	return func(opts *doOpts) error {
		opts.useJSONNum = true

		return nil
	}
}
