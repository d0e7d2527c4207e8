package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's attempts per second and burst size.
type Config struct {
	RPS   int
	Burst int
}

// throttle is an http.RoundTripper gating every attempt on a token.
type throttle struct {
	limiter *rate.Limiter
	cfg     Config
	next    http.RoundTripper
	logFn   func() *slog.Logger
}

// NewRoundTripper returns an http.RoundTripper that throttles outbound requests.
// logFn lazily resolves the logger at request time so the caller can set
// its logger after building the transport. A nil-returning logFn disables
// the wait logs.
func NewRoundTripper(rps, burst int, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		cfg:     Config{RPS: rps, Burst: burst},
		next:    next,
		logFn:   logFn,
	}

	return t, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	// Reserve first so the log reflects whether this attempt had to queue.
	res := t.limiter.Reserve()
	if !res.OK() {
		return nil, fmt.Errorf("%w: burst %d exceeded", ErrWaitingFailed, t.cfg.Burst)
	}

	delay := res.Delay()
	if delay == 0 {
		return t.next.RoundTrip(r)
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
		res.Cancel()
		return nil, fmt.Errorf("%w: wait %s exceeds deadline", ErrWaitingFailed, delay)
	}

	if logger := t.logFn(); logger != nil {
		logger.Info("throttle tokens exhausted", "rate", t.cfg.RPS, "burst", t.cfg.Burst, "host", r.URL.Host, "path", r.URL.Path, "wait", delay.String())
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		res.Cancel()
		return nil, fmt.Errorf("%w while waiting: %w", ErrContextEnded, ctx.Err())
	case <-timer.C:
	}

	return t.next.RoundTrip(r)
}
