package client

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy decides whether a failed attempt is retried and how long to
// wait first. Delays grow from Base by Multiplier up to Max, each spread
// by ±Jitter.
type RetryPolicy struct {
	Base       time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// DefaultRetryPolicy returns a 200ms base, doubling up to 2s, with ±20% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Base:       200 * time.Millisecond,
		Max:        2 * time.Second,
		Multiplier: 2,
		Jitter:     0.2,
	}
}

func (p RetryPolicy) validate() error {
	switch {
	case p.Base <= 0:
		return errors.New("retry base delay must be positive")
	case p.Max < p.Base:
		return errors.New("retry max delay must not be less than base")
	case p.Multiplier < 1:
		return errors.New("retry multiplier must be at least 1")
	case p.Jitter < 0 || p.Jitter > 1:
		return errors.New("retry jitter must be within [0, 1]")
	}
	return nil
}

// ShouldRetry reports whether another attempt follows. attempt counts
// the retries already made, starting at 0.
func (p RetryPolicy) ShouldRetry(attempt, maxRetries int, err *ClassifiedError) bool {
	return err != nil && err.Retryable && attempt < maxRetries
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.Base,
		RandomizationFactor: p.Jitter,
		Multiplier:          p.Multiplier,
		MaxInterval:         p.Max,
	}
	b.Reset()
	return b
}

// AttemptState tracks one logical request across its attempts.
type AttemptState struct {
	Attempt   int
	LastErr   *ClassifiedError
	StartedAt time.Time

	delays *backoff.ExponentialBackOff
}

func newAttemptState(p RetryPolicy) *AttemptState {
	return &AttemptState{
		StartedAt: time.Now(),
		delays:    p.backOff(),
	}
}

// Attempts is the number of transport calls made so far.
func (s *AttemptState) Attempts() int {
	return s.Attempt + 1
}

// NextDelay returns the backoff before the next attempt.
func (s *AttemptState) NextDelay() time.Duration {
	return s.delays.NextBackOff()
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
